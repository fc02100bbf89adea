package echoapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edusoma/academia/core/academic"
	"github.com/edusoma/academia/core/user"
)

func Test_roleMiddleware(t *testing.T) {
	env := newTestEnv(t)

	adminToken := env.seedAdmin(t)
	_, teacherToken := env.seedTeacher(t, "Emma", "Faber")
	_, studentToken := env.seedStudent(t, "Liam", "Mensah", nil)

	adminDenied := "/login?error=" + url.QueryEscape("Access denied. Administrator privileges required.")
	teacherDenied := "/login?error=" + url.QueryEscape("Access denied. Teacher privileges required.")
	studentDenied := "/login?error=" + url.QueryEscape("Access denied. Student privileges required.")

	tests := []struct {
		name         string
		path         string
		token        string
		wantCode     int
		wantLocation string
	}{
		{name: "admin surface, no session", path: "/admin/students", wantCode: http.StatusSeeOther, wantLocation: "/login"},
		{name: "admin surface, student session", path: "/admin/students", token: studentToken, wantCode: http.StatusSeeOther, wantLocation: adminDenied},
		{name: "admin surface, teacher session", path: "/admin/students", token: teacherToken, wantCode: http.StatusSeeOther, wantLocation: adminDenied},
		{name: "admin surface, admin session", path: "/admin/students", token: adminToken, wantCode: http.StatusOK},
		{name: "teacher surface, admin session", path: "/teacher/dashboard", token: adminToken, wantCode: http.StatusSeeOther, wantLocation: teacherDenied},
		{name: "teacher surface, teacher session", path: "/teacher/grades", token: teacherToken, wantCode: http.StatusOK},
		{name: "student surface, teacher session", path: "/student/dashboard", token: teacherToken, wantCode: http.StatusSeeOther, wantLocation: studentDenied},
		{name: "student surface, student session", path: "/student/dashboard", token: studentToken, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.get(tt.path, tt.token)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
		})
	}
}

func Test_handlers_adminStudents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.seedAdmin(t)

	grp, err := env.acadSvc.CreateGroup(ctx, academic.NewGroup{Name: "CS-1", Year: 2024})
	assert.NoError(t, err)

	t.Run("create with group", func(t *testing.T) {
		rec := env.postForm("/admin/students/create", url.Values{
			"firstName": {"Liam"},
			"lastName":  {"Mensah"},
			"email":     {"liam@academia.test"},
			"groupId":   {strconv.Itoa(grp.ID)},
		}, token)
		assertRedirect(t, rec, "/admin/students?success=Student+created.")

		std, err := env.usrSvc.StudentByUsername(ctx, "liam")
		assert.NoError(t, err)
		if assert.NotNil(t, std.GroupID) {
			assert.Equal(t, grp.ID, *std.GroupID)
		}
	})
	t.Run("create with missing fields flashes the error", func(t *testing.T) {
		rec := env.postForm("/admin/students/create", url.Values{
			"firstName": {"Nora"},
		}, token)
		assertRedirectPrefix(t, rec, "/admin/students?error=")
	})
	t.Run("duplicate username flashes the error", func(t *testing.T) {
		rec := env.postForm("/admin/students/create", url.Values{
			"firstName": {"Liam"},
			"lastName":  {"Other"},
			"email":     {"other@academia.test"},
		}, token)
		assertRedirectPrefix(t, rec, "/admin/students?error=")
	})
	t.Run("update detaches the group", func(t *testing.T) {
		std, err := env.usrSvc.StudentByUsername(ctx, "liam")
		assert.NoError(t, err)

		rec := env.postForm("/admin/students/update/"+strconv.Itoa(std.ID), url.Values{
			"firstName": {"Liam"},
			"lastName":  {"Mensah"},
			"email":     {"liam@academia.test"},
		}, token)
		assertRedirect(t, rec, "/admin/students?success=Student+updated.")

		std, err = env.usrSvc.StudentByID(ctx, std.ID)
		assert.NoError(t, err)
		assert.Nil(t, std.GroupID)
	})
	t.Run("listing returns JSON", func(t *testing.T) {
		rec := env.get("/admin/students", token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Mensah")
	})
	t.Run("delete removes student and user", func(t *testing.T) {
		std, err := env.usrSvc.StudentByUsername(ctx, "liam")
		assert.NoError(t, err)

		rec := env.postForm("/admin/students/delete/"+strconv.Itoa(std.ID), nil, token)
		assertRedirect(t, rec, "/admin/students?success=Student+deleted.")

		_, err = env.usrSvc.GetByID(ctx, std.ID)
		assert.Equal(t, user.ErrNotFound, err)
	})
	t.Run("delete unknown student flashes the error", func(t *testing.T) {
		rec := env.postForm("/admin/students/delete/999", nil, token)
		assertRedirectPrefix(t, rec, "/admin/students?error=")
	})
}

func Test_handlers_adminTeachers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.seedAdmin(t)

	rec := env.postForm("/admin/teachers/create", url.Values{
		"firstName": {"Emma"},
		"lastName":  {"Faber"},
		"email":     {"emma@academia.test"},
	}, token)
	assertRedirect(t, rec, "/admin/teachers?success=Teacher+created.")

	tch, err := env.usrSvc.TeacherByUsername(ctx, "emma")
	assert.NoError(t, err)

	rec = env.postForm("/admin/teachers/update/"+strconv.Itoa(tch.ID), url.Values{
		"firstName": {"Emma"},
		"lastName":  {"Faber-Okoro"},
		"email":     {"emma@academia.test"},
	}, token)
	assertRedirect(t, rec, "/admin/teachers?success=Teacher+updated.")

	rec = env.postForm("/admin/teachers/delete/"+strconv.Itoa(tch.ID), nil, token)
	assertRedirect(t, rec, "/admin/teachers?success=Teacher+deleted.")

	_, err = env.usrSvc.TeacherByID(ctx, tch.ID)
	assert.Equal(t, user.ErrTeacherNotFound, err)
}

func Test_handlers_adminGroups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.seedAdmin(t)

	rec := env.postForm("/admin/groups/create", url.Values{
		"groupName": {"CS-1"},
		"year":      {"2024"},
	}, token)
	assertRedirect(t, rec, "/admin/groups?success=Group+created.")

	t.Run("duplicate name flashes the error", func(t *testing.T) {
		rec := env.postForm("/admin/groups/create", url.Values{
			"groupName": {"CS-1"},
			"year":      {"2025"},
		}, token)
		assertRedirectPrefix(t, rec, "/admin/groups?error=")
	})
	t.Run("year out of range flashes the error", func(t *testing.T) {
		rec := env.postForm("/admin/groups/create", url.Values{
			"groupName": {"CS-2"},
			"year":      {"1999"},
		}, token)
		assertRedirectPrefix(t, rec, "/admin/groups?error=")
	})

	groups, err := env.acadSvc.QueryAllGroups(ctx)
	assert.NoError(t, err)
	if assert.Len(t, groups, 1) {
		rec = env.postForm("/admin/groups/update/"+strconv.Itoa(groups[0].ID), url.Values{
			"groupName": {"CS-1b"},
			"year":      {"2025"},
		}, token)
		assertRedirect(t, rec, "/admin/groups?success=Group+updated.")

		rec = env.postForm("/admin/groups/delete/"+strconv.Itoa(groups[0].ID), nil, token)
		assertRedirect(t, rec, "/admin/groups?success=Group+deleted.")
	}
}

func Test_handlers_adminSubjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.seedAdmin(t)

	rec := env.postForm("/admin/subjects/create", url.Values{
		"subjectName": {"Algorithms"},
		"subjectCode": {"CS201"},
		"credits":     {"5"},
		"description": {"sorting and graphs"},
	}, token)
	assertRedirect(t, rec, "/admin/subjects?success=Subject+created.")

	t.Run("duplicate code flashes the error", func(t *testing.T) {
		rec := env.postForm("/admin/subjects/create", url.Values{
			"subjectName": {"Algorithms II"},
			"subjectCode": {"CS201"},
			"credits":     {"5"},
		}, token)
		assertRedirectPrefix(t, rec, "/admin/subjects?error=")
	})

	subjects, err := env.acadSvc.QueryAllSubjects(ctx)
	assert.NoError(t, err)
	assert.Len(t, subjects, 1)

	t.Run("assignment lifecycle", func(t *testing.T) {
		grp, err := env.acadSvc.CreateGroup(ctx, academic.NewGroup{Name: "CS-1", Year: 2024})
		assert.NoError(t, err)
		tch, _ := env.seedTeacher(t, "Emma", "Faber")

		form := url.Values{
			"subjectId":    {strconv.Itoa(subjects[0].ID)},
			"teacherId":    {strconv.Itoa(tch.ID)},
			"groupId":      {strconv.Itoa(grp.ID)},
			"academicYear": {"2024-2025"},
			"semester":     {"1"},
		}
		rec := env.postForm("/admin/subjects/assignments/create", form, token)
		assertRedirect(t, rec, "/admin/subjects?success=Subject+assigned.")

		// same tuple again
		rec = env.postForm("/admin/subjects/assignments/create", form, token)
		assertRedirectPrefix(t, rec, "/admin/subjects?error=")

		infos, err := env.acadSvc.QueryAllAssignments(ctx)
		assert.NoError(t, err)
		if assert.Len(t, infos, 1) {
			rec = env.postForm("/admin/subjects/assignments/delete/"+strconv.Itoa(infos[0].ID), nil, token)
			assertRedirect(t, rec, "/admin/subjects?success=Assignment+removed.")
		}
	})

	t.Run("listing returns subjects and assignments", func(t *testing.T) {
		rec := env.get("/admin/subjects", token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "\"subjects\"")
		assert.Contains(t, rec.Body.String(), "\"assignments\"")
	})
}

func Test_handlers_adminDashboard(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedAdmin(t)

	_, _ = env.seedTeacher(t, "Emma", "Faber")
	_, _ = env.seedStudent(t, "Liam", "Mensah", nil)

	rec := env.get("/admin/dashboard", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\"total_students\":1")
	assert.Contains(t, rec.Body.String(), "\"total_teachers\":1")
}
