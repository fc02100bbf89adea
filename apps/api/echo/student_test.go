package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edusoma/academia/core/academic"
	"github.com/edusoma/academia/core/grade"
)

func Test_handlers_studentDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	grp, err := env.acadSvc.CreateGroup(ctx, academic.NewGroup{Name: "CS-1", Year: 2024})
	assert.NoError(t, err)
	tch, _ := env.seedTeacher(t, "Emma", "Faber")
	std, token := env.seedStudent(t, "Liam", "Mensah", &grp.ID)

	algo, err := env.acadSvc.CreateSubject(ctx, academic.NewSubject{Name: "Algorithms", Code: "CS201", Credits: 5})
	assert.NoError(t, err)
	dbs, err := env.acadSvc.CreateSubject(ctx, academic.NewSubject{Name: "Databases", Code: "CS202", Credits: 4})
	assert.NoError(t, err)

	for i, sub := range []academic.Subject{algo, dbs} {
		asg, err := env.acadSvc.CreateAssignment(ctx, academic.NewAssignment{
			SubjectID: sub.ID, TeacherID: tch.ID, GroupID: grp.ID, AcademicYear: "2024-2025", Semester: "1",
		})
		assert.NoError(t, err)
		_, err = env.gradeSvc.Enter(ctx, tch.ID, grade.NewGrade{
			StudentID: std.ID, AssignmentID: asg.ID, Value: 4 + i*4, // 4 then 8
		})
		assert.NoError(t, err)
	}

	decode := func(t *testing.T, body []byte) (resp struct {
		DisplayName string `json:"display_name"`
		Stats       struct {
			TotalGrades   int     `json:"total_grades"`
			AverageGrade  float64 `json:"average_grade"`
			PassingGrades int     `json:"passing_grades"`
			FailingGrades int     `json:"failing_grades"`
		} `json:"stats"`
		Subjects []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"subjects"`
		Grades []struct {
			SubjectID int `json:"subject_id"`
			Value     int `json:"value"`
		} `json:"grades"`
	}) {
		t.Helper()
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		return resp
	}

	t.Run("full record", func(t *testing.T) {
		rec := env.get("/student/dashboard", token)
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := decode(t, rec.Body.Bytes())
		assert.Equal(t, "Liam Mensah", resp.DisplayName)
		assert.Equal(t, 2, resp.Stats.TotalGrades)
		assert.Equal(t, 6.0, resp.Stats.AverageGrade)
		assert.Equal(t, 1, resp.Stats.PassingGrades)
		assert.Equal(t, 1, resp.Stats.FailingGrades)
		assert.Len(t, resp.Grades, 2)

		// distinct subjects sorted by name
		if assert.Len(t, resp.Subjects, 2) {
			assert.Equal(t, "Algorithms", resp.Subjects[0].Name)
			assert.Equal(t, "Databases", resp.Subjects[1].Name)
		}
	})

	t.Run("subject filter narrows grades but not stats", func(t *testing.T) {
		rec := env.get("/student/dashboard?subjectId="+strconv.Itoa(dbs.ID), token)
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := decode(t, rec.Body.Bytes())
		assert.Equal(t, 2, resp.Stats.TotalGrades)
		assert.Len(t, resp.Subjects, 2)
		if assert.Len(t, resp.Grades, 1) {
			assert.Equal(t, dbs.ID, resp.Grades[0].SubjectID)
			assert.Equal(t, 8, resp.Grades[0].Value)
		}
	})

	t.Run("bad subject filter", func(t *testing.T) {
		rec := env.get("/student/dashboard?subjectId=abc", token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown subject filter yields an empty listing", func(t *testing.T) {
		rec := env.get("/student/dashboard?subjectId=999", token)
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := decode(t, rec.Body.Bytes())
		assert.Len(t, resp.Grades, 0)
		assert.Equal(t, 2, resp.Stats.TotalGrades)
	})
}
