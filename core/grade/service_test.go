package grade_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edusoma/academia/core"
	"github.com/edusoma/academia/core/academic"
	"github.com/edusoma/academia/core/grade"
	"github.com/edusoma/academia/core/user"
	dummydb "github.com/edusoma/academia/storage/database/dummy"
)

type fixture struct {
	usrRepo   user.Repository
	acadRepo  academic.Repository
	gradeRepo grade.Repository
	svc       grade.Service
}

func setup(t *testing.T) *fixture {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	f := &fixture{
		usrRepo:   dummydb.NewUserRepository(db),
		acadRepo:  dummydb.NewAcademicRepository(db),
		gradeRepo: dummydb.NewGradeRepository(db),
	}
	f.svc = grade.NewService(f.gradeRepo, f.usrRepo, f.acadRepo)
	return f
}

func (f *fixture) createTeacher(t *testing.T, first, last string) user.Teacher {
	tch, err := f.usrRepo.CreateTeacher(context.Background(),
		user.User{Username: first, Role: user.RoleTeacher},
		user.Teacher{FirstName: first, LastName: last},
	)
	if err != nil {
		t.Fatalf("createTeacher() failed: %v", err)
	}
	return tch
}

func (f *fixture) createStudent(t *testing.T, first, last string, groupID *int) user.Student {
	std, err := f.usrRepo.CreateStudent(context.Background(),
		user.User{Username: first, Role: user.RoleStudent},
		user.Student{FirstName: first, LastName: last, GroupID: groupID},
	)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

func (f *fixture) createGroup(t *testing.T, name string) academic.StudyGroup {
	grp, err := f.acadRepo.CreateGroup(context.Background(), academic.StudyGroup{Name: name, Year: 2024})
	if err != nil {
		t.Fatalf("createGroup() failed: %v", err)
	}
	return grp
}

func (f *fixture) createSubject(t *testing.T, name, code string) academic.Subject {
	sub, err := f.acadRepo.CreateSubject(context.Background(), academic.Subject{Name: name, Code: code})
	if err != nil {
		t.Fatalf("createSubject() failed: %v", err)
	}
	return sub
}

func (f *fixture) createAssignment(t *testing.T, subjectID, teacherID, groupID int) academic.Assignment {
	asg, err := f.acadRepo.CreateAssignment(context.Background(), academic.Assignment{
		SubjectID:    subjectID,
		TeacherID:    teacherID,
		GroupID:      groupID,
		AcademicYear: "2024-2025",
		Semester:     "1",
	})
	if err != nil {
		t.Fatalf("createAssignment() failed: %v", err)
	}
	return asg
}

func intPtr(i int) *int { return &i }

func Test_service_Enter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	grp := f.createGroup(t, "CS-1")
	otherGrp := f.createGroup(t, "CS-2")
	tch := f.createTeacher(t, "emma", "faber")
	otherTch := f.createTeacher(t, "juno", "okoro")
	sub := f.createSubject(t, "Algorithms", "CS201")
	asg := f.createAssignment(t, sub.ID, tch.ID, grp.ID)

	std := f.createStudent(t, "liam", "mensah", intPtr(grp.ID))
	outsider := f.createStudent(t, "nora", "abara", intPtr(otherGrp.ID))
	ungrouped := f.createStudent(t, "pete", "quill", nil)

	tests := []struct {
		name      string
		teacherID int
		ng        grade.NewGrade
		wantErr   error
		wantAuthz bool
		wantValid bool
	}{
		{
			name:      "unknown student",
			teacherID: tch.ID,
			ng:        grade.NewGrade{StudentID: 999, AssignmentID: asg.ID, Value: 7},
			wantErr:   user.ErrStudentNotFound,
		},
		{
			name:      "unknown assignment",
			teacherID: tch.ID,
			ng:        grade.NewGrade{StudentID: std.ID, AssignmentID: 999, Value: 7},
			wantErr:   academic.ErrAssignmentNotFound,
		},
		{
			name:      "not the assignment teacher",
			teacherID: otherTch.ID,
			ng:        grade.NewGrade{StudentID: std.ID, AssignmentID: asg.ID, Value: 7},
			wantAuthz: true,
		},
		{
			name:      "student in another group",
			teacherID: tch.ID,
			ng:        grade.NewGrade{StudentID: outsider.ID, AssignmentID: asg.ID, Value: 7},
			wantAuthz: true,
		},
		{
			name:      "student without group",
			teacherID: tch.ID,
			ng:        grade.NewGrade{StudentID: ungrouped.ID, AssignmentID: asg.ID, Value: 7},
			wantAuthz: true,
		},
		{
			name:      "value below range",
			teacherID: tch.ID,
			ng:        grade.NewGrade{StudentID: std.ID, AssignmentID: asg.ID, Value: -1},
			wantValid: true,
		},
		{
			name:      "value above range",
			teacherID: tch.ID,
			ng:        grade.NewGrade{StudentID: std.ID, AssignmentID: asg.ID, Value: 11},
			wantValid: true,
		},
		{
			name:      "minimum value accepted",
			teacherID: tch.ID,
			ng:        grade.NewGrade{StudentID: std.ID, AssignmentID: asg.ID, Value: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := f.gradeRepo.CountGrades(ctx)

			grd, err := f.svc.Enter(ctx, tt.teacherID, tt.ng)
			after, _ := f.gradeRepo.CountGrades(ctx)

			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
				assert.Equal(t, before, after, "store must be unchanged")
			case tt.wantAuthz:
				assert.True(t, core.IsAuthorization(err), "expected an authorization error, got %v", err)
				assert.Equal(t, before, after, "store must be unchanged")
			case tt.wantValid:
				_, ok := err.(*core.ValidationError)
				assert.True(t, ok, "expected a validation error, got %v", err)
				assert.Equal(t, before, after, "store must be unchanged")
			default:
				assert.NoError(t, err)
				assert.Equal(t, before+1, after)
				assert.Equal(t, tt.ng.Value, grd.Value)
				assert.False(t, grd.GradeDate.IsZero())
			}
		})
	}
}

func Test_service_Enter_duplicate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	grp := f.createGroup(t, "CS-1")
	tch := f.createTeacher(t, "emma", "faber")
	sub := f.createSubject(t, "Algorithms", "CS201")
	asg := f.createAssignment(t, sub.ID, tch.ID, grp.ID)
	std := f.createStudent(t, "liam", "mensah", intPtr(grp.ID))

	ng := grade.NewGrade{StudentID: std.ID, AssignmentID: asg.ID, Value: 8, Comments: "good"}

	grd, err := f.svc.Enter(ctx, tch.ID, ng)
	assert.NoError(t, err)
	assert.Equal(t, 8, grd.Value)

	_, err = f.svc.Enter(ctx, tch.ID, ng)
	vErr, ok := err.(*core.ValidationError)
	if assert.True(t, ok, "expected a validation error, got %v", err) {
		assert.Equal(t, grade.ErrDuplicate, vErr.Err)
	}

	count, _ := f.gradeRepo.CountGrades(ctx)
	assert.Equal(t, 1, count)
}

func Test_service_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	grp := f.createGroup(t, "CS-1")
	tch := f.createTeacher(t, "emma", "faber")
	otherTch := f.createTeacher(t, "juno", "okoro")
	sub := f.createSubject(t, "Algorithms", "CS201")
	asg := f.createAssignment(t, sub.ID, tch.ID, grp.ID)
	std := f.createStudent(t, "liam", "mensah", intPtr(grp.ID))

	grd, err := f.svc.Enter(ctx, tch.ID, grade.NewGrade{StudentID: std.ID, AssignmentID: asg.ID, Value: 4})
	assert.NoError(t, err)

	t.Run("unknown grade", func(t *testing.T) {
		_, err := f.svc.Update(ctx, 999, tch.ID, grade.UpdateGrade{Value: 5})
		assert.Equal(t, grade.ErrNotFound, err)
	})
	t.Run("not the owner", func(t *testing.T) {
		_, err := f.svc.Update(ctx, grd.ID, otherTch.ID, grade.UpdateGrade{Value: 5})
		assert.True(t, core.IsAuthorization(err), "expected an authorization error, got %v", err)
	})
	t.Run("value out of range", func(t *testing.T) {
		_, err := f.svc.Update(ctx, grd.ID, tch.ID, grade.UpdateGrade{Value: 11})
		_, ok := err.(*core.ValidationError)
		assert.True(t, ok, "expected a validation error, got %v", err)
	})
	t.Run("maximum value accepted", func(t *testing.T) {
		updated, err := f.svc.Update(ctx, grd.ID, tch.ID, grade.UpdateGrade{Value: 10, Comments: "exceptional"})
		assert.NoError(t, err)
		assert.Equal(t, 10, updated.Value)
		assert.Equal(t, "exceptional", updated.Comments)
	})
	t.Run("student left the group", func(t *testing.T) {
		// membership is not re-checked on update
		_, err := f.usrRepo.SetStudentGroup(ctx, std.ID, nil)
		assert.NoError(t, err)

		updated, err := f.svc.Update(ctx, grd.ID, tch.ID, grade.UpdateGrade{Value: 9})
		assert.NoError(t, err)
		assert.Equal(t, 9, updated.Value)
	})
}

func Test_service_Delete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	grp := f.createGroup(t, "CS-1")
	tch := f.createTeacher(t, "emma", "faber")
	otherTch := f.createTeacher(t, "juno", "okoro")
	sub := f.createSubject(t, "Algorithms", "CS201")
	asg := f.createAssignment(t, sub.ID, tch.ID, grp.ID)
	std := f.createStudent(t, "liam", "mensah", intPtr(grp.ID))

	grd, err := f.svc.Enter(ctx, tch.ID, grade.NewGrade{StudentID: std.ID, AssignmentID: asg.ID, Value: 6})
	assert.NoError(t, err)

	_, err = f.svc.Delete(ctx, 999, tch.ID)
	assert.Equal(t, grade.ErrNotFound, err)

	_, err = f.svc.Delete(ctx, grd.ID, otherTch.ID)
	assert.True(t, core.IsAuthorization(err), "expected an authorization error, got %v", err)

	deleted, err := f.svc.Delete(ctx, grd.ID, tch.ID)
	assert.NoError(t, err)
	assert.Equal(t, asg.ID, deleted.AssignmentID)

	count, _ := f.gradeRepo.CountGrades(ctx)
	assert.Equal(t, 0, count)
}

func Test_service_queries_ordering(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	grp := f.createGroup(t, "CS-1")
	tch := f.createTeacher(t, "emma", "faber")
	sub := f.createSubject(t, "Algorithms", "CS201")
	asg := f.createAssignment(t, sub.ID, tch.ID, grp.ID)

	zoe := f.createStudent(t, "zoe", "adler", intPtr(grp.ID))
	amy := f.createStudent(t, "amy", "zimmer", intPtr(grp.ID))
	ben := f.createStudent(t, "ben", "adler", intPtr(grp.ID))

	now := time.Now().UTC()
	for i, std := range []user.Student{zoe, amy, ben} {
		_, err := f.gradeRepo.CreateGrade(ctx, grade.Grade{
			StudentID:    std.ID,
			AssignmentID: asg.ID,
			Value:        5 + i,
			GradeDate:    now.Add(time.Duration(i) * time.Minute),
		})
		assert.NoError(t, err)
	}

	t.Run("by teacher and subject: student name order", func(t *testing.T) {
		details, err := f.svc.TeacherSubjectGrades(ctx, tch.ID, sub.ID)
		assert.NoError(t, err)
		if assert.Len(t, details, 3) {
			// adler ben, adler zoe, zimmer amy
			assert.Equal(t, ben.ID, details[0].StudentID)
			assert.Equal(t, zoe.ID, details[1].StudentID)
			assert.Equal(t, amy.ID, details[2].StudentID)
		}
	})
	t.Run("by assignment: most recent first", func(t *testing.T) {
		details, err := f.svc.AssignmentGrades(ctx, asg.ID)
		assert.NoError(t, err)
		if assert.Len(t, details, 3) {
			assert.Equal(t, ben.ID, details[0].StudentID)
			assert.Equal(t, amy.ID, details[1].StudentID)
			assert.Equal(t, zoe.ID, details[2].StudentID)
		}
	})
	t.Run("by student: joined detail", func(t *testing.T) {
		details, err := f.svc.StudentGrades(ctx, zoe.ID)
		assert.NoError(t, err)
		if assert.Len(t, details, 1) {
			assert.Equal(t, sub.Name, details[0].SubjectName)
			assert.Equal(t, tch.FullName(), details[0].TeacherName)
			assert.Equal(t, grp.Name, details[0].GroupName)
		}
	})
}

func Test_service_TeacherStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	grp1 := f.createGroup(t, "CS-1")
	grp2 := f.createGroup(t, "CS-2")
	tch := f.createTeacher(t, "emma", "faber")
	sub1 := f.createSubject(t, "Algorithms", "CS201")
	sub2 := f.createSubject(t, "Databases", "CS202")
	asg1 := f.createAssignment(t, sub1.ID, tch.ID, grp1.ID)
	f.createAssignment(t, sub2.ID, tch.ID, grp2.ID)

	s1 := f.createStudent(t, "liam", "mensah", intPtr(grp1.ID))
	f.createStudent(t, "nora", "abara", intPtr(grp1.ID))
	f.createStudent(t, "pete", "quill", intPtr(grp2.ID))

	_, err := f.svc.Enter(ctx, tch.ID, grade.NewGrade{StudentID: s1.ID, AssignmentID: asg1.ID, Value: 6})
	assert.NoError(t, err)

	stats, err := f.svc.TeacherStats(ctx, tch.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSubjects)
	assert.Equal(t, 3, stats.TotalStudents)
	assert.Equal(t, 1, stats.TotalGrades)
	assert.Equal(t, 6.0, stats.AverageGrade)
}

func TestStatsForStudent(t *testing.T) {
	details := []grade.Detail{
		{Grade: grade.Grade{Value: 10}},
		{Grade: grade.Grade{Value: 5}},
		{Grade: grade.Grade{Value: 4}},
		{Grade: grade.Grade{Value: 0}},
	}
	stats := grade.StatsForStudent(details)
	assert.Equal(t, 4, stats.TotalGrades)
	assert.Equal(t, 4.75, stats.AverageGrade)
	assert.Equal(t, 2, stats.PassingGrades)
	assert.Equal(t, 2, stats.FailingGrades)

	empty := grade.StatsForStudent(nil)
	assert.Equal(t, 0, empty.TotalGrades)
	assert.Equal(t, 0.0, empty.AverageGrade)
}
