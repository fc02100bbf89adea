package grade

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/edusoma/academia/core"
	"github.com/edusoma/academia/core/academic"
	"github.com/edusoma/academia/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("grade not found")
	ErrDuplicate       = errors.New("a grade already exists for this student and assignment; use update instead")
	ErrValueOutOfRange = errors.New("grade must be between 0 and 10")

	errNotAssignmentTeacher = "you are not assigned to teach this subject"
	errStudentNotInGroup    = "student is not in the group for this subject"
	errNotGradeOwner        = "you can only edit grades tied to your own assignments"
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, grd Grade) (Grade, error)
		GetGradeByID(ctx context.Context, id int) (Grade, error)
		GradeExists(ctx context.Context, studentID, assignmentID int) (bool, error)
		UpdateGrade(ctx context.Context, grd Grade) (Grade, error)
		DeleteGrade(ctx context.Context, id int) error

		// QueryByTeacher returns all grades tied to the teacher's assignments.
		QueryByTeacher(ctx context.Context, teacherID int) ([]Detail, error)
		// QueryByTeacherAndSubject orders by student last name, then first name.
		QueryByTeacherAndSubject(ctx context.Context, teacherID, subjectID int) ([]Detail, error)
		// QueryByAssignment orders by grade date, most recent first.
		QueryByAssignment(ctx context.Context, assignmentID int) ([]Detail, error)
		// QueryByStudent joins full detail; ordered by grade date, most recent first.
		QueryByStudent(ctx context.Context, studentID int) ([]Detail, error)

		CountByTeacher(ctx context.Context, teacherID int) (int, error)
		CountGrades(ctx context.Context) (int, error)
	}

	Service interface {
		// Enter creates a grade after the full authorization and validation chain.
		Enter(ctx context.Context, teacherID int, ng NewGrade) (Grade, error)
		// Update re-checks ownership and range only; group membership drift is tolerated.
		Update(ctx context.Context, gradeID, teacherID int, ug UpdateGrade) (Grade, error)
		// Delete re-checks ownership and returns the deleted grade.
		Delete(ctx context.Context, gradeID, teacherID int) (Grade, error)

		TeacherGrades(ctx context.Context, teacherID int) ([]Detail, error)
		TeacherSubjectGrades(ctx context.Context, teacherID, subjectID int) ([]Detail, error)
		AssignmentGrades(ctx context.Context, assignmentID int) ([]Detail, error)
		StudentGrades(ctx context.Context, studentID int) ([]Detail, error)

		TeacherStats(ctx context.Context, teacherID int) (TeacherStats, error)
	}

	service struct {
		repo     Repository
		usrRepo  user.Repository
		acadRepo academic.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, acadRepo academic.Repository) Service {
	return &service{
		repo:     repo,
		usrRepo:  usrRepo,
		acadRepo: acadRepo,
	}
}

func (svc *service) Enter(ctx context.Context, teacherID int, ng NewGrade) (Grade, error) {
	std, err := svc.usrRepo.GetStudentByID(ctx, ng.StudentID)
	if err != nil {
		return Grade{}, err
	}

	asg, err := svc.acadRepo.GetAssignmentByID(ctx, ng.AssignmentID)
	if err != nil {
		return Grade{}, err
	}

	if asg.TeacherID != teacherID {
		return Grade{}, core.NewAuthorizationError(errNotAssignmentTeacher)
	}

	// grading students outside the assigned group is forbidden
	if !std.InGroup(asg.GroupID) {
		return Grade{}, core.NewAuthorizationError(errStudentNotInGroup)
	}

	exists, err := svc.repo.GradeExists(ctx, ng.StudentID, ng.AssignmentID)
	if err != nil {
		return Grade{}, errors.Wrap(err, "checking grade uniqueness")
	}
	if exists {
		return Grade{}, core.NewValidationError(ErrDuplicate)
	}

	if err = checkValueRange(ng.Value); err != nil {
		return Grade{}, err
	}

	return svc.repo.CreateGrade(ctx, Grade{
		StudentID:    ng.StudentID,
		AssignmentID: ng.AssignmentID,
		Value:        ng.Value,
		Comments:     ng.Comments,
		GradeDate:    time.Now().UTC(),
	})
}

func (svc *service) Update(ctx context.Context, gradeID, teacherID int, ug UpdateGrade) (Grade, error) {
	grd, err := svc.ownedGrade(ctx, gradeID, teacherID)
	if err != nil {
		return Grade{}, err
	}

	if err = checkValueRange(ug.Value); err != nil {
		return Grade{}, err
	}

	grd.Value = ug.Value
	grd.Comments = ug.Comments
	grd.GradeDate = time.Now().UTC()
	return svc.repo.UpdateGrade(ctx, grd)
}

func (svc *service) Delete(ctx context.Context, gradeID, teacherID int) (Grade, error) {
	grd, err := svc.ownedGrade(ctx, gradeID, teacherID)
	if err != nil {
		return Grade{}, err
	}
	if err = svc.repo.DeleteGrade(ctx, grd.ID); err != nil {
		return Grade{}, err
	}
	return grd, nil
}

// ownedGrade fetches a grade and verifies the acting teacher owns the
// assignment it is tied to.
func (svc *service) ownedGrade(ctx context.Context, gradeID, teacherID int) (Grade, error) {
	grd, err := svc.repo.GetGradeByID(ctx, gradeID)
	if err != nil {
		return Grade{}, err
	}
	asg, err := svc.acadRepo.GetAssignmentByID(ctx, grd.AssignmentID)
	if err != nil {
		return Grade{}, errors.Wrap(err, "finding grade assignment")
	}
	if asg.TeacherID != teacherID {
		return Grade{}, core.NewAuthorizationError(errNotGradeOwner)
	}
	return grd, nil
}

func checkValueRange(value int) error {
	if value < MinValue || value > MaxValue {
		return core.NewValidationError(ErrValueOutOfRange,
			core.FieldError{Field: "value", Error: ErrValueOutOfRange.Error()})
	}
	return nil
}

func (svc *service) TeacherGrades(ctx context.Context, teacherID int) ([]Detail, error) {
	return svc.repo.QueryByTeacher(ctx, teacherID)
}

func (svc *service) TeacherSubjectGrades(ctx context.Context, teacherID, subjectID int) ([]Detail, error) {
	return svc.repo.QueryByTeacherAndSubject(ctx, teacherID, subjectID)
}

func (svc *service) AssignmentGrades(ctx context.Context, assignmentID int) ([]Detail, error) {
	return svc.repo.QueryByAssignment(ctx, assignmentID)
}

func (svc *service) StudentGrades(ctx context.Context, studentID int) ([]Detail, error) {
	return svc.repo.QueryByStudent(ctx, studentID)
}

func (svc *service) TeacherStats(ctx context.Context, teacherID int) (TeacherStats, error) {
	asgs, err := svc.acadRepo.QueryAssignmentsByTeacher(ctx, teacherID)
	if err != nil {
		return TeacherStats{}, errors.Wrap(err, "querying teacher assignments")
	}

	// each student belongs to at most one group, so distinct students across
	// assignments is the sum over the distinct assigned groups
	var totalStudents int
	seen := make(map[int]bool, len(asgs))
	for _, asg := range asgs {
		if seen[asg.GroupID] {
			continue
		}
		seen[asg.GroupID] = true
		students, err := svc.usrRepo.QueryStudentsByGroup(ctx, asg.GroupID)
		if err != nil {
			return TeacherStats{}, errors.Wrap(err, "querying group students")
		}
		totalStudents += len(students)
	}

	grades, err := svc.repo.QueryByTeacher(ctx, teacherID)
	if err != nil {
		return TeacherStats{}, errors.Wrap(err, "querying teacher grades")
	}
	var avg float64
	if len(grades) > 0 {
		var sum int
		for _, g := range grades {
			sum += g.Value
		}
		avg = float64(sum) / float64(len(grades))
	}

	return TeacherStats{
		TotalSubjects: len(asgs),
		TotalStudents: totalStudents,
		TotalGrades:   len(grades),
		AverageGrade:  avg,
	}, nil
}
