package academic

import (
	"context"

	"github.com/pkg/errors"

	"github.com/edusoma/academia/core"
	"github.com/edusoma/academia/core/user"
)

var (
	// errors
	ErrGroupNotFound      = errors.New("group not found")
	ErrGroupNameExists    = errors.New("a group with this name already exists")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrSubjectCodeExists  = errors.New("a subject with this code already exists")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAssignmentExists   = errors.New("this assignment already exists")
)

type (
	Repository interface {
		CreateGroup(ctx context.Context, grp StudyGroup) (StudyGroup, error)
		GetGroupByID(ctx context.Context, id int) (StudyGroup, error)
		GroupNameExists(ctx context.Context, name string) (bool, error)
		QueryAllGroups(ctx context.Context) ([]StudyGroup, error)
		UpdateGroup(ctx context.Context, grp StudyGroup) (StudyGroup, error)
		DeleteGroup(ctx context.Context, id int) error
		CountGroups(ctx context.Context) (int, error)

		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubjectByID(ctx context.Context, id int) (Subject, error)
		SubjectCodeExists(ctx context.Context, code string) (bool, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id int) error
		CountSubjects(ctx context.Context) (int, error)

		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id int) (Assignment, error)
		AssignmentExists(ctx context.Context, subjectID, teacherID, groupID int, academicYear, semester string) (bool, error)
		QueryAllAssignments(ctx context.Context) ([]AssignmentInfo, error)
		QueryAssignmentsByTeacher(ctx context.Context, teacherID int) ([]AssignmentInfo, error)
		DeleteAssignment(ctx context.Context, id int) error
	}

	// GradeCounter is the slice of the grade repository the statistics need.
	GradeCounter interface {
		CountGrades(ctx context.Context) (int, error)
	}

	Service interface {
		CreateGroup(ctx context.Context, ng NewGroup) (StudyGroup, error)
		UpdateGroup(ctx context.Context, id int, ug UpdateGroup) (StudyGroup, error)
		DeleteGroup(ctx context.Context, id int) error
		GroupByID(ctx context.Context, id int) (StudyGroup, error)
		QueryAllGroups(ctx context.Context) ([]StudyGroup, error)

		CreateSubject(ctx context.Context, ns NewSubject) (Subject, error)
		UpdateSubject(ctx context.Context, id int, us UpdateSubject) (Subject, error)
		DeleteSubject(ctx context.Context, id int) error
		SubjectByID(ctx context.Context, id int) (Subject, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)

		CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id int) error
		QueryAllAssignments(ctx context.Context) ([]AssignmentInfo, error)
		TeacherAssignments(ctx context.Context, teacherID int) ([]AssignmentInfo, error)

		AssignStudentToGroup(ctx context.Context, studentID, groupID int) (user.Student, error)
		RemoveStudentFromGroup(ctx context.Context, studentID int) (user.Student, error)

		Statistics(ctx context.Context) (Statistics, error)
	}

	service struct {
		repo     Repository
		usrRepo  user.Repository
		gradeCnt GradeCounter
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, gradeCnt GradeCounter) Service {
	return &service{
		repo:     repo,
		usrRepo:  usrRepo,
		gradeCnt: gradeCnt,
	}
}

// Groups

func (svc *service) CreateGroup(ctx context.Context, ng NewGroup) (StudyGroup, error) {
	if err := validateGroupFields(ng.Name, ng.Year); err != nil {
		return StudyGroup{}, err
	}
	// name must be globally unique; checked on create only
	exists, err := svc.repo.GroupNameExists(ctx, ng.Name)
	if err != nil {
		return StudyGroup{}, errors.Wrap(err, "checking group name uniqueness")
	}
	if exists {
		return StudyGroup{}, core.NewValidationError(ErrGroupNameExists,
			core.FieldError{Field: "name", Error: ErrGroupNameExists.Error()})
	}
	return svc.repo.CreateGroup(ctx, StudyGroup{Name: ng.Name, Year: ng.Year})
}

func (svc *service) UpdateGroup(ctx context.Context, id int, ug UpdateGroup) (StudyGroup, error) {
	if err := validateGroupFields(ug.Name, ug.Year); err != nil {
		return StudyGroup{}, err
	}
	grp, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return StudyGroup{}, err
	}
	grp.Name = ug.Name
	grp.Year = ug.Year
	return svc.repo.UpdateGroup(ctx, grp)
}

func (svc *service) DeleteGroup(ctx context.Context, id int) error {
	return svc.repo.DeleteGroup(ctx, id)
}

func (svc *service) GroupByID(ctx context.Context, id int) (StudyGroup, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

func (svc *service) QueryAllGroups(ctx context.Context) ([]StudyGroup, error) {
	return svc.repo.QueryAllGroups(ctx)
}

func validateGroupFields(name string, year int) error {
	if core.CleanString(name) == "" {
		return core.NewValidationError(errors.New("group name is required"),
			core.FieldError{Field: "name", Error: "group name is required"})
	}
	if year < 2000 || year > 2100 {
		return core.NewValidationError(errors.New("year must be between 2000 and 2100"),
			core.FieldError{Field: "year", Error: "year must be between 2000 and 2100"})
	}
	return nil
}

// Subjects

func (svc *service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	if err := validateSubjectFields(ns.Name, ns.Code, ns.Credits); err != nil {
		return Subject{}, err
	}
	// code must be globally unique; checked on create only
	exists, err := svc.repo.SubjectCodeExists(ctx, ns.Code)
	if err != nil {
		return Subject{}, errors.Wrap(err, "checking subject code uniqueness")
	}
	if exists {
		return Subject{}, core.NewValidationError(ErrSubjectCodeExists,
			core.FieldError{Field: "code", Error: ErrSubjectCodeExists.Error()})
	}
	return svc.repo.CreateSubject(ctx, Subject{
		Name:        ns.Name,
		Code:        ns.Code,
		Credits:     ns.Credits,
		Description: ns.Description,
	})
}

func (svc *service) UpdateSubject(ctx context.Context, id int, us UpdateSubject) (Subject, error) {
	if err := validateSubjectFields(us.Name, us.Code, us.Credits); err != nil {
		return Subject{}, err
	}
	sub, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	sub.Name = us.Name
	sub.Code = us.Code
	sub.Credits = us.Credits
	sub.Description = us.Description
	return svc.repo.UpdateSubject(ctx, sub)
}

func (svc *service) DeleteSubject(ctx context.Context, id int) error {
	return svc.repo.DeleteSubject(ctx, id)
}

func (svc *service) SubjectByID(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *service) QueryAllSubjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx)
}

func validateSubjectFields(name, code string, credits int) error {
	if core.CleanString(name) == "" {
		return core.NewValidationError(errors.New("subject name is required"),
			core.FieldError{Field: "name", Error: "subject name is required"})
	}
	if core.CleanString(code) == "" {
		return core.NewValidationError(errors.New("subject code is required"),
			core.FieldError{Field: "code", Error: "subject code is required"})
	}
	if credits < 0 {
		return core.NewValidationError(errors.New("credits must not be negative"),
			core.FieldError{Field: "credits", Error: "credits must not be negative"})
	}
	return nil
}

// Assignments

func (svc *service) CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error) {
	if _, err := svc.repo.GetSubjectByID(ctx, na.SubjectID); err != nil {
		return Assignment{}, err
	}
	if _, err := svc.usrRepo.GetTeacherByID(ctx, na.TeacherID); err != nil {
		return Assignment{}, err
	}
	if _, err := svc.repo.GetGroupByID(ctx, na.GroupID); err != nil {
		return Assignment{}, err
	}

	exists, err := svc.repo.AssignmentExists(ctx, na.SubjectID, na.TeacherID, na.GroupID, na.AcademicYear, na.Semester)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "checking assignment uniqueness")
	}
	if exists {
		return Assignment{}, core.NewValidationError(ErrAssignmentExists)
	}

	return svc.repo.CreateAssignment(ctx, Assignment{
		SubjectID:    na.SubjectID,
		TeacherID:    na.TeacherID,
		GroupID:      na.GroupID,
		AcademicYear: na.AcademicYear,
		Semester:     na.Semester,
	})
}

func (svc *service) DeleteAssignment(ctx context.Context, id int) error {
	return svc.repo.DeleteAssignment(ctx, id)
}

func (svc *service) QueryAllAssignments(ctx context.Context) ([]AssignmentInfo, error) {
	return svc.repo.QueryAllAssignments(ctx)
}

func (svc *service) TeacherAssignments(ctx context.Context, teacherID int) ([]AssignmentInfo, error) {
	return svc.repo.QueryAssignmentsByTeacher(ctx, teacherID)
}

// Student / group membership

func (svc *service) AssignStudentToGroup(ctx context.Context, studentID, groupID int) (user.Student, error) {
	if _, err := svc.usrRepo.GetStudentByID(ctx, studentID); err != nil {
		return user.Student{}, err
	}
	if _, err := svc.repo.GetGroupByID(ctx, groupID); err != nil {
		return user.Student{}, err
	}
	return svc.usrRepo.SetStudentGroup(ctx, studentID, &groupID)
}

func (svc *service) RemoveStudentFromGroup(ctx context.Context, studentID int) (user.Student, error) {
	if _, err := svc.usrRepo.GetStudentByID(ctx, studentID); err != nil {
		return user.Student{}, err
	}
	return svc.usrRepo.SetStudentGroup(ctx, studentID, nil)
}

// Statistics

func (svc *service) Statistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	var err error

	if stats.TotalStudents, err = svc.usrRepo.CountStudents(ctx); err != nil {
		return Statistics{}, errors.Wrap(err, "counting students")
	}
	if stats.TotalTeachers, err = svc.usrRepo.CountTeachers(ctx); err != nil {
		return Statistics{}, errors.Wrap(err, "counting teachers")
	}
	if stats.TotalGroups, err = svc.repo.CountGroups(ctx); err != nil {
		return Statistics{}, errors.Wrap(err, "counting groups")
	}
	if stats.TotalSubjects, err = svc.repo.CountSubjects(ctx); err != nil {
		return Statistics{}, errors.Wrap(err, "counting subjects")
	}
	if stats.TotalGrades, err = svc.gradeCnt.CountGrades(ctx); err != nil {
		return Statistics{}, errors.Wrap(err, "counting grades")
	}
	return stats, nil
}
