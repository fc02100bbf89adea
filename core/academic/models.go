package academic

import (
	"github.com/go-playground/validator/v10"

	"github.com/edusoma/academia/core"
)

// StudyGroup holds no students; a Student optionally references a group.
type StudyGroup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Year int    `json:"year"`
}

type Subject struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Credits     int    `json:"credits"`
	Description string `json:"description"`
}

// Assignment joins Subject x Teacher x StudyGroup for a term: "this teacher
// teaches this subject to this group this term".
type Assignment struct {
	ID           int    `json:"id"`
	SubjectID    int    `json:"subject_id"`
	TeacherID    int    `json:"teacher_id"`
	GroupID      int    `json:"group_id"`
	AcademicYear string `json:"academic_year"`
	Semester     string `json:"semester"`
}

// AssignmentInfo is an Assignment with its referenced names resolved, for listings.
type AssignmentInfo struct {
	Assignment
	SubjectName string `json:"subject_name"`
	SubjectCode string `json:"subject_code"`
	TeacherName string `json:"teacher_name"`
	GroupName   string `json:"group_name"`
}

type Statistics struct {
	TotalStudents int `json:"total_students"`
	TotalTeachers int `json:"total_teachers"`
	TotalGroups   int `json:"total_groups"`
	TotalSubjects int `json:"total_subjects"`
	TotalGrades   int `json:"total_grades"`
}

type NewGroup struct {
	Name string `json:"name" form:"groupName" validate:"required"`
	Year int    `json:"year" form:"year" validate:"min=2000,max=2100"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	return validate.Struct(ng)
}

type UpdateGroup struct {
	Name string `json:"name" form:"groupName" validate:"required"`
	Year int    `json:"year" form:"year" validate:"min=2000,max=2100"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	ug.Name = core.CleanString(ug.Name)
	return validate.Struct(ug)
}

type NewSubject struct {
	Name        string `json:"name" form:"subjectName" validate:"required"`
	Code        string `json:"code" form:"subjectCode" validate:"required"`
	Credits     int    `json:"credits" form:"credits" validate:"min=0"`
	Description string `json:"description" form:"description"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code)
	ns.Description = core.CleanString(ns.Description)
	return validate.Struct(ns)
}

type UpdateSubject struct {
	Name        string `json:"name" form:"subjectName" validate:"required"`
	Code        string `json:"code" form:"subjectCode" validate:"required"`
	Credits     int    `json:"credits" form:"credits" validate:"min=0"`
	Description string `json:"description" form:"description"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Code = core.CleanString(us.Code)
	us.Description = core.CleanString(us.Description)
	return validate.Struct(us)
}

type NewAssignment struct {
	SubjectID    int    `json:"subject_id" form:"subjectId" validate:"required"`
	TeacherID    int    `json:"teacher_id" form:"teacherId" validate:"required"`
	GroupID      int    `json:"group_id" form:"groupId" validate:"required"`
	AcademicYear string `json:"academic_year" form:"academicYear" validate:"required"`
	Semester     string `json:"semester" form:"semester" validate:"required"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.AcademicYear = core.CleanString(na.AcademicYear)
	na.Semester = core.CleanString(na.Semester)
	return validate.Struct(na)
}
