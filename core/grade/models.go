package grade

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/edusoma/academia/core"
)

const (
	MinValue = 0
	MaxValue = 10

	// PassingValue is the lowest grade counted as passing.
	PassingValue = 5
)

type Grade struct {
	ID           int       `json:"id"`
	StudentID    int       `json:"student_id"`
	AssignmentID int       `json:"assignment_id"`
	Value        int       `json:"value"`
	Comments     string    `json:"comments"`
	GradeDate    time.Time `json:"grade_date"` // UTC
}

func (g Grade) IsPassing() bool {
	return g.Value >= PassingValue
}

// Detail is a Grade joined with its student, assignment, subject and teacher,
// for listings and dashboards.
type Detail struct {
	Grade
	StudentFirstName string `json:"student_first_name"`
	StudentLastName  string `json:"student_last_name"`
	SubjectID        int    `json:"subject_id"`
	SubjectName      string `json:"subject_name"`
	TeacherID        int    `json:"teacher_id"`
	TeacherName      string `json:"teacher_name"`
	GroupName        string `json:"group_name"`
	AcademicYear     string `json:"academic_year"`
	Semester         string `json:"semester"`
}

type NewGrade struct {
	StudentID    int    `json:"student_id" form:"studentId" validate:"required"`
	AssignmentID int    `json:"assignment_id" form:"assignmentId" validate:"required"`
	Value        int    `json:"value" form:"gradeValue" validate:"min=0,max=10"`
	Comments     string `json:"comments" form:"comments"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Comments = core.CleanString(ng.Comments)
	return validate.Struct(ng)
}

type UpdateGrade struct {
	Value    int    `json:"value" form:"gradeValue" validate:"min=0,max=10"`
	Comments string `json:"comments" form:"comments"`
}

func (ug *UpdateGrade) Validate(validate *validator.Validate) error {
	ug.Comments = core.CleanString(ug.Comments)
	return validate.Struct(ug)
}

// TeacherStats summarizes a teacher's dashboard; computed over loaded lists.
type TeacherStats struct {
	TotalSubjects int     `json:"total_subjects"`
	TotalStudents int     `json:"total_students"`
	TotalGrades   int     `json:"total_grades"`
	AverageGrade  float64 `json:"average_grade"`
}

// StudentStats summarizes a student's dashboard.
type StudentStats struct {
	TotalGrades   int     `json:"total_grades"`
	AverageGrade  float64 `json:"average_grade"`
	PassingGrades int     `json:"passing_grades"`
	FailingGrades int     `json:"failing_grades"`
}

// StatsForStudent computes dashboard stats over an already-filtered grade list.
func StatsForStudent(grades []Detail) StudentStats {
	stats := StudentStats{TotalGrades: len(grades)}
	if len(grades) == 0 {
		return stats
	}
	var sum int
	for _, g := range grades {
		sum += g.Value
		if g.IsPassing() {
			stats.PassingGrades++
		} else {
			stats.FailingGrades++
		}
	}
	stats.AverageGrade = float64(sum) / float64(len(grades))
	return stats
}
