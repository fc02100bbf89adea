package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edusoma/academia/core/grade"
)

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) grade.Repository {
	return &gradeRepository{db: db}
}

type gradeRow struct {
	ID           int       `db:"id"`
	StudentID    int       `db:"student_id"`
	AssignmentID int       `db:"assignment_id"`
	Value        int       `db:"value"`
	Comments     string    `db:"comments"`
	GradeDate    time.Time `db:"grade_date"`
}

func (r gradeRow) toCore() grade.Grade {
	return grade.Grade(r)
}

type detailRow struct {
	gradeRow
	StudentFirstName string `db:"student_first_name"`
	StudentLastName  string `db:"student_last_name"`
	SubjectID        int    `db:"subject_id"`
	SubjectName      string `db:"subject_name"`
	TeacherID        int    `db:"teacher_id"`
	TeacherName      string `db:"teacher_name"`
	GroupName        string `db:"group_name"`
	AcademicYear     string `db:"academic_year"`
	Semester         string `db:"semester"`
}

func (r detailRow) toCore() grade.Detail {
	return grade.Detail{
		Grade:            r.gradeRow.toCore(),
		StudentFirstName: r.StudentFirstName,
		StudentLastName:  r.StudentLastName,
		SubjectID:        r.SubjectID,
		SubjectName:      r.SubjectName,
		TeacherID:        r.TeacherID,
		TeacherName:      r.TeacherName,
		GroupName:        r.GroupName,
		AcademicYear:     r.AcademicYear,
		Semester:         r.Semester,
	}
}

const selectDetail = `
SELECT gr.id, gr.student_id, gr.assignment_id, gr.value, gr.comments, gr.grade_date,
       st.first_name AS student_first_name, st.last_name AS student_last_name,
       a.subject_id, su.name AS subject_name,
       a.teacher_id, te.first_name || ' ' || te.last_name AS teacher_name,
       sg.name AS group_name, a.academic_year, a.semester
FROM grades gr
JOIN students st ON st.id = gr.student_id
JOIN assignments a ON a.id = gr.assignment_id
JOIN subjects su ON su.id = a.subject_id
JOIN teachers te ON te.id = a.teacher_id
JOIN study_groups sg ON sg.id = a.group_id`

func (repo *gradeRepository) CreateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	var row gradeRow
	q := `
INSERT INTO grades (student_id, assignment_id, value, comments, grade_date)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, student_id, assignment_id, value, comments, grade_date`
	err := repo.db.GetContext(ctx, &row, q, grd.StudentID, grd.AssignmentID, grd.Value, grd.Comments, grd.GradeDate)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return row.toCore(), nil
}

func (repo *gradeRepository) GetGradeByID(ctx context.Context, id int) (grade.Grade, error) {
	var row gradeRow
	q := `SELECT id, student_id, assignment_id, value, comments, grade_date FROM grades WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grade.Grade{}, grade.ErrNotFound
		}
		return grade.Grade{}, errors.Wrap(err, "getting grade")
	}
	return row.toCore(), nil
}

func (repo *gradeRepository) GradeExists(ctx context.Context, studentID, assignmentID int) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM grades WHERE student_id = $1 AND assignment_id = $2)`
	err := repo.db.GetContext(ctx, &exists, q, studentID, assignmentID)
	return exists, errors.Wrap(err, "checking grade")
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	var row gradeRow
	q := `
UPDATE grades SET value = $1, comments = $2, grade_date = $3
WHERE id = $4
RETURNING id, student_id, assignment_id, value, comments, grade_date`
	err := repo.db.GetContext(ctx, &row, q, grd.Value, grd.Comments, grd.GradeDate, grd.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grade.Grade{}, grade.ErrNotFound
		}
		return grade.Grade{}, errors.Wrap(err, "updating grade")
	}
	return row.toCore(), nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grade.ErrNotFound
	}
	return nil
}

func (repo *gradeRepository) QueryByTeacher(ctx context.Context, teacherID int) ([]grade.Detail, error) {
	var rows []detailRow
	q := selectDetail + ` WHERE a.teacher_id = $1 ORDER BY gr.grade_date DESC, gr.id DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, teacherID); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	return detailsToCore(rows), nil
}

func (repo *gradeRepository) QueryByTeacherAndSubject(ctx context.Context, teacherID, subjectID int) ([]grade.Detail, error) {
	var rows []detailRow
	q := selectDetail + `
WHERE a.teacher_id = $1 AND a.subject_id = $2
ORDER BY st.last_name, st.first_name`
	if err := repo.db.SelectContext(ctx, &rows, q, teacherID, subjectID); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	return detailsToCore(rows), nil
}

func (repo *gradeRepository) QueryByAssignment(ctx context.Context, assignmentID int) ([]grade.Detail, error) {
	var rows []detailRow
	q := selectDetail + ` WHERE gr.assignment_id = $1 ORDER BY gr.grade_date DESC, gr.id DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, assignmentID); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	return detailsToCore(rows), nil
}

func (repo *gradeRepository) QueryByStudent(ctx context.Context, studentID int) ([]grade.Detail, error) {
	var rows []detailRow
	q := selectDetail + ` WHERE gr.student_id = $1 ORDER BY gr.grade_date DESC, gr.id DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	return detailsToCore(rows), nil
}

func detailsToCore(rows []detailRow) []grade.Detail {
	details := make([]grade.Detail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.toCore())
	}
	return details
}

func (repo *gradeRepository) CountByTeacher(ctx context.Context, teacherID int) (int, error) {
	var count int
	q := `
SELECT COUNT(*)
FROM grades gr
JOIN assignments a ON a.id = gr.assignment_id
WHERE a.teacher_id = $1`
	err := repo.db.GetContext(ctx, &count, q, teacherID)
	return count, errors.Wrap(err, "counting grades")
}

func (repo *gradeRepository) CountGrades(ctx context.Context) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM grades`)
	return count, errors.Wrap(err, "counting grades")
}
