package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edusoma/academia/core/academic"
)

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *sqlx.DB) academic.Repository {
	return &academicRepository{db: db}
}

type groupRow struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
	Year int    `db:"year"`
}

func (r groupRow) toCore() academic.StudyGroup {
	return academic.StudyGroup(r)
}

type subjectRow struct {
	ID          int    `db:"id"`
	Name        string `db:"name"`
	Code        string `db:"code"`
	Credits     int    `db:"credits"`
	Description string `db:"description"`
}

func (r subjectRow) toCore() academic.Subject {
	return academic.Subject(r)
}

type assignmentRow struct {
	ID           int    `db:"id"`
	SubjectID    int    `db:"subject_id"`
	TeacherID    int    `db:"teacher_id"`
	GroupID      int    `db:"group_id"`
	AcademicYear string `db:"academic_year"`
	Semester     string `db:"semester"`
}

func (r assignmentRow) toCore() academic.Assignment {
	return academic.Assignment(r)
}

type assignmentInfoRow struct {
	assignmentRow
	SubjectName string `db:"subject_name"`
	SubjectCode string `db:"subject_code"`
	TeacherName string `db:"teacher_name"`
	GroupName   string `db:"group_name"`
}

func (r assignmentInfoRow) toCore() academic.AssignmentInfo {
	return academic.AssignmentInfo{
		Assignment:  r.assignmentRow.toCore(),
		SubjectName: r.SubjectName,
		SubjectCode: r.SubjectCode,
		TeacherName: r.TeacherName,
		GroupName:   r.GroupName,
	}
}

const selectAssignmentInfo = `
SELECT a.id, a.subject_id, a.teacher_id, a.group_id, a.academic_year, a.semester,
       s.name AS subject_name, s.code AS subject_code,
       t.first_name || ' ' || t.last_name AS teacher_name,
       g.name AS group_name
FROM assignments a
JOIN subjects s ON s.id = a.subject_id
JOIN teachers t ON t.id = a.teacher_id
JOIN study_groups g ON g.id = a.group_id`

// Study groups

func (repo *academicRepository) CreateGroup(ctx context.Context, grp academic.StudyGroup) (academic.StudyGroup, error) {
	var row groupRow
	q := `INSERT INTO study_groups (name, year) VALUES ($1, $2) RETURNING id, name, year`
	if err := repo.db.GetContext(ctx, &row, q, grp.Name, grp.Year); err != nil {
		return academic.StudyGroup{}, errors.Wrap(err, "inserting group")
	}
	return row.toCore(), nil
}

func (repo *academicRepository) GetGroupByID(ctx context.Context, id int) (academic.StudyGroup, error) {
	var row groupRow
	q := `SELECT id, name, year FROM study_groups WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return academic.StudyGroup{}, academic.ErrGroupNotFound
		}
		return academic.StudyGroup{}, errors.Wrap(err, "getting group")
	}
	return row.toCore(), nil
}

func (repo *academicRepository) GroupNameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM study_groups WHERE name = $1)`
	err := repo.db.GetContext(ctx, &exists, q, name)
	return exists, errors.Wrap(err, "checking group name")
}

func (repo *academicRepository) QueryAllGroups(ctx context.Context) ([]academic.StudyGroup, error) {
	var rows []groupRow
	q := `SELECT id, name, year FROM study_groups ORDER BY id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	groups := make([]academic.StudyGroup, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, row.toCore())
	}
	return groups, nil
}

func (repo *academicRepository) UpdateGroup(ctx context.Context, grp academic.StudyGroup) (academic.StudyGroup, error) {
	var row groupRow
	q := `UPDATE study_groups SET name = $1, year = $2 WHERE id = $3 RETURNING id, name, year`
	if err := repo.db.GetContext(ctx, &row, q, grp.Name, grp.Year, grp.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return academic.StudyGroup{}, academic.ErrGroupNotFound
		}
		return academic.StudyGroup{}, errors.Wrap(err, "updating group")
	}
	return row.toCore(), nil
}

func (repo *academicRepository) DeleteGroup(ctx context.Context, id int) error {
	// students.group_id is ON DELETE SET NULL
	res, err := repo.db.ExecContext(ctx, `DELETE FROM study_groups WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting group")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return academic.ErrGroupNotFound
	}
	return nil
}

func (repo *academicRepository) CountGroups(ctx context.Context) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM study_groups`)
	return count, errors.Wrap(err, "counting groups")
}

// Subjects

func (repo *academicRepository) CreateSubject(ctx context.Context, sub academic.Subject) (academic.Subject, error) {
	var row subjectRow
	q := `
INSERT INTO subjects (name, code, credits, description)
VALUES ($1, $2, $3, $4)
RETURNING id, name, code, credits, description`
	if err := repo.db.GetContext(ctx, &row, q, sub.Name, sub.Code, sub.Credits, sub.Description); err != nil {
		return academic.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return row.toCore(), nil
}

func (repo *academicRepository) GetSubjectByID(ctx context.Context, id int) (academic.Subject, error) {
	var row subjectRow
	q := `SELECT id, name, code, credits, description FROM subjects WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return academic.Subject{}, academic.ErrSubjectNotFound
		}
		return academic.Subject{}, errors.Wrap(err, "getting subject")
	}
	return row.toCore(), nil
}

func (repo *academicRepository) SubjectCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM subjects WHERE code = $1)`
	err := repo.db.GetContext(ctx, &exists, q, code)
	return exists, errors.Wrap(err, "checking subject code")
}

func (repo *academicRepository) QueryAllSubjects(ctx context.Context) ([]academic.Subject, error) {
	var rows []subjectRow
	q := `SELECT id, name, code, credits, description FROM subjects ORDER BY id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]academic.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.toCore())
	}
	return subjects, nil
}

func (repo *academicRepository) UpdateSubject(ctx context.Context, sub academic.Subject) (academic.Subject, error) {
	var row subjectRow
	q := `
UPDATE subjects SET name = $1, code = $2, credits = $3, description = $4
WHERE id = $5
RETURNING id, name, code, credits, description`
	err := repo.db.GetContext(ctx, &row, q, sub.Name, sub.Code, sub.Credits, sub.Description, sub.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return academic.Subject{}, academic.ErrSubjectNotFound
		}
		return academic.Subject{}, errors.Wrap(err, "updating subject")
	}
	return row.toCore(), nil
}

func (repo *academicRepository) DeleteSubject(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return academic.ErrSubjectNotFound
	}
	return nil
}

func (repo *academicRepository) CountSubjects(ctx context.Context) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM subjects`)
	return count, errors.Wrap(err, "counting subjects")
}

// Assignments

func (repo *academicRepository) CreateAssignment(ctx context.Context, asg academic.Assignment) (academic.Assignment, error) {
	var row assignmentRow
	q := `
INSERT INTO assignments (subject_id, teacher_id, group_id, academic_year, semester)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, subject_id, teacher_id, group_id, academic_year, semester`
	err := repo.db.GetContext(ctx, &row, q, asg.SubjectID, asg.TeacherID, asg.GroupID, asg.AcademicYear, asg.Semester)
	if err != nil {
		return academic.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return row.toCore(), nil
}

func (repo *academicRepository) GetAssignmentByID(ctx context.Context, id int) (academic.Assignment, error) {
	var row assignmentRow
	q := `SELECT id, subject_id, teacher_id, group_id, academic_year, semester FROM assignments WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return academic.Assignment{}, academic.ErrAssignmentNotFound
		}
		return academic.Assignment{}, errors.Wrap(err, "getting assignment")
	}
	return row.toCore(), nil
}

func (repo *academicRepository) AssignmentExists(ctx context.Context, subjectID, teacherID, groupID int, academicYear, semester string) (bool, error) {
	var exists bool
	q := `
SELECT EXISTS (
	SELECT 1 FROM assignments
	WHERE subject_id = $1 AND teacher_id = $2 AND group_id = $3 AND academic_year = $4 AND semester = $5
)`
	err := repo.db.GetContext(ctx, &exists, q, subjectID, teacherID, groupID, academicYear, semester)
	return exists, errors.Wrap(err, "checking assignment")
}

func (repo *academicRepository) QueryAllAssignments(ctx context.Context) ([]academic.AssignmentInfo, error) {
	var rows []assignmentInfoRow
	q := selectAssignmentInfo + ` ORDER BY a.id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return assignmentInfosToCore(rows), nil
}

func (repo *academicRepository) QueryAssignmentsByTeacher(ctx context.Context, teacherID int) ([]academic.AssignmentInfo, error) {
	var rows []assignmentInfoRow
	q := selectAssignmentInfo + ` WHERE a.teacher_id = $1 ORDER BY a.id`
	if err := repo.db.SelectContext(ctx, &rows, q, teacherID); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return assignmentInfosToCore(rows), nil
}

func assignmentInfosToCore(rows []assignmentInfoRow) []academic.AssignmentInfo {
	infos := make([]academic.AssignmentInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, row.toCore())
	}
	return infos
}

func (repo *academicRepository) DeleteAssignment(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return academic.ErrAssignmentNotFound
	}
	return nil
}
