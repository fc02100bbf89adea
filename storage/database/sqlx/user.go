package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edusoma/academia/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           int       `db:"id"`
	Username     string    `db:"username"`
	Role         string    `db:"role"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toCore() user.User {
	return user.User{
		ID:           r.ID,
		Username:     r.Username,
		Role:         user.Role(r.Role),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type studentRow struct {
	ID        int         `db:"id"`
	FirstName string      `db:"first_name"`
	LastName  string      `db:"last_name"`
	Email     string      `db:"email"`
	GroupID   null.Int    `db:"group_id"`
	GroupName null.String `db:"group_name"`
}

func (r studentRow) toCore() user.Student {
	std := user.Student{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		GroupName: r.GroupName.String,
	}
	if r.GroupID.Valid {
		gid := r.GroupID.Int
		std.GroupID = &gid
	}
	return std
}

type teacherRow struct {
	ID        int    `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
}

func (r teacherRow) toCore() user.Teacher {
	return user.Teacher(r)
}

type administratorRow struct {
	ID        int    `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

func (r administratorRow) toCore() user.Administrator {
	return user.Administrator(r)
}

const selectStudent = `
SELECT s.id, s.first_name, s.last_name, s.email, s.group_id, g.name AS group_name
FROM students s
LEFT JOIN study_groups g ON g.id = s.group_id`

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username string) error {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	if err := repo.db.GetContext(ctx, &exists, q, username); err != nil {
		return errors.Wrap(err, "checking username")
	}
	if exists {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row, err := insertUser(ctx, repo.db, usr)
	if err != nil {
		return user.User{}, err
	}
	return row.toCore(), nil
}

type execGetter interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertUser(ctx context.Context, db execGetter, usr user.User) (userRow, error) {
	var row userRow
	q := `
INSERT INTO users (username, role, password_hash)
VALUES ($1, $2, $3)
RETURNING id, username, role, password_hash, created_at, updated_at`
	err := db.GetContext(ctx, &row, q, usr.Username, usr.Role.String(), usr.PasswordHash)
	return row, errors.Wrap(err, "inserting user")
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var row userRow
	q := `SELECT id, username, role, password_hash, created_at, updated_at FROM users WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.toCore(), nil
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var row userRow
	q := `SELECT id, username, role, password_hash, created_at, updated_at FROM users WHERE username = $1`
	if err := repo.db.GetContext(ctx, &row, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.toCore(), nil
}

func (repo *userRepository) UpdateUserPassword(ctx context.Context, id int, hash []byte) error {
	q := `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, q, hash, id)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

// Students

func (repo *userRepository) CreateStudent(ctx context.Context, usr user.User, std user.Student) (user.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.Student{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	uRow, err := insertUser(ctx, tx, usr)
	if err != nil {
		return user.Student{}, err
	}
	q := `INSERT INTO students (id, first_name, last_name, email, group_id) VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, q, uRow.ID, std.FirstName, std.LastName, std.Email, null.IntFromPtr(std.GroupID)); err != nil {
		return user.Student{}, errors.Wrap(err, "inserting student")
	}
	if err = tx.Commit(); err != nil {
		return user.Student{}, errors.Wrap(err, "committing transaction")
	}

	std.ID = uRow.ID
	return std, nil
}

func (repo *userRepository) GetStudentByID(ctx context.Context, id int) (user.Student, error) {
	var row studentRow
	q := selectStudent + ` WHERE s.id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.Student{}, user.ErrStudentNotFound
		}
		return user.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toCore(), nil
}

func (repo *userRepository) GetStudentByUsername(ctx context.Context, username string) (user.Student, error) {
	var row studentRow
	q := selectStudent + `
JOIN users u ON u.id = s.id
WHERE u.username = $1`
	if err := repo.db.GetContext(ctx, &row, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.Student{}, user.ErrStudentNotFound
		}
		return user.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toCore(), nil
}

func (repo *userRepository) QueryAllStudents(ctx context.Context) ([]user.Student, error) {
	var rows []studentRow
	q := selectStudent + ` ORDER BY s.id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return studentsToCore(rows), nil
}

func (repo *userRepository) QueryStudentsByGroup(ctx context.Context, groupID int) ([]user.Student, error) {
	var rows []studentRow
	q := selectStudent + ` WHERE s.group_id = $1 ORDER BY s.id`
	if err := repo.db.SelectContext(ctx, &rows, q, groupID); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return studentsToCore(rows), nil
}

func studentsToCore(rows []studentRow) []user.Student {
	students := make([]user.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toCore())
	}
	return students
}

func (repo *userRepository) UpdateStudent(ctx context.Context, std user.Student) (user.Student, error) {
	var row studentRow
	q := `
UPDATE students SET first_name = $1, last_name = $2, email = $3
WHERE id = $4
RETURNING id, first_name, last_name, email, group_id, NULL AS group_name`
	err := repo.db.GetContext(ctx, &row, q, std.FirstName, std.LastName, std.Email, std.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.Student{}, user.ErrStudentNotFound
		}
		return user.Student{}, errors.Wrap(err, "updating student")
	}
	return row.toCore(), nil
}

func (repo *userRepository) SetStudentGroup(ctx context.Context, studentID int, groupID *int) (user.Student, error) {
	var row studentRow
	q := `
UPDATE students SET group_id = $1
WHERE id = $2
RETURNING id, first_name, last_name, email, group_id, NULL AS group_name`
	err := repo.db.GetContext(ctx, &row, q, null.IntFromPtr(groupID), studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.Student{}, user.ErrStudentNotFound
		}
		return user.Student{}, errors.Wrap(err, "setting student group")
	}
	return row.toCore(), nil
}

func (repo *userRepository) DeleteStudent(ctx context.Context, id int) error {
	return repo.deleteRoleUser(ctx, "students", id, user.ErrStudentNotFound)
}

func (repo *userRepository) CountStudents(ctx context.Context) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`)
	return count, errors.Wrap(err, "counting students")
}

// deleteRoleUser removes the role row and the user row as one unit.
func (repo *userRepository) deleteRoleUser(ctx context.Context, table string, id int, notFound error) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting "+table)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// Teachers

func (repo *userRepository) CreateTeacher(ctx context.Context, usr user.User, tch user.Teacher) (user.Teacher, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.Teacher{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	uRow, err := insertUser(ctx, tx, usr)
	if err != nil {
		return user.Teacher{}, err
	}
	q := `INSERT INTO teachers (id, first_name, last_name, email) VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, q, uRow.ID, tch.FirstName, tch.LastName, tch.Email); err != nil {
		return user.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	if err = tx.Commit(); err != nil {
		return user.Teacher{}, errors.Wrap(err, "committing transaction")
	}

	tch.ID = uRow.ID
	return tch, nil
}

func (repo *userRepository) GetTeacherByID(ctx context.Context, id int) (user.Teacher, error) {
	var row teacherRow
	q := `SELECT id, first_name, last_name, email FROM teachers WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.Teacher{}, user.ErrTeacherNotFound
		}
		return user.Teacher{}, errors.Wrap(err, "getting teacher")
	}
	return row.toCore(), nil
}

func (repo *userRepository) GetTeacherByUsername(ctx context.Context, username string) (user.Teacher, error) {
	var row teacherRow
	q := `
SELECT t.id, t.first_name, t.last_name, t.email
FROM teachers t
JOIN users u ON u.id = t.id
WHERE u.username = $1`
	if err := repo.db.GetContext(ctx, &row, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.Teacher{}, user.ErrTeacherNotFound
		}
		return user.Teacher{}, errors.Wrap(err, "getting teacher")
	}
	return row.toCore(), nil
}

func (repo *userRepository) QueryAllTeachers(ctx context.Context) ([]user.Teacher, error) {
	var rows []teacherRow
	q := `SELECT id, first_name, last_name, email FROM teachers ORDER BY id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]user.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.toCore())
	}
	return teachers, nil
}

func (repo *userRepository) UpdateTeacher(ctx context.Context, tch user.Teacher) (user.Teacher, error) {
	var row teacherRow
	q := `
UPDATE teachers SET first_name = $1, last_name = $2, email = $3
WHERE id = $4
RETURNING id, first_name, last_name, email`
	err := repo.db.GetContext(ctx, &row, q, tch.FirstName, tch.LastName, tch.Email, tch.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.Teacher{}, user.ErrTeacherNotFound
		}
		return user.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	return row.toCore(), nil
}

func (repo *userRepository) DeleteTeacher(ctx context.Context, id int) error {
	return repo.deleteRoleUser(ctx, "teachers", id, user.ErrTeacherNotFound)
}

func (repo *userRepository) CountTeachers(ctx context.Context) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM teachers`)
	return count, errors.Wrap(err, "counting teachers")
}

// Administrators

func (repo *userRepository) CreateAdministrator(ctx context.Context, usr user.User, adm user.Administrator) (user.Administrator, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.Administrator{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	uRow, err := insertUser(ctx, tx, usr)
	if err != nil {
		return user.Administrator{}, err
	}
	q := `INSERT INTO administrators (id, first_name, last_name) VALUES ($1, $2, $3)`
	if _, err = tx.ExecContext(ctx, q, uRow.ID, adm.FirstName, adm.LastName); err != nil {
		return user.Administrator{}, errors.Wrap(err, "inserting administrator")
	}
	if err = tx.Commit(); err != nil {
		return user.Administrator{}, errors.Wrap(err, "committing transaction")
	}

	adm.ID = uRow.ID
	return adm, nil
}

func (repo *userRepository) GetAdministratorByUsername(ctx context.Context, username string) (user.Administrator, error) {
	var row administratorRow
	q := `
SELECT a.id, a.first_name, a.last_name
FROM administrators a
JOIN users u ON u.id = a.id
WHERE u.username = $1`
	if err := repo.db.GetContext(ctx, &row, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.Administrator{}, user.ErrNotFound
		}
		return user.Administrator{}, errors.Wrap(err, "getting administrator")
	}
	return row.toCore(), nil
}
