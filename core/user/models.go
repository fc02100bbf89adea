package user

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/edusoma/academia/core"
)

// Role is a closed enumeration; it is fixed per user at creation.
type Role string

const (
	RoleStudent       Role = "STUDENT"
	RoleTeacher       Role = "TEACHER"
	RoleAdministrator Role = "ADMINISTRATOR"
)

var AllRoles = []Role{RoleStudent, RoleTeacher, RoleAdministrator}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdministrator:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsStudent() bool       { return u.Role == RoleStudent }
func (u *User) IsTeacher() bool       { return u.Role == RoleTeacher }
func (u *User) IsAdministrator() bool { return u.Role == RoleAdministrator }

// Student extends a User 1:1; they share the same ID and are created and
// deleted together.
type Student struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	GroupID   *int   `json:"group_id"`
	GroupName string `json:"group_name,omitempty"` // populated on joined reads
}

func (s Student) FullName() string {
	return fmt.Sprintf("%s %s", s.FirstName, s.LastName)
}

func (s Student) InGroup(groupID int) bool {
	return s.GroupID != nil && *s.GroupID == groupID
}

// Teacher extends a User 1:1, same as Student.
type Teacher struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (t Teacher) FullName() string {
	return fmt.Sprintf("%s %s", t.FirstName, t.LastName)
}

type Administrator struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (a Administrator) FullName() string {
	return fmt.Sprintf("%s %s", a.FirstName, a.LastName)
}

// NewStudent contains information needed to register a new Student.
// The username is derived from FirstName; the initial password is LastName.
type NewStudent struct {
	FirstName string `json:"first_name" form:"firstName" validate:"required"`
	LastName  string `json:"last_name" form:"lastName" validate:"required"`
	Email     string `json:"email" form:"email" validate:"required,email"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

// NewTeacher contains information needed to register a new Teacher.
type NewTeacher struct {
	FirstName string `json:"first_name" form:"firstName" validate:"required"`
	LastName  string `json:"last_name" form:"lastName" validate:"required"`
	Email     string `json:"email" form:"email" validate:"required,email"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	return validate.Struct(nt)
}

// NewAdministrator is only created via the ops CLI; it takes an explicit
// username and password, subject to the full password policy.
type NewAdministrator struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Username  string `json:"username" validate:"required,min=3,alphanum_"`
	Password  string `json:"password" validate:"required"`
}

func (na *NewAdministrator) Validate(validate *validator.Validate) error {
	na.FirstName = core.CleanString(na.FirstName)
	na.LastName = core.CleanString(na.LastName)
	na.Username = core.CleanString(na.Username, true /* lower */)
	return validate.Struct(na)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Group membership is managed separately by the academic service.
type UpdateStudent struct {
	FirstName string `json:"first_name" form:"firstName" validate:"required"`
	LastName  string `json:"last_name" form:"lastName" validate:"required"`
	Email     string `json:"email" form:"email" validate:"required,email"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.FirstName = core.CleanString(us.FirstName)
	us.LastName = core.CleanString(us.LastName)
	us.Email = core.CleanString(us.Email, true /* lower */)
	return validate.Struct(us)
}

type UpdateTeacher struct {
	FirstName string `json:"first_name" form:"firstName" validate:"required"`
	LastName  string `json:"last_name" form:"lastName" validate:"required"`
	Email     string `json:"email" form:"email" validate:"required,email"`
}

func (ut *UpdateTeacher) Validate(validate *validator.Validate) error {
	ut.FirstName = core.CleanString(ut.FirstName)
	ut.LastName = core.CleanString(ut.LastName)
	ut.Email = core.CleanString(ut.Email, true /* lower */)
	return validate.Struct(ut)
}

type ChangePassword struct {
	OldPassword     string `json:"old_password" form:"oldPassword" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" form:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}
