package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/edusoma/academia/core"
)

var (
	// errors
	ErrNotFound             = errors.New("user not found")
	ErrStudentNotFound      = errors.New("student not found")
	ErrTeacherNotFound      = errors.New("teacher not found")
	ErrUsernameExists       = errors.New("a user with this username already exists")
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrInvalidOldPassword   = errors.New("current password is incorrect")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		UpdateUserPassword(ctx context.Context, id int, hash []byte) error

		// CreateStudent persists the User and the Student as one unit; both
		// rows share the same ID.
		CreateStudent(ctx context.Context, usr User, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByUsername(ctx context.Context, username string) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		QueryStudentsByGroup(ctx context.Context, groupID int) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		SetStudentGroup(ctx context.Context, studentID int, groupID *int) (Student, error)
		// DeleteStudent removes the Student row and its User row atomically.
		DeleteStudent(ctx context.Context, id int) error
		CountStudents(ctx context.Context) (int, error)

		CreateTeacher(ctx context.Context, usr User, tch Teacher) (Teacher, error)
		GetTeacherByID(ctx context.Context, id int) (Teacher, error)
		GetTeacherByUsername(ctx context.Context, username string) (Teacher, error)
		QueryAllTeachers(ctx context.Context) ([]Teacher, error)
		UpdateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		// DeleteTeacher removes the Teacher row and its User row atomically.
		DeleteTeacher(ctx context.Context, id int) error
		CountTeachers(ctx context.Context) (int, error)

		CreateAdministrator(ctx context.Context, usr User, adm Administrator) (Administrator, error)
		GetAdministratorByUsername(ctx context.Context, username string) (Administrator, error)
	}

	Service interface {
		Authenticate(ctx context.Context, username, password string) (User, error)
		DisplayName(ctx context.Context, usr User) string

		RegisterStudent(ctx context.Context, ns NewStudent) (Student, error)
		RegisterTeacher(ctx context.Context, nt NewTeacher) (Teacher, error)
		CreateAdministrator(ctx context.Context, na NewAdministrator) (Administrator, error)

		GetByID(ctx context.Context, id int) (User, error)
		GetByUsername(ctx context.Context, username string) (User, error)

		StudentByID(ctx context.Context, id int) (Student, error)
		StudentByUsername(ctx context.Context, username string) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		StudentsByGroup(ctx context.Context, groupID int) ([]Student, error)
		UpdateStudent(ctx context.Context, id int, us UpdateStudent) (Student, error)
		DeleteStudent(ctx context.Context, id int) error

		TeacherByID(ctx context.Context, id int) (Teacher, error)
		TeacherByUsername(ctx context.Context, username string) (Teacher, error)
		QueryAllTeachers(ctx context.Context) ([]Teacher, error)
		UpdateTeacher(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error)
		DeleteTeacher(ctx context.Context, id int) error

		ChangePassword(ctx context.Context, userID int, cp ChangePassword) error
		SetPassword(ctx context.Context, username, password string) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// DashboardPath maps a user's role to its landing page; anything else lands
// back on the login page.
func DashboardPath(usr User) string {
	switch usr.Role {
	case RoleStudent:
		return "/student/dashboard"
	case RoleTeacher:
		return "/teacher/dashboard"
	case RoleAdministrator:
		return "/admin/dashboard"
	default:
		return "/login"
	}
}

// DeriveUsername computes the username seeded from a first name at registration.
func DeriveUsername(firstName string) string {
	return core.CleanString(firstName, true /* lower */)
}

// Authenticate fails closed: blank input, an unknown username and a password
// mismatch are indistinguishable to the caller.
func (svc *service) Authenticate(ctx context.Context, username, password string) (User, error) {
	username = core.CleanString(username, true /* lower */)
	password = core.CleanString(password)
	if username == "" || password == "" {
		return User{}, ErrAuthenticationFailed
	}

	usr, err := svc.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(password); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	return usr, nil
}

// DisplayName resolves the full name of the role entity behind usr,
// falling back to the username.
func (svc *service) DisplayName(ctx context.Context, usr User) string {
	switch usr.Role {
	case RoleStudent:
		if std, err := svc.repo.GetStudentByUsername(ctx, usr.Username); err == nil {
			return std.FullName()
		}
	case RoleTeacher:
		if tch, err := svc.repo.GetTeacherByUsername(ctx, usr.Username); err == nil {
			return tch.FullName()
		}
	case RoleAdministrator:
		if adm, err := svc.repo.GetAdministratorByUsername(ctx, usr.Username); err == nil {
			return adm.FullName()
		}
	}
	return usr.Username
}

func (svc *service) checkUsernameUniqueness(ctx context.Context, uname string) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname); err != nil {
		if errors.Cause(err) == ErrUsernameExists {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) RegisterStudent(ctx context.Context, ns NewStudent) (Student, error) {
	uname := DeriveUsername(ns.FirstName)
	if err := svc.checkUsernameUniqueness(ctx, uname); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Username:  uname,
		Role:      RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	initialPwd := core.CleanString(ns.LastName)
	if err := usr.SetPassword(initialPwd); err != nil {
		return Student{}, errors.Wrap(err, "setting initial password")
	}

	std, err := svc.repo.CreateStudent(ctx, usr, Student{
		FirstName: ns.FirstName,
		LastName:  ns.LastName,
		Email:     ns.Email,
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}

	svc.sendWelcomeMail(std.Email, std.FullName(), uname, initialPwd)
	return std, nil
}

func (svc *service) RegisterTeacher(ctx context.Context, nt NewTeacher) (Teacher, error) {
	uname := DeriveUsername(nt.FirstName)
	if err := svc.checkUsernameUniqueness(ctx, uname); err != nil {
		return Teacher{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Username:  uname,
		Role:      RoleTeacher,
		CreatedAt: now,
		UpdatedAt: now,
	}
	initialPwd := core.CleanString(nt.LastName)
	if err := usr.SetPassword(initialPwd); err != nil {
		return Teacher{}, errors.Wrap(err, "setting initial password")
	}

	tch, err := svc.repo.CreateTeacher(ctx, usr, Teacher{
		FirstName: nt.FirstName,
		LastName:  nt.LastName,
		Email:     nt.Email,
	})
	if err != nil {
		return Teacher{}, errors.Wrap(err, "creating teacher")
	}

	svc.sendWelcomeMail(tch.Email, tch.FullName(), uname, initialPwd)
	return tch, nil
}

func (svc *service) CreateAdministrator(ctx context.Context, na NewAdministrator) (Administrator, error) {
	if err := svc.checkUsernameUniqueness(ctx, na.Username); err != nil {
		return Administrator{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Username:  na.Username,
		Role:      RoleAdministrator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(na.Password); err != nil {
		return Administrator{}, errors.Wrap(err, "setting password")
	}

	adm, err := svc.repo.CreateAdministrator(ctx, usr, Administrator{
		FirstName: na.FirstName,
		LastName:  na.LastName,
	})
	return adm, errors.Wrap(err, "creating administrator")
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *service) StudentByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) StudentByUsername(ctx context.Context, uname string) (Student, error) {
	return svc.repo.GetStudentByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *service) QueryAllStudents(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *service) StudentsByGroup(ctx context.Context, groupID int) ([]Student, error) {
	return svc.repo.QueryStudentsByGroup(ctx, groupID)
}

func (svc *service) UpdateStudent(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	std.FirstName = us.FirstName
	std.LastName = us.LastName
	std.Email = us.Email
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *service) DeleteStudent(ctx context.Context, id int) error {
	return svc.repo.DeleteStudent(ctx, id)
}

func (svc *service) TeacherByID(ctx context.Context, id int) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *service) TeacherByUsername(ctx context.Context, uname string) (Teacher, error) {
	return svc.repo.GetTeacherByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *service) QueryAllTeachers(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryAllTeachers(ctx)
}

func (svc *service) UpdateTeacher(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error) {
	tch, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	tch.FirstName = ut.FirstName
	tch.LastName = ut.LastName
	tch.Email = ut.Email
	return svc.repo.UpdateTeacher(ctx, tch)
}

func (svc *service) DeleteTeacher(ctx context.Context, id int) error {
	return svc.repo.DeleteTeacher(ctx, id)
}

func (svc *service) ChangePassword(ctx context.Context, userID int, cp ChangePassword) error {
	usr, err := svc.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err = usr.CheckPassword(cp.OldPassword); err != nil {
		return core.NewValidationError(ErrInvalidOldPassword,
			core.FieldError{Field: "old_password", Error: ErrInvalidOldPassword.Error()})
	}
	if err = usr.SetPassword(cp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	return svc.repo.UpdateUserPassword(ctx, usr.ID, usr.PasswordHash)
}

func (svc *service) SetPassword(ctx context.Context, username, password string) error {
	usr, err := svc.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	return svc.repo.UpdateUserPassword(ctx, usr.ID, usr.PasswordHash)
}

func (svc *service) sendWelcomeMail(email, fullName, uname, pwd string) {
	if svc.mailSvc == nil || email == "" {
		return
	}
	body := fmt.Sprintf(
		"Hello %s,\n\nAn account has been created for you on %s.\n\n"+
			"Username: %s\nTemporary password: %s\n\n"+
			"Please change your password after your first login.\n",
		fullName, svc.conf.AppName, uname, pwd,
	)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: fullName, Address: email}},
		Subject: "Your account",
		Body:    body,
	})
}
