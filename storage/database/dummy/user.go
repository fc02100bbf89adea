package dummydb

import (
	"context"
	"sort"

	"github.com/edusoma/academia/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username string) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Username == username {
			return user.ErrUsernameExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	return repo.createUser(usr), nil
}

// createUser must be called with the write lock held.
func (repo *userRepository) createUser(usr user.User) user.User {
	repo.db.userPK++
	usr.ID = repo.db.userPK
	repo.db.users[usr.ID] = &usr
	return usr
}

func (repo *userRepository) GetUserByID(_ context.Context, id int) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Username == username {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUserPassword(_ context.Context, id int, hash []byte) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.PasswordHash = hash
	return nil
}

// Students

func (repo *userRepository) CreateStudent(_ context.Context, usr user.User, std user.Student) (user.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr = repo.createUser(usr)
	std.ID = usr.ID
	repo.db.students[std.ID] = &std
	return repo.studentWithGroup(std), nil
}

// studentWithGroup must be called with (at least) the read lock held.
func (repo *userRepository) studentWithGroup(std user.Student) user.Student {
	if std.GroupID != nil {
		if grp, ok := repo.db.groups[*std.GroupID]; ok {
			std.GroupName = grp.Name
		}
	}
	return std
}

func (repo *userRepository) GetStudentByID(_ context.Context, id int) (user.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return repo.studentWithGroup(*std), nil
	}
	return user.Student{}, user.ErrStudentNotFound
}

func (repo *userRepository) GetStudentByUsername(_ context.Context, username string) (user.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for id, usr := range repo.db.users {
		if usr.Username == username {
			if std, ok := repo.db.students[id]; ok {
				return repo.studentWithGroup(*std), nil
			}
		}
	}
	return user.Student{}, user.ErrStudentNotFound
}

func (repo *userRepository) QueryAllStudents(_ context.Context) ([]user.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students := make([]user.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		students = append(students, repo.studentWithGroup(*std))
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *userRepository) QueryStudentsByGroup(_ context.Context, groupID int) ([]user.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var students []user.Student
	for _, std := range repo.db.students {
		if std.InGroup(groupID) {
			students = append(students, repo.studentWithGroup(*std))
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *userRepository) UpdateStudent(_ context.Context, std user.Student) (user.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	curr, ok := repo.db.students[std.ID]
	if !ok {
		return user.Student{}, user.ErrStudentNotFound
	}
	curr.FirstName = std.FirstName
	curr.LastName = std.LastName
	curr.Email = std.Email
	return repo.studentWithGroup(*curr), nil
}

func (repo *userRepository) SetStudentGroup(_ context.Context, studentID int, groupID *int) (user.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	std, ok := repo.db.students[studentID]
	if !ok {
		return user.Student{}, user.ErrStudentNotFound
	}
	std.GroupID = groupID
	out := *std
	out.GroupName = ""
	return repo.studentWithGroup(out), nil
}

func (repo *userRepository) DeleteStudent(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return user.ErrStudentNotFound
	}
	delete(repo.db.students, id)
	delete(repo.db.users, id)
	return nil
}

func (repo *userRepository) CountStudents(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.students), nil
}

// Teachers

func (repo *userRepository) CreateTeacher(_ context.Context, usr user.User, tch user.Teacher) (user.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr = repo.createUser(usr)
	tch.ID = usr.ID
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *userRepository) GetTeacherByID(_ context.Context, id int) (user.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if tch, ok := repo.db.teachers[id]; ok {
		return *tch, nil
	}
	return user.Teacher{}, user.ErrTeacherNotFound
}

func (repo *userRepository) GetTeacherByUsername(_ context.Context, username string) (user.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for id, usr := range repo.db.users {
		if usr.Username == username {
			if tch, ok := repo.db.teachers[id]; ok {
				return *tch, nil
			}
		}
	}
	return user.Teacher{}, user.ErrTeacherNotFound
}

func (repo *userRepository) QueryAllTeachers(_ context.Context) ([]user.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	teachers := make([]user.Teacher, 0, len(repo.db.teachers))
	for _, tch := range repo.db.teachers {
		teachers = append(teachers, *tch)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers, nil
}

func (repo *userRepository) UpdateTeacher(_ context.Context, tch user.Teacher) (user.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	curr, ok := repo.db.teachers[tch.ID]
	if !ok {
		return user.Teacher{}, user.ErrTeacherNotFound
	}
	curr.FirstName = tch.FirstName
	curr.LastName = tch.LastName
	curr.Email = tch.Email
	return *curr, nil
}

func (repo *userRepository) DeleteTeacher(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.teachers[id]; !ok {
		return user.ErrTeacherNotFound
	}
	delete(repo.db.teachers, id)
	delete(repo.db.users, id)
	return nil
}

func (repo *userRepository) CountTeachers(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.teachers), nil
}

// Administrators

func (repo *userRepository) CreateAdministrator(_ context.Context, usr user.User, adm user.Administrator) (user.Administrator, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr = repo.createUser(usr)
	adm.ID = usr.ID
	repo.db.admins[adm.ID] = &adm
	return adm, nil
}

func (repo *userRepository) GetAdministratorByUsername(_ context.Context, username string) (user.Administrator, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for id, usr := range repo.db.users {
		if usr.Username == username {
			if adm, ok := repo.db.admins[id]; ok {
				return *adm, nil
			}
		}
	}
	return user.Administrator{}, user.ErrNotFound
}
