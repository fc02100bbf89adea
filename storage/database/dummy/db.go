// Package dummydb provides in-memory repositories backing tests and local
// development without a running database.
package dummydb

import (
	"sync"

	"github.com/edusoma/academia/core/academic"
	"github.com/edusoma/academia/core/grade"
	"github.com/edusoma/academia/core/user"
)

// DB holds every table behind one lock so cross-table units of work
// (user + role row, grade detail joins) stay consistent.
type DB struct {
	mu sync.RWMutex

	users       map[int]*user.User
	students    map[int]*user.Student
	teachers    map[int]*user.Teacher
	admins      map[int]*user.Administrator
	groups      map[int]*academic.StudyGroup
	subjects    map[int]*academic.Subject
	assignments map[int]*academic.Assignment
	grades      map[int]*grade.Grade

	userPK       int
	groupPK      int
	subjectPK    int
	assignmentPK int
	gradePK      int
}

func Open() (*DB, error) {
	return &DB{
		users:       make(map[int]*user.User),
		students:    make(map[int]*user.Student),
		teachers:    make(map[int]*user.Teacher),
		admins:      make(map[int]*user.Administrator),
		groups:      make(map[int]*academic.StudyGroup),
		subjects:    make(map[int]*academic.Subject),
		assignments: make(map[int]*academic.Assignment),
		grades:      make(map[int]*grade.Grade),
	}, nil
}
