package dummydb

import (
	"context"
	"sort"

	"github.com/edusoma/academia/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(_ context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.gradePK++
	grd.ID = repo.db.gradePK
	repo.db.grades[grd.ID] = &grd
	return grd, nil
}

func (repo *gradeRepository) GetGradeByID(_ context.Context, id int) (grade.Grade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if grd, ok := repo.db.grades[id]; ok {
		return *grd, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) GradeExists(_ context.Context, studentID, assignmentID int) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, grd := range repo.db.grades {
		if grd.StudentID == studentID && grd.AssignmentID == assignmentID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *gradeRepository) UpdateGrade(_ context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	curr, ok := repo.db.grades[grd.ID]
	if !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	curr.Value = grd.Value
	curr.Comments = grd.Comments
	curr.GradeDate = grd.GradeDate
	return *curr, nil
}

func (repo *gradeRepository) DeleteGrade(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.grades[id]; !ok {
		return grade.ErrNotFound
	}
	delete(repo.db.grades, id)
	return nil
}

func (repo *gradeRepository) QueryByTeacher(_ context.Context, teacherID int) ([]grade.Detail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var details []grade.Detail
	for _, grd := range repo.db.grades {
		if asg, ok := repo.db.assignments[grd.AssignmentID]; ok && asg.TeacherID == teacherID {
			details = append(details, repo.detail(*grd))
		}
	}
	sortByDateDesc(details)
	return details, nil
}

func (repo *gradeRepository) QueryByTeacherAndSubject(_ context.Context, teacherID, subjectID int) ([]grade.Detail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var details []grade.Detail
	for _, grd := range repo.db.grades {
		asg, ok := repo.db.assignments[grd.AssignmentID]
		if ok && asg.TeacherID == teacherID && asg.SubjectID == subjectID {
			details = append(details, repo.detail(*grd))
		}
	}
	sort.Slice(details, func(i, j int) bool {
		if details[i].StudentLastName != details[j].StudentLastName {
			return details[i].StudentLastName < details[j].StudentLastName
		}
		return details[i].StudentFirstName < details[j].StudentFirstName
	})
	return details, nil
}

func (repo *gradeRepository) QueryByAssignment(_ context.Context, assignmentID int) ([]grade.Detail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var details []grade.Detail
	for _, grd := range repo.db.grades {
		if grd.AssignmentID == assignmentID {
			details = append(details, repo.detail(*grd))
		}
	}
	sortByDateDesc(details)
	return details, nil
}

func (repo *gradeRepository) QueryByStudent(_ context.Context, studentID int) ([]grade.Detail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var details []grade.Detail
	for _, grd := range repo.db.grades {
		if grd.StudentID == studentID {
			details = append(details, repo.detail(*grd))
		}
	}
	sortByDateDesc(details)
	return details, nil
}

func (repo *gradeRepository) CountByTeacher(_ context.Context, teacherID int) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	count := 0
	for _, grd := range repo.db.grades {
		if asg, ok := repo.db.assignments[grd.AssignmentID]; ok && asg.TeacherID == teacherID {
			count++
		}
	}
	return count, nil
}

func (repo *gradeRepository) CountGrades(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.grades), nil
}

// detail must be called with (at least) the read lock held.
func (repo *gradeRepository) detail(grd grade.Grade) grade.Detail {
	det := grade.Detail{Grade: grd}
	if std, ok := repo.db.students[grd.StudentID]; ok {
		det.StudentFirstName = std.FirstName
		det.StudentLastName = std.LastName
	}
	asg, ok := repo.db.assignments[grd.AssignmentID]
	if !ok {
		return det
	}
	det.SubjectID = asg.SubjectID
	det.TeacherID = asg.TeacherID
	det.AcademicYear = asg.AcademicYear
	det.Semester = asg.Semester
	if sub, ok := repo.db.subjects[asg.SubjectID]; ok {
		det.SubjectName = sub.Name
	}
	if tch, ok := repo.db.teachers[asg.TeacherID]; ok {
		det.TeacherName = tch.FullName()
	}
	if grp, ok := repo.db.groups[asg.GroupID]; ok {
		det.GroupName = grp.Name
	}
	return det
}

// most recent first; ties broken by ID for stable listings
func sortByDateDesc(details []grade.Detail) {
	sort.Slice(details, func(i, j int) bool {
		if !details[i].GradeDate.Equal(details[j].GradeDate) {
			return details[i].GradeDate.After(details[j].GradeDate)
		}
		return details[i].ID > details[j].ID
	})
}
