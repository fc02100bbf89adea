package dummydb

import (
	"context"
	"sort"

	"github.com/edusoma/academia/core/academic"
)

type academicRepository struct {
	db *DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepository{db: db}
}

// Study groups

func (repo *academicRepository) CreateGroup(_ context.Context, grp academic.StudyGroup) (academic.StudyGroup, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.groupPK++
	grp.ID = repo.db.groupPK
	repo.db.groups[grp.ID] = &grp
	return grp, nil
}

func (repo *academicRepository) GetGroupByID(_ context.Context, id int) (academic.StudyGroup, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if grp, ok := repo.db.groups[id]; ok {
		return *grp, nil
	}
	return academic.StudyGroup{}, academic.ErrGroupNotFound
}

func (repo *academicRepository) GroupNameExists(_ context.Context, name string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, grp := range repo.db.groups {
		if grp.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (repo *academicRepository) QueryAllGroups(_ context.Context) ([]academic.StudyGroup, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	groups := make([]academic.StudyGroup, 0, len(repo.db.groups))
	for _, grp := range repo.db.groups {
		groups = append(groups, *grp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (repo *academicRepository) UpdateGroup(_ context.Context, grp academic.StudyGroup) (academic.StudyGroup, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	curr, ok := repo.db.groups[grp.ID]
	if !ok {
		return academic.StudyGroup{}, academic.ErrGroupNotFound
	}
	curr.Name = grp.Name
	curr.Year = grp.Year
	return *curr, nil
}

func (repo *academicRepository) DeleteGroup(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.groups[id]; !ok {
		return academic.ErrGroupNotFound
	}
	delete(repo.db.groups, id)
	for _, std := range repo.db.students {
		if std.InGroup(id) {
			std.GroupID = nil
		}
	}
	return nil
}

func (repo *academicRepository) CountGroups(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.groups), nil
}

// Subjects

func (repo *academicRepository) CreateSubject(_ context.Context, sub academic.Subject) (academic.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.subjectPK++
	sub.ID = repo.db.subjectPK
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *academicRepository) GetSubjectByID(_ context.Context, id int) (academic.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return *sub, nil
	}
	return academic.Subject{}, academic.ErrSubjectNotFound
}

func (repo *academicRepository) SubjectCodeExists(_ context.Context, code string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, sub := range repo.db.subjects {
		if sub.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (repo *academicRepository) QueryAllSubjects(_ context.Context) ([]academic.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subjects := make([]academic.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		subjects = append(subjects, *sub)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects, nil
}

func (repo *academicRepository) UpdateSubject(_ context.Context, sub academic.Subject) (academic.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	curr, ok := repo.db.subjects[sub.ID]
	if !ok {
		return academic.Subject{}, academic.ErrSubjectNotFound
	}
	curr.Name = sub.Name
	curr.Code = sub.Code
	curr.Credits = sub.Credits
	curr.Description = sub.Description
	return *curr, nil
}

func (repo *academicRepository) DeleteSubject(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return academic.ErrSubjectNotFound
	}
	delete(repo.db.subjects, id)
	return nil
}

func (repo *academicRepository) CountSubjects(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.subjects), nil
}

// Assignments

func (repo *academicRepository) CreateAssignment(_ context.Context, asg academic.Assignment) (academic.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.assignmentPK++
	asg.ID = repo.db.assignmentPK
	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *academicRepository) GetAssignmentByID(_ context.Context, id int) (academic.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if asg, ok := repo.db.assignments[id]; ok {
		return *asg, nil
	}
	return academic.Assignment{}, academic.ErrAssignmentNotFound
}

func (repo *academicRepository) AssignmentExists(_ context.Context, subjectID, teacherID, groupID int, academicYear, semester string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, asg := range repo.db.assignments {
		if asg.SubjectID == subjectID && asg.TeacherID == teacherID && asg.GroupID == groupID &&
			asg.AcademicYear == academicYear && asg.Semester == semester {
			return true, nil
		}
	}
	return false, nil
}

func (repo *academicRepository) QueryAllAssignments(_ context.Context) ([]academic.AssignmentInfo, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	infos := make([]academic.AssignmentInfo, 0, len(repo.db.assignments))
	for _, asg := range repo.db.assignments {
		infos = append(infos, repo.assignmentInfo(*asg))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

func (repo *academicRepository) QueryAssignmentsByTeacher(_ context.Context, teacherID int) ([]academic.AssignmentInfo, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var infos []academic.AssignmentInfo
	for _, asg := range repo.db.assignments {
		if asg.TeacherID == teacherID {
			infos = append(infos, repo.assignmentInfo(*asg))
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// assignmentInfo must be called with (at least) the read lock held.
func (repo *academicRepository) assignmentInfo(asg academic.Assignment) academic.AssignmentInfo {
	info := academic.AssignmentInfo{Assignment: asg}
	if sub, ok := repo.db.subjects[asg.SubjectID]; ok {
		info.SubjectName = sub.Name
		info.SubjectCode = sub.Code
	}
	if tch, ok := repo.db.teachers[asg.TeacherID]; ok {
		info.TeacherName = tch.FullName()
	}
	if grp, ok := repo.db.groups[asg.GroupID]; ok {
		info.GroupName = grp.Name
	}
	return info
}

func (repo *academicRepository) DeleteAssignment(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.assignments[id]; !ok {
		return academic.ErrAssignmentNotFound
	}
	delete(repo.db.assignments, id)
	return nil
}
