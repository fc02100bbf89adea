package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edusoma/academia/core/academic"
	"github.com/edusoma/academia/core/user"
)

const (
	adminStudentsPath = "/admin/students"
	adminTeachersPath = "/admin/teachers"
	adminGroupsPath   = "/admin/groups"
	adminSubjectsPath = "/admin/subjects"
)

func registerAdminRoutes(g *echo.Group, h *handlers) {
	g.GET("/dashboard", h.adminDashboard)

	g.GET("/students", h.adminStudents)
	g.POST("/students/create", h.adminCreateStudent)
	g.POST("/students/update/:id", h.adminUpdateStudent)
	g.POST("/students/delete/:id", h.adminDeleteStudent)

	g.GET("/teachers", h.adminTeachers)
	g.POST("/teachers/create", h.adminCreateTeacher)
	g.POST("/teachers/update/:id", h.adminUpdateTeacher)
	g.POST("/teachers/delete/:id", h.adminDeleteTeacher)

	g.GET("/groups", h.adminGroups)
	g.POST("/groups/create", h.adminCreateGroup)
	g.POST("/groups/update/:id", h.adminUpdateGroup)
	g.POST("/groups/delete/:id", h.adminDeleteGroup)

	g.GET("/subjects", h.adminSubjects)
	g.POST("/subjects/create", h.adminCreateSubject)
	g.POST("/subjects/update/:id", h.adminUpdateSubject)
	g.POST("/subjects/delete/:id", h.adminDeleteSubject)
	g.POST("/subjects/assignments/create", h.adminCreateAssignment)
	g.POST("/subjects/assignments/delete/:id", h.adminDeleteAssignment)
}

// pathID parses the numeric id path parameter.
func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func (h *handlers) adminDashboard(ctx echo.Context) error {
	stats, err := h.acadSvc.Statistics(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

// Students

type newStudentRequest struct {
	user.NewStudent
	GroupID int `json:"group_id" form:"groupId"`
}

type updateStudentRequest struct {
	user.UpdateStudent
	GroupID int `json:"group_id" form:"groupId"`
}

func (h *handlers) adminStudents(ctx echo.Context) error {
	students, err := h.usrSvc.QueryAllStudents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (h *handlers) adminCreateStudent(ctx echo.Context) error {
	var data newStudentRequest
	if err := ctx.Bind(&data); err != nil {
		return flashError(adminStudentsPath, errors.New("invalid form data"))
	}
	if err := data.NewStudent.Validate(h.validate); err != nil {
		return flashError(adminStudentsPath, err)
	}

	std, err := h.usrSvc.RegisterStudent(ctx.Request().Context(), data.NewStudent)
	if err != nil {
		return flashError(adminStudentsPath, err)
	}
	if data.GroupID > 0 {
		if _, err = h.acadSvc.AssignStudentToGroup(ctx.Request().Context(), std.ID, data.GroupID); err != nil {
			return flashError(adminStudentsPath, err)
		}
	}
	return redirectSuccess(ctx, adminStudentsPath, "Student created.")
}

func (h *handlers) adminUpdateStudent(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return flashError(adminStudentsPath, err)
	}
	var data updateStudentRequest
	if err = ctx.Bind(&data); err != nil {
		return flashError(adminStudentsPath, errors.New("invalid form data"))
	}
	if err = data.UpdateStudent.Validate(h.validate); err != nil {
		return flashError(adminStudentsPath, err)
	}

	if _, err = h.usrSvc.UpdateStudent(ctx.Request().Context(), id, data.UpdateStudent); err != nil {
		return flashError(adminStudentsPath, err)
	}
	if data.GroupID > 0 {
		_, err = h.acadSvc.AssignStudentToGroup(ctx.Request().Context(), id, data.GroupID)
	} else {
		_, err = h.acadSvc.RemoveStudentFromGroup(ctx.Request().Context(), id)
	}
	if err != nil {
		return flashError(adminStudentsPath, err)
	}
	return redirectSuccess(ctx, adminStudentsPath, "Student updated.")
}

func (h *handlers) adminDeleteStudent(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return flashError(adminStudentsPath, err)
	}
	if err = h.usrSvc.DeleteStudent(ctx.Request().Context(), id); err != nil {
		return flashError(adminStudentsPath, err)
	}
	return redirectSuccess(ctx, adminStudentsPath, "Student deleted.")
}

// Teachers

func (h *handlers) adminTeachers(ctx echo.Context) error {
	teachers, err := h.usrSvc.QueryAllTeachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (h *handlers) adminCreateTeacher(ctx echo.Context) error {
	var data user.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return flashError(adminTeachersPath, errors.New("invalid form data"))
	}
	if err := data.Validate(h.validate); err != nil {
		return flashError(adminTeachersPath, err)
	}

	if _, err := h.usrSvc.RegisterTeacher(ctx.Request().Context(), data); err != nil {
		return flashError(adminTeachersPath, err)
	}
	return redirectSuccess(ctx, adminTeachersPath, "Teacher created.")
}

func (h *handlers) adminUpdateTeacher(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return flashError(adminTeachersPath, err)
	}
	var data user.UpdateTeacher
	if err = ctx.Bind(&data); err != nil {
		return flashError(adminTeachersPath, errors.New("invalid form data"))
	}
	if err = data.Validate(h.validate); err != nil {
		return flashError(adminTeachersPath, err)
	}

	if _, err = h.usrSvc.UpdateTeacher(ctx.Request().Context(), id, data); err != nil {
		return flashError(adminTeachersPath, err)
	}
	return redirectSuccess(ctx, adminTeachersPath, "Teacher updated.")
}

func (h *handlers) adminDeleteTeacher(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return flashError(adminTeachersPath, err)
	}
	if err = h.usrSvc.DeleteTeacher(ctx.Request().Context(), id); err != nil {
		return flashError(adminTeachersPath, err)
	}
	return redirectSuccess(ctx, adminTeachersPath, "Teacher deleted.")
}

// Study groups

func (h *handlers) adminGroups(ctx echo.Context) error {
	groups, err := h.acadSvc.QueryAllGroups(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (h *handlers) adminCreateGroup(ctx echo.Context) error {
	var data academic.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return flashError(adminGroupsPath, errors.New("invalid form data"))
	}
	if _, err := h.acadSvc.CreateGroup(ctx.Request().Context(), data); err != nil {
		return flashError(adminGroupsPath, err)
	}
	return redirectSuccess(ctx, adminGroupsPath, "Group created.")
}

func (h *handlers) adminUpdateGroup(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return flashError(adminGroupsPath, err)
	}
	var data academic.UpdateGroup
	if err = ctx.Bind(&data); err != nil {
		return flashError(adminGroupsPath, errors.New("invalid form data"))
	}
	if _, err = h.acadSvc.UpdateGroup(ctx.Request().Context(), id, data); err != nil {
		return flashError(adminGroupsPath, err)
	}
	return redirectSuccess(ctx, adminGroupsPath, "Group updated.")
}

func (h *handlers) adminDeleteGroup(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return flashError(adminGroupsPath, err)
	}
	if err = h.acadSvc.DeleteGroup(ctx.Request().Context(), id); err != nil {
		return flashError(adminGroupsPath, err)
	}
	return redirectSuccess(ctx, adminGroupsPath, "Group deleted.")
}

// Subjects & assignments

type subjectsResponse struct {
	Subjects    []academic.Subject        `json:"subjects"`
	Assignments []academic.AssignmentInfo `json:"assignments"`
}

func (h *handlers) adminSubjects(ctx echo.Context) error {
	subjects, err := h.acadSvc.QueryAllSubjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	assignments, err := h.acadSvc.QueryAllAssignments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, subjectsResponse{Subjects: subjects, Assignments: assignments})
}

func (h *handlers) adminCreateSubject(ctx echo.Context) error {
	var data academic.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return flashError(adminSubjectsPath, errors.New("invalid form data"))
	}
	if _, err := h.acadSvc.CreateSubject(ctx.Request().Context(), data); err != nil {
		return flashError(adminSubjectsPath, err)
	}
	return redirectSuccess(ctx, adminSubjectsPath, "Subject created.")
}

func (h *handlers) adminUpdateSubject(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return flashError(adminSubjectsPath, err)
	}
	var data academic.UpdateSubject
	if err = ctx.Bind(&data); err != nil {
		return flashError(adminSubjectsPath, errors.New("invalid form data"))
	}
	if _, err = h.acadSvc.UpdateSubject(ctx.Request().Context(), id, data); err != nil {
		return flashError(adminSubjectsPath, err)
	}
	return redirectSuccess(ctx, adminSubjectsPath, "Subject updated.")
}

func (h *handlers) adminDeleteSubject(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return flashError(adminSubjectsPath, err)
	}
	if err = h.acadSvc.DeleteSubject(ctx.Request().Context(), id); err != nil {
		return flashError(adminSubjectsPath, err)
	}
	return redirectSuccess(ctx, adminSubjectsPath, "Subject deleted.")
}

func (h *handlers) adminCreateAssignment(ctx echo.Context) error {
	var data academic.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return flashError(adminSubjectsPath, errors.New("invalid form data"))
	}
	if _, err := h.acadSvc.CreateAssignment(ctx.Request().Context(), data); err != nil {
		return flashError(adminSubjectsPath, err)
	}
	return redirectSuccess(ctx, adminSubjectsPath, "Subject assigned.")
}

func (h *handlers) adminDeleteAssignment(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return flashError(adminSubjectsPath, err)
	}
	if err = h.acadSvc.DeleteAssignment(ctx.Request().Context(), id); err != nil {
		return flashError(adminSubjectsPath, err)
	}
	return redirectSuccess(ctx, adminSubjectsPath, "Assignment removed.")
}
