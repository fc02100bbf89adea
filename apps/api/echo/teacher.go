package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edusoma/academia/core/academic"
	"github.com/edusoma/academia/core/grade"
)

const teacherGradesPath = "/teacher/grades"

func registerTeacherRoutes(g *echo.Group, h *handlers) {
	g.GET("/dashboard", h.teacherDashboard)
	g.GET("/grades", h.teacherGrades)
	g.POST("/grades/create", h.teacherCreateGrade)
	g.POST("/grades/update/:id", h.teacherUpdateGrade)
	g.POST("/grades/delete/:id", h.teacherDeleteGrade)
}

type teacherDashboardResponse struct {
	DisplayName string                    `json:"display_name"`
	Stats       grade.TeacherStats        `json:"stats"`
	Assignments []academic.AssignmentInfo `json:"assignments"`
}

func (h *handlers) teacherDashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return redirectLogin(ctx)
	}

	stats, err := h.gradeSvc.TeacherStats(ctx.Request().Context(), claims.UserID)
	if err != nil {
		return errors.Wrap(err, "loading teacher stats")
	}
	assignments, err := h.acadSvc.TeacherAssignments(ctx.Request().Context(), claims.UserID)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, teacherDashboardResponse{
		DisplayName: claims.DisplayName,
		Stats:       stats,
		Assignments: assignments,
	})
}

// teacherGrades lists the acting teacher's grades, narrowed by the optional
// assignmentId or subjectId filter.
func (h *handlers) teacherGrades(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return redirectLogin(ctx)
	}

	var details []grade.Detail
	switch {
	case ctx.QueryParam("assignmentId") != "":
		assignmentID, aErr := strconv.Atoi(ctx.QueryParam("assignmentId"))
		if aErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid assignmentId")
		}
		details, err = h.gradeSvc.AssignmentGrades(ctx.Request().Context(), assignmentID)
	case ctx.QueryParam("subjectId") != "":
		subjectID, sErr := strconv.Atoi(ctx.QueryParam("subjectId"))
		if sErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid subjectId")
		}
		details, err = h.gradeSvc.TeacherSubjectGrades(ctx.Request().Context(), claims.UserID, subjectID)
	default:
		details, err = h.gradeSvc.TeacherGrades(ctx.Request().Context(), claims.UserID)
	}
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, details)
}

func (h *handlers) teacherCreateGrade(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return redirectLogin(ctx)
	}

	var data grade.NewGrade
	if err = ctx.Bind(&data); err != nil {
		return flashError(teacherGradesPath, errors.New("invalid form data"))
	}
	if err = data.Validate(h.validate); err != nil {
		return flashError(teacherGradesPath, err)
	}

	grd, err := h.gradeSvc.Enter(ctx.Request().Context(), claims.UserID, data)
	if err != nil {
		return flashError(gradesListingPath(data.AssignmentID), err)
	}
	return redirectSuccess(ctx, gradesListingPath(grd.AssignmentID), "Grade saved.")
}

func (h *handlers) teacherUpdateGrade(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return redirectLogin(ctx)
	}
	id, err := pathID(ctx)
	if err != nil {
		return flashError(teacherGradesPath, err)
	}

	var data grade.UpdateGrade
	if err = ctx.Bind(&data); err != nil {
		return flashError(teacherGradesPath, errors.New("invalid form data"))
	}
	if err = data.Validate(h.validate); err != nil {
		return flashError(teacherGradesPath, err)
	}

	grd, err := h.gradeSvc.Update(ctx.Request().Context(), id, claims.UserID, data)
	if err != nil {
		return flashError(teacherGradesPath, err)
	}
	return redirectSuccess(ctx, gradesListingPath(grd.AssignmentID), "Grade updated.")
}

func (h *handlers) teacherDeleteGrade(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return redirectLogin(ctx)
	}
	id, err := pathID(ctx)
	if err != nil {
		return flashError(teacherGradesPath, err)
	}

	grd, err := h.gradeSvc.Delete(ctx.Request().Context(), id, claims.UserID)
	if err != nil {
		return flashError(teacherGradesPath, err)
	}
	return redirectSuccess(ctx, gradesListingPath(grd.AssignmentID), "Grade deleted.")
}

// gradesListingPath points back at the listing the mutation came from.
func gradesListingPath(assignmentID int) string {
	if assignmentID > 0 {
		return teacherGradesPath + "?assignmentId=" + strconv.Itoa(assignmentID)
	}
	return teacherGradesPath
}
