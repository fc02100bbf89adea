package echoapi

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edusoma/academia/core/grade"
)

func registerStudentRoutes(g *echo.Group, h *handlers) {
	g.GET("/dashboard", h.studentDashboard)
}

type (
	studentSubject struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	studentDashboardResponse struct {
		DisplayName string             `json:"display_name"`
		Stats       grade.StudentStats `json:"stats"`
		Subjects    []studentSubject   `json:"subjects"`
		Grades      []grade.Detail     `json:"grades"`
	}
)

// studentDashboard shows the acting student's own grades; the stats always
// cover the full record even when a subject filter narrows the listing.
func (h *handlers) studentDashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return redirectLogin(ctx)
	}

	details, err := h.gradeSvc.StudentGrades(ctx.Request().Context(), claims.UserID)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}

	resp := studentDashboardResponse{
		DisplayName: claims.DisplayName,
		Stats:       grade.StatsForStudent(details),
		Subjects:    subjectsOf(details),
		Grades:      details,
	}

	if raw := ctx.QueryParam("subjectId"); raw != "" {
		subjectID, sErr := strconv.Atoi(raw)
		if sErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid subjectId")
		}
		filtered := make([]grade.Detail, 0, len(details))
		for _, det := range details {
			if det.SubjectID == subjectID {
				filtered = append(filtered, det)
			}
		}
		resp.Grades = filtered
	}

	return ctx.JSON(http.StatusOK, resp)
}

// subjectsOf derives the distinct subjects a student has grades in, for the
// dashboard filter dropdown.
func subjectsOf(details []grade.Detail) []studentSubject {
	seen := make(map[int]bool, len(details))
	subjects := make([]studentSubject, 0, len(details))
	for _, det := range details {
		if !seen[det.SubjectID] {
			seen[det.SubjectID] = true
			subjects = append(subjects, studentSubject{ID: det.SubjectID, Name: det.SubjectName})
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects
}
