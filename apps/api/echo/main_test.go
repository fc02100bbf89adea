package echoapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/edusoma/academia/core"
	"github.com/edusoma/academia/core/academic"
	"github.com/edusoma/academia/core/grade"
	"github.com/edusoma/academia/core/user"
	emailsvc "github.com/edusoma/academia/services/email"
	dummydb "github.com/edusoma/academia/storage/database/dummy"
)

type testEnv struct {
	app  *echo.Echo
	auth *authHelper

	usrRepo   user.Repository
	acadRepo  academic.Repository
	gradeRepo grade.Repository

	usrSvc   user.Service
	acadSvc  academic.Service
	gradeSvc grade.Service
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestEnv(t *testing.T) *testEnv {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("newTestEnv() failed: %v", err)
	}

	conf := &core.Config{
		TestMode:         true,
		AppName:          "Academia",
		SecretKey:        "test-secret",
		DefaultFromEmail: "noreply@academia.test",
		Server: core.ServerConfig{
			SessionExpiration:  time.Hour,
			DisableRequestLogs: true,
		},
	}

	validate := validator.New()
	translator := testTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	env := &testEnv{
		app:       echo.New(),
		auth:      newAuthHelper(conf),
		usrRepo:   dummydb.NewUserRepository(db),
		acadRepo:  dummydb.NewAcademicRepository(db),
		gradeRepo: dummydb.NewGradeRepository(db),
	}
	env.usrSvc = user.NewService(env.usrRepo, emailsvc.NewConsoleServiceMock(conf), conf)
	env.acadSvc = academic.NewService(env.acadRepo, env.usrRepo, env.gradeRepo)
	env.gradeSvc = grade.NewService(env.gradeRepo, env.usrRepo, env.acadRepo)

	env.app.HTTPErrorHandler = newAppHTTPErrorHandler(nopLogger{}, func() {})
	RegisterRoutes(env.app, ServerDeps{
		Conf:       conf,
		Logger:     nopLogger{},
		UserSvc:    env.usrSvc,
		AcadSvc:    env.acadSvc,
		GradeSvc:   env.gradeSvc,
		Validate:   validate,
		Translator: translator,
	})
	return env
}

func testTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// sessionFor signs a session token for usr the way the login handler does.
func (env *testEnv) sessionFor(t *testing.T, usr user.User, displayName string) string {
	t.Helper()
	token, err := env.auth.generateToken(env.auth.newClaims(usr, displayName))
	if err != nil {
		t.Fatalf("sessionFor() failed: %v", err)
	}
	return token
}

func (env *testEnv) get(path, token string) *httptest.ResponseRecorder {
	return env.do(http.MethodGet, path, nil, token)
}

func (env *testEnv) postForm(path string, form url.Values, token string) *httptest.ResponseRecorder {
	return env.do(http.MethodPost, path, form, token)
}

func (env *testEnv) do(method, path string, form url.Values, token string) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)
	return rec
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, wantLocation string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, wantLocation, rec.Header().Get(echo.HeaderLocation))
}

func assertRedirectPrefix(t *testing.T, rec *httptest.ResponseRecorder, wantPrefix string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get(echo.HeaderLocation)
	assert.True(t, strings.HasPrefix(loc, wantPrefix), "Location = %q; want prefix %q", loc, wantPrefix)
}

// seedAdmin registers an administrator and returns a ready session token.
func (env *testEnv) seedAdmin(t *testing.T) string {
	t.Helper()
	adm, err := env.usrSvc.CreateAdministrator(context.Background(), user.NewAdministrator{
		FirstName: "Ada", LastName: "Lovelace", Username: "root", Password: "G00d&Pl3nty!",
	})
	if err != nil {
		t.Fatalf("seedAdmin() failed: %v", err)
	}
	return env.sessionFor(t, user.User{ID: adm.ID, Username: "root", Role: user.RoleAdministrator}, adm.FullName())
}

func (env *testEnv) seedTeacher(t *testing.T, first, last string) (user.Teacher, string) {
	t.Helper()
	tch, err := env.usrSvc.RegisterTeacher(context.Background(), user.NewTeacher{
		FirstName: first, LastName: last, Email: strings.ToLower(first) + "@academia.test",
	})
	if err != nil {
		t.Fatalf("seedTeacher() failed: %v", err)
	}
	usr := user.User{ID: tch.ID, Username: user.DeriveUsername(first), Role: user.RoleTeacher}
	return tch, env.sessionFor(t, usr, tch.FullName())
}

func (env *testEnv) seedStudent(t *testing.T, first, last string, groupID *int) (user.Student, string) {
	t.Helper()
	std, err := env.usrRepo.CreateStudent(context.Background(),
		user.User{Username: user.DeriveUsername(first), Role: user.RoleStudent},
		user.Student{FirstName: first, LastName: last, GroupID: groupID},
	)
	if err != nil {
		t.Fatalf("seedStudent() failed: %v", err)
	}
	usr := user.User{ID: std.ID, Username: user.DeriveUsername(first), Role: user.RoleStudent}
	return std, env.sessionFor(t, usr, std.FullName())
}
