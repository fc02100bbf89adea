package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/edusoma/academia/core"
	"github.com/edusoma/academia/core/academic"
	"github.com/edusoma/academia/core/grade"
	"github.com/edusoma/academia/core/user"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    user.Service
		AcadSvc    academic.Service
		GradeSvc   grade.Service
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableRequestLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	RegisterRoutes(s.app, s.deps)
}

// RegisterRoutes mounts the whole HTTP surface on app. Exposed so tests can
// run against a bare echo instance.
func RegisterRoutes(app *echo.Echo, deps ServerDeps) {
	auth := newAuthHelper(deps.Conf)
	jwt := auth.middleware()

	h := &handlers{
		auth:       auth,
		usrSvc:     deps.UserSvc,
		acadSvc:    deps.AcadSvc,
		gradeSvc:   deps.GradeSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	app.GET("/", h.home)
	app.GET("/login", h.loginPage)
	app.POST("/login", h.login)
	app.GET("/logout", h.logout)
	app.GET("/dashboard", h.dashboard, jwt)

	admin := app.Group("/admin", jwt, roleMiddleware(user.RoleAdministrator))
	registerAdminRoutes(admin, h)

	teacher := app.Group("/teacher", jwt, roleMiddleware(user.RoleTeacher))
	registerTeacherRoutes(teacher, h)

	student := app.Group("/student", jwt, roleMiddleware(user.RoleStudent))
	registerStudentRoutes(student, h)
}

func (s *server) Start() error {
	err := s.app.Start(s.deps.Conf.Server.Address)
	if err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
	return err
}

func (s *server) Errors() <-chan error { return s.errs }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
