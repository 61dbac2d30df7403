package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/course"
	"github.com/kazadi/darasa/core/group"
	"github.com/kazadi/darasa/core/lesson"
	"github.com/kazadi/darasa/core/mark"
	"github.com/kazadi/darasa/core/period"
	"github.com/kazadi/darasa/core/schedule"
	"github.com/kazadi/darasa/core/user"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		UserSvc     *user.Service
		GroupSvc    *group.Service
		CourseSvc   *course.Service
		PeriodSvc   *period.Service
		ScheduleSvc *schedule.Service
		LessonSvc   *lesson.Service
		MarkSvc     *mark.Service

		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
		ShutdownSignal() <-chan struct{}
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf
	appJWTConfig.SigningKey = []byte(conf.SecretKey)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, conf, s.opts.UserSvc, s.opts.Validate)
	registerGroupAPI(v1, jwt, s.opts.GroupSvc)
	registerCourseAPI(v1, jwt, s.opts.CourseSvc)
	registerPeriodAPI(v1, jwt, s.opts.PeriodSvc)
	registerScheduleAPI(v1, jwt, s.opts.ScheduleSvc)
	registerLessonAPI(v1, jwt, s.opts.LessonSvc)
	registerMarkAPI(v1, jwt, s.opts.MarkSvc)

	// TODO: swagger !!
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.Server.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// ShutdownSignal is closed when a fatal server error requires the app to shut down.
func (s *server) ShutdownSignal() <-chan struct{} {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case <-s.shutdown:
	default:
		close(s.shutdown)
	}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Darasa API!")
}
