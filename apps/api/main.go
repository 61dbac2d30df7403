package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/kazadi/darasa/apps/api/echo"
	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/course"
	"github.com/kazadi/darasa/core/group"
	"github.com/kazadi/darasa/core/lesson"
	"github.com/kazadi/darasa/core/mark"
	"github.com/kazadi/darasa/core/period"
	"github.com/kazadi/darasa/core/schedule"
	"github.com/kazadi/darasa/core/user"
	emailsvc "github.com/kazadi/darasa/services/email"
	logsvc "github.com/kazadi/darasa/services/logger"
	"github.com/kazadi/darasa/storage/database"
	sqlxrepos "github.com/kazadi/darasa/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up repositories
	userRepo := sqlxrepos.NewUserRepository(db)
	groupRepo := sqlxrepos.NewGroupRepository(db)
	courseRepo := sqlxrepos.NewCourseRepository(db)
	periodRepo := sqlxrepos.NewPeriodRepository(db)
	scheduleRepo := sqlxrepos.NewScheduleRepository(db)
	lessonRepo := sqlxrepos.NewLessonRepository(db)
	markRepo := sqlxrepos.NewMarkRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	validate := validator.New()
	translator := newTranslator()

	usrSvc := user.NewService(db, userRepo, mailSvc, conf)
	groupSvc := group.NewService(groupRepo, userRepo, validate)
	courseSvc := course.NewService(courseRepo, validate)
	periodSvc := period.NewService(periodRepo, validate)
	scheduleSvc := schedule.NewService(db, scheduleRepo, lessonRepo, courseRepo, validate)
	lessonSvc := lesson.NewService(db, lessonRepo, groupRepo, periodRepo)
	markSvc := mark.NewService(db, markRepo, validate)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		&echoapi.Options{
			Conf:        conf,
			Logger:      logger,
			UserSvc:     usrSvc,
			GroupSvc:    groupSvc,
			CourseSvc:   courseSvc,
			PeriodSvc:   periodSvc,
			ScheduleSvc: scheduleSvc,
			LessonSvc:   lessonSvc,
			MarkSvc:     markSvc,
			Validate:    validate,
			Translator:  translator,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("API server listening on %s", conf.Server.Addr))
		serverErrors <- server.Start()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)

	// =========================================================================
	// Shutdown

	stop := func() {
		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case <-server.ShutdownSignal():
		logger.Info("integrity issue: Start shutdown...")
		stop()

	case sig := <-osSignals:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		stop()
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
