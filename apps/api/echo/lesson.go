package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/lesson"
)

type lessonApi struct {
	svc *lesson.Service
}

func registerLessonAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *lesson.Service) {
	api := lessonApi{svc: svc}

	lg := g.Group("/lessons", jwt)
	lg.GET("", api.query)
	lg.GET("/:id", api.retrieve)
	lg.POST("/:id/realize", api.realize, staffMiddleware())
	lg.POST("/:id/cancel", api.cancel, staffMiddleware())
	lg.POST("/:id/restore", api.restore, staffMiddleware())
	lg.PUT("/:id/subject", api.updateSubject, staffMiddleware())
	lg.GET("/:id/attendances", api.attendances, staffMiddleware())
	lg.PUT("/:id/attendances", api.setAttendances, staffMiddleware())

	tg := g.Group("/timetables", jwt)
	tg.GET("/teachers/:id", api.teacherTimetable)
	tg.GET("/groups/:id", api.groupTimetable)
}

func (api *lessonApi) query(ctx echo.Context) error {
	filter := lesson.QueryFilter{
		ScheduleID: intQueryParam(ctx, "schedule_id"),
		TeacherID:  intQueryParam(ctx, "teacher_id"),
		GroupID:    intQueryParam(ctx, "group_id"),
	}
	if val := ctx.QueryParam("status"); val != "" {
		st, err := strconv.Atoi(val)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid status"})
		}
		status := lesson.Status(st)
		filter.Status = &status
	}
	if val := ctx.QueryParam("date_from"); val != "" {
		filter.DateFrom = dateQueryParam(ctx, "date_from")
	}
	if val := ctx.QueryParam("date_to"); val != "" {
		filter.DateTo = dateQueryParam(ctx, "date_to")
	}

	lessons, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	if lessons == nil {
		lessons = []lesson.Lesson{}
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	lsn, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == lesson.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding lesson by ID")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

// checkOwnership lets admins through and teachers only onto their own lessons.
func (api *lessonApi) checkOwnership(ctx echo.Context, id int) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin {
		return nil
	}

	lsn, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == lesson.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding lesson by ID")
	}
	if lsn.TeacherID != claims.UserID() {
		return errHttpForbidden
	}
	return nil
}

func (api *lessonApi) realize(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.checkOwnership(ctx, id); err != nil {
		return err
	}

	var data SubjectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubjectRequest")
	}

	lsn, err := api.svc.Realize(ctx.Request().Context(), id, data.Subject)
	if err != nil {
		if errors.Cause(err) == lesson.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "realizing lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) cancel(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.checkOwnership(ctx, id); err != nil {
		return err
	}

	lsn, err := api.svc.Cancel(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == lesson.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "cancelling lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) restore(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.checkOwnership(ctx, id); err != nil {
		return err
	}

	lsn, err := api.svc.Restore(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == lesson.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "restoring lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) updateSubject(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.checkOwnership(ctx, id); err != nil {
		return err
	}

	var data SubjectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubjectRequest")
	}

	lsn, err := api.svc.UpdateSubject(ctx.Request().Context(), id, data.Subject)
	if err != nil {
		if errors.Cause(err) == lesson.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating lesson subject")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) attendances(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	atts, err := api.svc.Attendances(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == lesson.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying lesson attendances")
	}
	if atts == nil {
		atts = []lesson.Attendance{}
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *lessonApi) setAttendances(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.checkOwnership(ctx, id); err != nil {
		return err
	}

	var data []AttendanceUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to []AttendanceUpdate")
	}

	statuses := make(map[int]lesson.AttendanceStatus, len(data))
	for _, upd := range data {
		statuses[upd.StudentID] = upd.Status
	}

	atts, err := api.svc.SetAttendances(ctx.Request().Context(), id, statuses)
	if err != nil {
		switch errors.Cause(err) {
		case lesson.ErrNotFound:
			return errHttpNotFound
		case lesson.ErrAttendanceNotFound:
			return core.NewValidationError(nil,
				core.FieldError{Field: "student_id", Error: "student is not enrolled on this lesson's date"})
		}
		return errors.Wrap(err, "setting lesson attendances")
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *lessonApi) teacherTimetable(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	date := dateQueryParam(ctx, "date")

	tt, err := api.svc.TeacherTimetable(ctx.Request().Context(), id, date)
	if err != nil {
		return errors.Wrap(err, "building teacher timetable")
	}
	return ctx.JSON(http.StatusOK, tt)
}

func (api *lessonApi) groupTimetable(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	date := dateQueryParam(ctx, "date")

	tt, err := api.svc.GroupTimetable(ctx.Request().Context(), id, date)
	if err != nil {
		return errors.Wrap(err, "building group timetable")
	}
	return ctx.JSON(http.StatusOK, tt)
}

type (
	SubjectRequest struct {
		Subject string `json:"subject"`
	}

	AttendanceUpdate struct {
		StudentID int                     `json:"student_id"`
		Status    lesson.AttendanceStatus `json:"status"`
	}
)
