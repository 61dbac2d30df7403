package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/group"
)

type groupApi struct {
	svc *group.Service
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *group.Service) {
	api := groupApi{svc: svc}

	gg := g.Group("/groups", jwt)
	gg.POST("", api.create, adminMiddleware())
	gg.GET("", api.query)
	gg.DELETE("", api.destroyMultiple, adminMiddleware())
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:id", api.update, adminMiddleware())
	gg.GET("/:id/assignments", api.groupAssignments, staffMiddleware())
	gg.GET("/:id/students", api.enrolledStudents, staffMiddleware())

	ag := g.Group("/assignments", jwt)
	ag.POST("", api.assign, adminMiddleware())
	ag.GET("", api.queryAssignments, staffMiddleware())
	ag.DELETE("", api.destroyAssignments, adminMiddleware())
	ag.GET("/:id", api.retrieveAssignment, staffMiddleware())
	ag.PUT("/:id", api.updateAssignment, adminMiddleware())
}

// Group handlers

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}

	grp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) query(ctx echo.Context) error {
	groups, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []group.StudentGroup{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	grp, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding group by ID")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data group.UpdateGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}

	grp, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting groups")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *groupApi) groupAssignments(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	asgs, err := api.svc.GroupAssignments(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying group assignments")
	}
	if asgs == nil {
		asgs = []group.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *groupApi) enrolledStudents(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	date := dateQueryParam(ctx, "date")

	ids, err := api.svc.StudentsEnrolledOn(ctx.Request().Context(), id, date)
	if err != nil {
		return errors.Wrap(err, "querying enrolled students")
	}
	if ids == nil {
		ids = []int{}
	}
	return ctx.JSON(http.StatusOK, ids)
}

// Assignment handlers

func (api *groupApi) assign(ctx echo.Context) error {
	var data group.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}

	asg, err := api.svc.Assign(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == group.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "assigning student")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *groupApi) queryAssignments(ctx echo.Context) error {
	studentID := intQueryParam(ctx, "student_id")
	if studentID == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "this field is required"})
	}

	asgs, err := api.svc.StudentAssignments(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "querying student assignments")
	}
	if asgs == nil {
		asgs = []group.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *groupApi) retrieveAssignment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	asg, err := api.svc.GetAssignment(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == group.ErrAssignmentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding assignment by ID")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *groupApi) updateAssignment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data group.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}

	asg, err := api.svc.UpdateAssignment(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == group.ErrAssignmentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *groupApi) destroyAssignments(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.DeleteAssignments(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting assignments")
	}
	return ctx.NoContent(http.StatusNoContent)
}
