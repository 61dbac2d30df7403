package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kazadi/darasa/core"
	"github.com/kazadi/darasa/core/mark"
)

type markApi struct {
	svc *mark.Service
}

func registerMarkAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *mark.Service) {
	api := markApi{svc: svc}

	mg := g.Group("/marks", jwt)
	mg.POST("", api.create, staffMiddleware())
	mg.GET("", api.query)
	mg.DELETE("", api.destroyMultiple, staffMiddleware())

	// static segments before the `/:id` wildcards
	mg.POST("/symbols", api.createSymbol, adminMiddleware())
	mg.GET("/symbols", api.querySymbols)
	mg.DELETE("/symbols", api.destroySymbols, adminMiddleware())
	mg.POST("/categories", api.createCategory, adminMiddleware())
	mg.GET("/categories", api.queryCategories)
	mg.DELETE("/categories", api.destroyCategories, adminMiddleware())

	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id", api.update, staffMiddleware())
	mg.GET("/:id/history", api.history, staffMiddleware())
}

// Mark handlers

func (api *markApi) create(ctx echo.Context) error {
	var data mark.NewMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMark")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// teachers mark in their own name
	if !claims.IsAdmin {
		data.TeacherID = claims.UserID()
	}

	mrk, err := api.svc.Create(ctx.Request().Context(), data, claims.UserID())
	if err != nil {
		return errors.Wrap(err, "creating mark")
	}
	return ctx.JSON(http.StatusCreated, mrk)
}

// checkOwnership lets admins through and teachers only onto their own marks.
func (api *markApi) checkOwnership(ctx echo.Context, id int) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin {
		return nil
	}

	mrk, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == mark.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding mark by ID")
	}
	if mrk.TeacherID != claims.UserID() {
		return errHttpForbidden
	}
	return nil
}

func (api *markApi) query(ctx echo.Context) error {
	studentID := intQueryParam(ctx, "student_id")
	if studentID == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "this field is required"})
	}
	courseID := intQueryParam(ctx, "course_id")

	marks, err := api.svc.StudentMarks(ctx.Request().Context(), studentID, courseID)
	if err != nil {
		return errors.Wrap(err, "querying student marks")
	}
	if marks == nil {
		marks = []mark.Mark{}
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *markApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	mrk, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == mark.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding mark by ID")
	}
	return ctx.JSON(http.StatusOK, mrk)
}

func (api *markApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := api.checkOwnership(ctx, id); err != nil {
		return err
	}

	var data mark.UpdateMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMark")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	mrk, err := api.svc.Update(ctx.Request().Context(), id, data, claims.UserID())
	if err != nil {
		if errors.Cause(err) == mark.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating mark")
	}
	return ctx.JSON(http.StatusOK, mrk)
}

func (api *markApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	for _, id := range query.IDs {
		if err := api.checkOwnership(ctx, id); err != nil {
			return err
		}
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting marks")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *markApi) history(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	entries, err := api.svc.History(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == mark.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying mark history")
	}
	if entries == nil {
		entries = []mark.ChangeHistory{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

// Symbol handlers

func (api *markApi) createSymbol(ctx echo.Context) error {
	var data mark.NewSymbol
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSymbol")
	}

	sym, err := api.svc.CreateSymbol(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating symbol")
	}
	return ctx.JSON(http.StatusCreated, sym)
}

func (api *markApi) querySymbols(ctx echo.Context) error {
	syms, err := api.svc.QueryAllSymbols(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying symbols")
	}
	if syms == nil {
		syms = []mark.Symbol{}
	}
	return ctx.JSON(http.StatusOK, syms)
}

func (api *markApi) destroySymbols(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.DeleteSymbols(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting symbols")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Category handlers

func (api *markApi) createCategory(ctx echo.Context) error {
	var data mark.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *markApi) queryCategories(ctx echo.Context) error {
	cats, err := api.svc.QueryAllCategories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	if cats == nil {
		cats = []mark.Category{}
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *markApi) destroyCategories(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.DeleteCategories(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting categories")
	}
	return ctx.NoContent(http.StatusNoContent)
}
