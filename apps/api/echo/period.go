package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kazadi/darasa/core/period"
)

type periodApi struct {
	svc *period.Service
}

func registerPeriodAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *period.Service) {
	api := periodApi{svc: svc}

	pg := g.Group("/periods", jwt)
	pg.POST("", api.create, adminMiddleware())
	pg.GET("", api.query)
	pg.DELETE("", api.destroyMultiple, adminMiddleware())
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update, adminMiddleware())
}

func (api *periodApi) create(ctx echo.Context) error {
	var data period.NewPeriod
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPeriod")
	}

	prd, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating period")
	}
	return ctx.JSON(http.StatusCreated, prd)
}

func (api *periodApi) query(ctx echo.Context) error {
	periods, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying periods")
	}
	if periods == nil {
		periods = []period.Period{}
	}
	return ctx.JSON(http.StatusOK, periods)
}

func (api *periodApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	prd, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == period.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding period by ID")
	}
	return ctx.JSON(http.StatusOK, prd)
}

func (api *periodApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data period.UpdatePeriod
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePeriod")
	}

	prd, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == period.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating period")
	}
	return ctx.JSON(http.StatusOK, prd)
}

func (api *periodApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting periods")
	}
	return ctx.NoContent(http.StatusNoContent)
}
