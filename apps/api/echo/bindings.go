package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kazadi/darasa/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// intParam parses a numeric path parameter. An unparsable value is a 404,
// same as a well-formed ID that matches nothing.
func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

// intQueryParam parses an optional numeric query parameter, 0 when absent.
func intQueryParam(ctx echo.Context, name string) int {
	val, _ := strconv.Atoi(ctx.QueryParam(name))
	return val
}

// dateQueryParam parses an optional `2006-01-02` query parameter, defaulting to today.
func dateQueryParam(ctx echo.Context, name string) time.Time {
	if val := ctx.QueryParam(name); val != "" {
		if date, err := time.Parse("2006-01-02", val); err == nil {
			return date
		}
	}
	return core.Day(time.Now())
}
