package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/delivery_shop/internal/util"
)

type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Count   *int       `json:"count,omitempty"`
	Message string     `json:"message,omitempty"`
	Meta    *util.Meta `json:"meta,omitempty"`
}

func respond(c echo.Context, code int, data any) error {
	return c.JSON(code, Response{Success: true, Data: data})
}

func respondList[T any](c echo.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return c.JSON(http.StatusOK, Response{Success: true, Data: items, Count: &n})
}

func respondMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: msg})
}
