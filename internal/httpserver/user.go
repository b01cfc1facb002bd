package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/delivery_shop/internal/logging"
	"github.com/Skotchmaster/delivery_shop/internal/service"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.me")

	a, err := actor(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Me(ctx, a)
	if err != nil {
		return serviceError(l, "me_error", err)
	}
	return respond(c, http.StatusOK, user)
}

func (h *UserHTTP) Riders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.riders")

	a, err := actor(c)
	if err != nil {
		return err
	}
	riders, err := h.Svc.ListRiders(ctx, a)
	if err != nil {
		return serviceError(l, "list_riders_error", err)
	}
	return respondList(c, riders)
}
