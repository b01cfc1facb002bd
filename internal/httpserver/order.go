package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/delivery_shop/internal/logging"
	"github.com/Skotchmaster/delivery_shop/internal/models"
	"github.com/Skotchmaster/delivery_shop/internal/service"
	"github.com/Skotchmaster/delivery_shop/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	order, err := h.Svc.PlaceOrder(ctx, a, req)
	if err != nil {
		return serviceError(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "total", order.TotalAmount.String())
	return respond(c, http.StatusCreated, order)
}

// listing adapts the read-only order listings to a handler.
func (h *OrderHTTP) listing(event string, list func(echo.Context, service.Actor) ([]models.Order, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("handler", "order."+event)
		a, err := actor(c)
		if err != nil {
			return err
		}
		orders, err := list(c, a)
		if err != nil {
			return serviceError(l, event+"_error", err)
		}
		return respondList(c, orders)
	}
}

func (h *OrderHTTP) MyOrders(c echo.Context) error {
	return h.listing("my_orders", func(c echo.Context, a service.Actor) ([]models.Order, error) {
		return h.Svc.ListMine(c.Request().Context(), a)
	})(c)
}

func (h *OrderHTTP) AssignedOrders(c echo.Context) error {
	return h.listing("assigned_orders", func(c echo.Context, a service.Actor) ([]models.Order, error) {
		return h.Svc.ListAssigned(c.Request().Context(), a)
	})(c)
}

// AllOrders accepts an optional ?status= filter.
func (h *OrderHTTP) AllOrders(c echo.Context) error {
	return h.listing("all_orders", func(c echo.Context, a service.Actor) ([]models.Order, error) {
		return h.Svc.ListAll(c.Request().Context(), a, c.QueryParam("status"))
	})(c)
}

// single wraps the handlers that read or change one order addressed by :id.
func (h *OrderHTTP) single(event string, run func(echo.Context, service.Actor, uuid.UUID) (*models.Order, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("handler", "order."+event)
		a, err := actor(c)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			l.Warn(event+"_error", "status", 400, "reason", "id is not a uuid", "error", err)
			return err
		}
		order, err := run(c, a, id)
		if err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) {
				l.Warn(event+"_error", "status", 400, "reason", "invalid body", "error", err)
				return err
			}
			return serviceError(l, event+"_error", err)
		}
		l.Info(event+"_success", "order_id", order.ID, "order_status", order.Status)
		return respond(c, http.StatusOK, order)
	}
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	return h.single("get_order", func(c echo.Context, a service.Actor, id uuid.UUID) (*models.Order, error) {
		return h.Svc.Get(c.Request().Context(), a, id)
	})(c)
}

func (h *OrderHTTP) AssignRider(c echo.Context) error {
	return h.single("assign_rider", func(c echo.Context, a service.Actor, id uuid.UUID) (*models.Order, error) {
		var req transport.AssignRiderRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return h.Svc.AssignRider(c.Request().Context(), a, id, req.RiderID, req.RiderName)
	})(c)
}

func (h *OrderHTTP) AssignRandomRider(c echo.Context) error {
	return h.single("assign_random_rider", func(c echo.Context, a service.Actor, id uuid.UUID) (*models.Order, error) {
		return h.Svc.AssignRandomRider(c.Request().Context(), a, id)
	})(c)
}

func (h *OrderHTTP) UnassignRider(c echo.Context) error {
	return h.single("unassign_rider", func(c echo.Context, a service.Actor, id uuid.UUID) (*models.Order, error) {
		return h.Svc.UnassignRider(c.Request().Context(), a, id)
	})(c)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	return h.single("update_status", func(c echo.Context, a service.Actor, id uuid.UUID) (*models.Order, error) {
		var req transport.UpdateStatusRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return h.Svc.UpdateStatus(c.Request().Context(), a, id, req.Status)
	})(c)
}

func (h *OrderHTTP) AdminUpdate(c echo.Context) error {
	return h.single("admin_update", func(c echo.Context, a service.Actor, id uuid.UUID) (*models.Order, error) {
		var req transport.AdminUpdateRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return h.Svc.AdminUpdate(c.Request().Context(), a, id, req)
	})(c)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	return h.single("cancel_order", func(c echo.Context, a service.Actor, id uuid.UUID) (*models.Order, error) {
		return h.Svc.CancelOrder(c.Request().Context(), a, id)
	})(c)
}

func (h *OrderHTTP) AutoAssign(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.auto_assign")

	a, err := actor(c)
	if err != nil {
		return err
	}
	orders, err := h.Svc.AutoAssign(ctx, a)
	if err != nil {
		return serviceError(l, "auto_assign_error", err)
	}

	l.Info("auto_assign_success", "assigned", len(orders))
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    transport.AutoAssignResponse{Assigned: len(orders), Orders: orders},
		Message: fmt.Sprintf("%d orders assigned", len(orders)),
	})
}
