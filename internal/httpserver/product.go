package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/delivery_shop/internal/logging"
	authmw "github.com/Skotchmaster/delivery_shop/internal/middleware/auth"
	"github.com/Skotchmaster/delivery_shop/internal/models"
	"github.com/Skotchmaster/delivery_shop/internal/service"
	"github.com/Skotchmaster/delivery_shop/internal/transport"
	"github.com/Skotchmaster/delivery_shop/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid").SetInternal(err)
	}
	return id, nil
}

func actor(c echo.Context) (service.Actor, error) {
	a, ok := authmw.ActorFrom(c)
	if !ok {
		return service.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return a, nil
}

func page(c echo.Context) (p, offset, limit int) {
	p = util.ParseIntDefault(c.QueryParam("page"), 1)
	offset, limit = util.Calculate(p, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))
	return p, offset, limit
}

func respondPage(c echo.Context, items []models.Product, p, offset, limit int, total int64) error {
	if items == nil {
		items = []models.Product{}
	}
	n := len(items)
	meta := util.NewMeta(p, offset, limit, total)
	return c.JSON(http.StatusOK, Response{Success: true, Data: items, Count: &n, Meta: &meta})
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	p, offset, limit := page(c)
	total, items, err := h.Svc.ListProducts(ctx, offset, limit)
	if err != nil {
		return serviceError(l, "get_products_error", err)
	}

	l.Info("get_products_success", "count", len(items))
	return respondPage(c, items, p, offset, limit, total)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	p, offset, limit := page(c)
	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return serviceError(l, "search_products_error", err)
	}

	l.Info("search_products_success", "count", len(items))
	return respondPage(c, items, p, offset, limit, total)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := pathID(c)
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return err
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return serviceError(l, "get_product_error", err)
	}
	return respond(c, http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.CreateProductRequest
	if err := bind(c, &req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	product, err := h.Svc.CreateProduct(ctx, a, req)
	if err != nil {
		return serviceError(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return respond(c, http.StatusCreated, product)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return err
	}
	var req transport.UpdateProductRequest
	if err := bind(c, &req); err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	product, err := h.Svc.UpdateProduct(ctx, a, id, req)
	if err != nil {
		return serviceError(l, "update_product_error", err)
	}

	l.Info("update_product_success", "product_id", product.ID)
	return respond(c, http.StatusOK, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		l.Warn("delete_product_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return err
	}

	if err := h.Svc.DeleteProduct(ctx, a, id); err != nil {
		return serviceError(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return respondMessage(c, "product deleted")
}
