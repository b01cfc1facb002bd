package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	authmw "github.com/Skotchmaster/delivery_shop/internal/middleware/auth"
	"github.com/Skotchmaster/delivery_shop/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/delivery_shop/internal/middleware/logging"
	"github.com/Skotchmaster/delivery_shop/internal/models"
	"github.com/Skotchmaster/delivery_shop/internal/session"
)

const csrfHeader = "X-CSRF-Token"

type Deps struct {
	Auth    *AuthHTTP
	Catalog *CatalogHTTP
	Orders  *OrderHTTP
	Users   *UserHTTP
	AuthMW  *authmw.Authenticator
	// Ready reports whether storage is reachable; nil means always ready.
	Ready func() error
}

type Options struct {
	CORSOrigins []string
	// CSRF turns on double-submit protection for cookie sessions.
	CSRF         bool
	CookieSecure bool
}

// New builds the echo instance with the shared middleware stack.
func New(logger *slog.Logger, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestID, csrfHeader},
		ExposeHeaders:    []string{echo.HeaderXRequestID, csrfHeader},
	}))
	if opts.CSRF {
		e.Use(csrf.Middleware(csrf.Config{
			HeaderName:     csrfHeader,
			SessionCookie:  session.CookieName,
			Secure:         opts.CookieSecure,
			AllowedOrigins: opts.CORSOrigins,
			SkipPaths:      []string{"/auth/login", "/auth/register", "/auth/google/token"},
		}))
	}
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "delivery shop api is running") })
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	mw := d.AuthMW
	admin := mw.RequireRoles(models.RoleAdmin)
	customer := mw.RequireRoles(models.RoleCustomer)

	auth := e.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.GET("/logout", d.Auth.Logout)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me, mw.RequireAuth)
	auth.GET("/google", d.Auth.GoogleRedirect)
	auth.GET("/google/callback", d.Auth.GoogleCallback)
	auth.POST("/google/token", d.Auth.GoogleToken)

	users := e.Group("/users")
	users.GET("/me", d.Users.Me, mw.RequireAuth)
	users.GET("/riders", d.Users.Riders, admin)

	products := e.Group("/products")
	products.GET("", d.Catalog.GetProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	products.POST("", d.Catalog.CreateProduct, admin)
	products.PUT("/:id", d.Catalog.UpdateProduct, admin)
	products.DELETE("/:id", d.Catalog.DeleteProduct, admin)

	orders := e.Group("/orders")
	orders.POST("", d.Orders.CreateOrder, customer)
	orders.GET("/me", d.Orders.MyOrders, customer)
	orders.GET("/assigned", d.Orders.AssignedOrders, mw.RequireRoles(models.RoleRider))
	orders.GET("", d.Orders.AllOrders, admin)
	orders.POST("/auto-assign", d.Orders.AutoAssign, admin)
	orders.GET("/:id", d.Orders.GetOrder, mw.RequireAuth)
	orders.POST("/:id/assign-rider", d.Orders.AssignRandomRider, admin)
	orders.PUT("/:id/assign", d.Orders.AssignRider, admin)
	orders.PUT("/:id/unassign", d.Orders.UnassignRider, admin)
	orders.PUT("/:id/admin-update", d.Orders.AdminUpdate, admin)
	orders.PUT("/:id/status", d.Orders.UpdateStatus, mw.RequireRoles(models.RoleRider, models.RoleAdmin))
	orders.PUT("/:id/cancel", d.Orders.CancelOrder, mw.RequireRoles(models.RoleCustomer, models.RoleAdmin))

	// Older client paths.
	e.POST("/customer/order", d.Orders.CreateOrder, customer)
	e.GET("/customer/orders", d.Orders.MyOrders, customer)
	e.POST("/admin/product", d.Catalog.CreateProduct, admin)
	e.GET("/admin/orders", d.Orders.AllOrders, admin)
	e.PUT("/admin/orders/:id/assign", d.Orders.AssignRider, admin)
}
