package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/delivery_shop/internal/logging"
	"github.com/Skotchmaster/delivery_shop/internal/models"
	"github.com/Skotchmaster/delivery_shop/internal/service"
	"github.com/Skotchmaster/delivery_shop/internal/session"
)

const userKey = "user"

type Authenticator struct {
	Svc *service.AuthService
}

func NewAuthenticator(svc *service.AuthService) *Authenticator {
	return &Authenticator{Svc: svc}
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func sessionID(c echo.Context) string {
	if ck, err := c.Cookie(session.CookieName); err == nil {
		return ck.Value
	}
	return ""
}

// RequireAuth accepts either a bearer token or a session cookie.
func (a *Authenticator) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := a.Svc.Authenticate(ctx, bearerToken(c), sessionID(c))
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			logging.FromContext(ctx).Error("authenticate_error", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot authenticate")
		}

		c.Set(userKey, user)
		l := logging.FromContext(ctx).With("user_id", user.ID, "role", user.Role)
		c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
		return next(c)
	}
}

// RequireRoles authenticates and then checks the role against roles.
func (a *Authenticator) RequireRoles(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return a.RequireAuth(func(c echo.Context) error {
			user, _ := UserFrom(c)
			for _, r := range roles {
				if user.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		})
	}
}

func UserFrom(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(userKey).(*models.User)
	return u, ok && u != nil
}

func ActorFrom(c echo.Context) (service.Actor, bool) {
	u, ok := UserFrom(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.ActorFromUser(u), true
}
