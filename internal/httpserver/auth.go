package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/delivery_shop/internal/logging"
	authmw "github.com/Skotchmaster/delivery_shop/internal/middleware/auth"
	"github.com/Skotchmaster/delivery_shop/internal/service"
	"github.com/Skotchmaster/delivery_shop/internal/session"
	"github.com/Skotchmaster/delivery_shop/internal/transport"
)

const bothCredentials = service.IssueSession | service.IssueToken

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) setSession(c echo.Context, res *service.AuthResult) {
	if res.SessionID == "" {
		return
	}
	c.SetCookie(session.CreateCookie(session.CookieName, res.SessionID, "/", res.SessionExp, h.CookieSecure))
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bind(c, &req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	res, err := h.Svc.Register(ctx, req, bothCredentials)
	if err != nil {
		return serviceError(l, "register_error", err)
	}

	h.setSession(c, res)
	l.Info("register_success", "user_id", res.User.ID)
	return respond(c, http.StatusCreated, transport.AuthResponse{Token: res.Token, User: res.User})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bind(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password, bothCredentials)
	if err != nil {
		return serviceError(l, "login_error", err)
	}

	h.setSession(c, res)
	l.Info("login_success", "user_id", res.User.ID)
	return respond(c, http.StatusOK, transport.AuthResponse{Token: res.Token, User: res.User})
}

// Logout always clears the cookie, even when no session was found.
func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(session.CookieName); err == nil && ck.Value != "" {
		if err := h.Svc.Logout(ctx, ck.Value); err != nil {
			l.Error("logout_error", "status", 500, "reason", "cannot destroy session", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot log out")
		}
	}

	c.SetCookie(session.DeleteCookie(session.CookieName, "/", h.CookieSecure))
	l.Info("logout_success")
	return respondMessage(c, "logged out")
}

func (h *AuthHTTP) Me(c echo.Context) error {
	user, ok := authmw.UserFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return respond(c, http.StatusOK, user)
}

// GoogleRedirect sends the browser to the consent screen. The optional
// redirect query parameter is where the browser lands afterwards.
func (h *AuthHTTP) GoogleRedirect(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.google_redirect")

	target, err := h.Svc.GoogleAuthURL(c.QueryParam("redirect"))
	if err != nil {
		return serviceError(l, "google_redirect_error", err)
	}
	return c.Redirect(http.StatusFound, target)
}

// GoogleCallback finishes the code flow and always redirects back to the
// frontend, with either ?token= or ?error=.
func (h *AuthHTTP) GoogleCallback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.google_callback")

	back, err := h.Svc.ReturnURL(c.QueryParam("state"))
	if err != nil {
		l.Warn("google_callback_error", "reason", "bad state", "error", err)
		back, _ = h.Svc.ReturnURL("")
	}

	if msg := c.QueryParam("error"); msg != "" {
		l.Warn("google_callback_error", "reason", "provider returned error", "error", msg)
		return c.Redirect(http.StatusFound, withQuery(back, "error", msg))
	}

	res, err := h.Svc.GoogleSignIn(ctx, service.GoogleCredential{Code: c.QueryParam("code")}, bothCredentials)
	if err != nil {
		l.Warn("google_callback_error", "status", statusFor(err), "error", err)
		return c.Redirect(http.StatusFound, withQuery(back, "error", callbackReason(err)))
	}

	h.setSession(c, res)
	l.Info("google_callback_success", "user_id", res.User.ID)
	return c.Redirect(http.StatusFound, withQuery(back, "token", res.Token))
}

func (h *AuthHTTP) GoogleToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.google_token")

	var req transport.GoogleTokenRequest
	if err := bind(c, &req); err != nil {
		l.Warn("google_token_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	res, err := h.Svc.GoogleSignIn(ctx, service.GoogleCredential{IDToken: req.Credential}, bothCredentials)
	if err != nil {
		return serviceError(l, "google_token_error", err)
	}

	h.setSession(c, res)
	l.Info("google_token_success", "user_id", res.User.ID)
	return respond(c, http.StatusOK, transport.AuthResponse{Token: res.Token, User: res.User})
}

func callbackReason(err error) string {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return "not_approved"
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrValidation):
		return "auth_failed"
	case errors.Is(err, service.ErrNotFound):
		return "google_disabled"
	}
	return "server_error"
}

func withQuery(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

