package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/delivery_shop/internal/events"
	"github.com/Skotchmaster/delivery_shop/internal/hash"
	"github.com/Skotchmaster/delivery_shop/internal/logging"
	"github.com/Skotchmaster/delivery_shop/internal/models"
	"github.com/Skotchmaster/delivery_shop/internal/oauth"
	"github.com/Skotchmaster/delivery_shop/internal/repo"
	"github.com/Skotchmaster/delivery_shop/internal/session"
	"github.com/Skotchmaster/delivery_shop/internal/tokens"
	"github.com/Skotchmaster/delivery_shop/internal/transport"
)

// Issue selects which credentials a successful sign-in produces.
type Issue uint8

const (
	IssueSession Issue = 1 << iota
	IssueToken
)

type AuthResult struct {
	User       *models.User
	Token      string
	TokenExp   time.Time
	SessionID  string
	SessionExp time.Time
}

// GoogleCredential carries either an authorization code from the redirect
// flow or an ID token posted by the browser.
type GoogleCredential struct {
	Code    string
	IDToken string
}

type AuthService struct {
	Repo     *repo.GormRepo
	Tokens   *tokens.Issuer
	Sessions session.Store
	// Provider is nil when Google sign-in is not configured.
	Provider    oauth.Provider
	FrontendURL string
	Events      events.Publisher
}

func (s *AuthService) issue(ctx context.Context, u *models.User, what Issue) (*AuthResult, error) {
	res := &AuthResult{User: u}
	if what&IssueToken != 0 {
		tok, exp, err := s.Tokens.Issue(u.ID, string(u.Role))
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
		res.Token, res.TokenExp = tok, exp
	}
	if what&IssueSession != 0 {
		sid, exp, err := s.Sessions.Create(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		res.SessionID, res.SessionExp = sid, exp
	}
	return res, nil
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest, what Issue) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}

	l.Info("register_success", "user_id", user.ID)
	s.publishUser(ctx, user)
	return s.issue(ctx, user, what)
}

func (s *AuthService) Login(ctx context.Context, email, password string, what Issue) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "reason", "unknown email")
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password", "user_id", user.ID)
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	}

	l.Info("login_success", "user_id", user.ID)
	return s.issue(ctx, user, what)
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.Sessions.Destroy(ctx, sessionID)
}

// Authenticate resolves the caller from a bearer token or a session id,
// trying the token first.
func (s *AuthService) Authenticate(ctx context.Context, bearer, sessionID string) (*models.User, error) {
	if bearer != "" {
		if claims, err := s.Tokens.Parse(bearer); err == nil {
			if id, err := claims.UserID(); err == nil {
				return s.loadUser(ctx, id)
			}
		}
	}
	if sessionID != "" {
		id, err := s.Sessions.Lookup(ctx, sessionID)
		if err == nil {
			return s.loadUser(ctx, id)
		}
		if !errors.Is(err, session.ErrNoSession) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: missing or invalid credentials", ErrUnauthenticated)
}

func (s *AuthService) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.GetUserByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s no longer exists", ErrUnauthenticated, id)
	}
	return u, err
}

// GoogleAuthURL validates the frontend return address and builds the
// provider redirect carrying it as state.
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.Provider == nil {
		return "", fmt.Errorf("%w: google sign-in is not configured", ErrNotFound)
	}
	state, err := s.ReturnURL(state)
	if err != nil {
		return "", err
	}
	return s.Provider.AuthCodeURL(state), nil
}

// ReturnURL checks that state points back at the frontend; empty means the
// default frontend callback.
func (s *AuthService) ReturnURL(state string) (string, error) {
	base := strings.TrimRight(s.FrontendURL, "/")
	if state == "" {
		return base + "/auth/callback", nil
	}
	if state != base && !strings.HasPrefix(state, base+"/") {
		return "", fmt.Errorf("%w: redirect target outside the frontend", ErrValidation)
	}
	return state, nil
}

// GoogleSignIn is the single entry for both Google flows. New accounts are
// customers unless their email is on the approved list.
func (s *AuthService) GoogleSignIn(ctx context.Context, cred GoogleCredential, what Issue) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.google_sign_in")
	if s.Provider == nil {
		return nil, fmt.Errorf("%w: google sign-in is not configured", ErrNotFound)
	}

	var (
		id  *oauth.Identity
		err error
	)
	switch {
	case cred.IDToken != "":
		id, err = s.Provider.VerifyIDToken(ctx, cred.IDToken)
	case cred.Code != "":
		id, err = s.Provider.Exchange(ctx, cred.Code)
	default:
		return nil, fmt.Errorf("%w: credential required", ErrValidation)
	}
	if err != nil {
		l.Warn("google_sign_in_error", "reason", "provider rejected credential", "error", err)
		if errors.Is(err, oauth.ErrInvalidCredential) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	user, err := s.googleUser(ctx, id)
	if err != nil {
		l.Warn("google_sign_in_error", "email", id.Email, "error", err)
		return nil, err
	}
	l.Info("google_sign_in_success", "user_id", user.ID, "role", user.Role)
	return s.issue(ctx, user, what)
}

func (s *AuthService) googleUser(ctx context.Context, id *oauth.Identity) (*models.User, error) {
	user, err := s.Repo.GetUserByGoogleID(ctx, id.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	approvedRole, approved, err := s.Repo.ApprovedRole(ctx, id.Email)
	if err != nil {
		return nil, err
	}

	user, err = s.Repo.GetUserByEmail(ctx, id.Email)
	switch {
	case err == nil:
		if user.Role != models.RoleCustomer && !approved {
			return nil, fmt.Errorf("%w: staff accounts need an approved email for google sign-in", ErrForbidden)
		}
		if err := s.Repo.LinkGoogle(ctx, user.ID, id.Subject, id.Picture); err != nil {
			return nil, err
		}
		return s.Repo.GetUserByID(ctx, user.ID)
	case !errors.Is(err, repo.ErrNotFound):
		return nil, err
	}

	role := models.RoleCustomer
	if approved {
		role = approvedRole
	}
	name := id.Name
	if name == "" {
		name = strings.SplitN(id.Email, "@", 2)[0]
	}
	googleID := id.Subject
	user = &models.User{
		Name:           name,
		Email:          id.Email,
		Role:           role,
		GoogleID:       &googleID,
		ProfilePicture: id.Picture,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account already exists", ErrConflict)
		}
		return nil, err
	}
	s.publishUser(ctx, user)
	return user, nil
}

func (s *AuthService) publishUser(ctx context.Context, u *models.User) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, events.TopicUsers, u.ID.String(), events.New(events.UserRegistered, u)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", events.TopicUsers, "error", err)
	}
}
