package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/delivery_shop/internal/models"
	"github.com/Skotchmaster/delivery_shop/internal/repo"
)

// DBStore keeps sessions in the sessions table.
type DBStore struct {
	Repo *repo.GormRepo
	TTL  time.Duration
	Now  func() time.Time
}

func (s *DBStore) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DBStore) Create(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	id := newID()
	expires := s.now().Add(s.TTL)
	if err := s.Repo.CreateSession(ctx, &models.Session{
		ID:        Sha256Hex(id),
		UserID:    userID,
		ExpiresAt: expires,
	}); err != nil {
		return "", time.Time{}, err
	}
	return id, expires, nil
}

func (s *DBStore) Lookup(ctx context.Context, id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.Nil, ErrNoSession
	}
	sess, err := s.Repo.GetSession(ctx, Sha256Hex(id), s.now())
	if errors.Is(err, repo.ErrNotFound) {
		return uuid.Nil, ErrNoSession
	}
	if err != nil {
		return uuid.Nil, err
	}
	return sess.UserID, nil
}

func (s *DBStore) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.Repo.DeleteSession(ctx, Sha256Hex(id))
}

// Sweep removes expired rows.
func (s *DBStore) Sweep(ctx context.Context) (int64, error) {
	return s.Repo.DeleteExpiredSessions(ctx, s.now())
}
