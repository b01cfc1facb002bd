package repo

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/delivery_shop/internal/models"
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	return translate(r.DB.WithContext(ctx).Create(s).Error)
}

// GetSession returns an unexpired session by its stored (hashed) id.
func (r *GormRepo) GetSession(ctx context.Context, id string, now time.Time) (*models.Session, error) {
	var s models.Session
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, now).
		First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *GormRepo) DeleteSession(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

func (r *GormRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
