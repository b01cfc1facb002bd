package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Skotchmaster/delivery_shop/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate record")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// Tx runs fn inside one database transaction. The repo handed to fn is bound
// to that transaction; returning an error rolls everything back.
func (r *GormRepo) Tx(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Reset deletes every row the application owns, children first.
func (r *GormRepo) Reset(ctx context.Context) error {
	return r.Tx(ctx, func(tx *GormRepo) error {
		db := tx.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []any{
			&models.OrderItem{}, &models.Order{}, &models.Variant{}, &models.Product{},
			&models.Session{}, &models.ApprovedEmail{}, &models.User{},
		} {
			if err := db.Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
