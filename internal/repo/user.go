package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/delivery_shop/internal/models"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	return translate(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// LinkGoogle attaches a Google subject and picture to an existing account.
func (r *GormRepo) LinkGoogle(ctx context.Context, id uuid.UUID, googleID, picture string) error {
	updates := map[string]any{"google_id": googleID}
	if picture != "" {
		updates["profile_picture"] = picture
	}
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRiders returns the rider roster in creation order.
func (r *GormRepo) ListRiders(ctx context.Context) ([]models.User, error) {
	var riders []models.User
	if err := r.DB.WithContext(ctx).
		Where("role = ?", string(models.RoleRider)).
		Order("created_at ASC, id ASC").
		Find(&riders).Error; err != nil {
		return nil, err
	}
	return riders, nil
}

func (r *GormRepo) ApprovedRole(ctx context.Context, email string) (models.Role, bool, error) {
	var approved models.ApprovedEmail
	err := r.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&approved).Error
	if err != nil {
		err = translate(err)
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return approved.Role, true, nil
}

func (r *GormRepo) UpsertApprovedEmail(ctx context.Context, email string, role models.Role) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(&models.ApprovedEmail{Email: normalizeEmail(email), Role: role, CreatedAt: time.Now().UTC()}).Error
}
