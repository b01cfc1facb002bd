package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/delivery_shop/internal/models"
)

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	for i := range order.Items {
		order.Items[i].Position = i
	}
	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, translate(err)
	}
	return order, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// GetOrderForUpdate loads an order and locks its row until the surrounding
// transaction ends.
func (r *GormRepo) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.DB.WithContext(ctx).
		Where("order_id = ?", id).
		Order("position ASC, id ASC").
		Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

type OrderFilter struct {
	CustomerID *uuid.UUID
	RiderID    *uuid.UUID
	Status     *models.OrderStatus
}

// ListOrders returns matching orders, newest first.
func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.RiderID != nil {
		q = q.Where("rider_id = ?", *f.RiderID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}

	var orders []models.Order
	if err := q.Preload("Items", orderedItems).
		Order("created_at DESC, id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListUnassignedPaid returns PAID orders without a rider, oldest first.
func (r *GormRepo) ListUnassignedPaid(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Where("status = ? AND rider_id IS NULL", string(models.StatusPaid)).
		Order("created_at ASC, id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) updateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) SetOrderRider(ctx context.Context, id, riderID uuid.UUID, riderName string, status models.OrderStatus) error {
	return r.updateOrder(ctx, id, map[string]any{
		"rider_id":   riderID,
		"rider_name": riderName,
		"status":     string(status),
	})
}

// ClearOrderRider removes the rider and puts the order back to PAID.
func (r *GormRepo) ClearOrderRider(ctx context.Context, id uuid.UUID) error {
	return r.updateOrder(ctx, id, map[string]any{
		"rider_id":   gorm.Expr("NULL"),
		"rider_name": "",
		"status":     string(models.StatusPaid),
	})
}

func (r *GormRepo) SetOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	return r.updateOrder(ctx, id, map[string]any{"status": string(status)})
}
