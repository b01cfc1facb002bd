package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/delivery_shop/internal/models"
)

func orderedVariants(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).
		Preload("Variants", orderedVariants).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Preload("Variants", orderedVariants).
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// SearchProducts matches q case-insensitively against title, description and category.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	where := "LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?"

	var total int64
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where(where, pattern, pattern, pattern).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Preload("Variants", orderedVariants).
		Where(where, pattern, pattern, pattern).
		Order("title ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// GetProductsByIDs returns products in the order of ids, skipping unknown ones.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	var found []models.Product
	if err := r.DB.WithContext(ctx).
		Preload("Variants", orderedVariants).
		Where("id IN ?", ids).
		Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func numberVariants(variants []models.Variant) {
	for i := range variants {
		variants[i].Position = i
	}
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	numberVariants(prod.Variants)
	prod.AvailableQuantity = models.SumStock(prod.Variants)
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, translate(err)
	}
	return prod, nil
}

// SaveProduct writes product columns and, when replaceVariants is set,
// swaps the stored variant list for prod.Variants.
func (r *GormRepo) SaveProduct(ctx context.Context, prod *models.Product, replaceVariants bool) (*models.Product, error) {
	err := r.Tx(ctx, func(tx *GormRepo) error {
		db := tx.DB.WithContext(ctx)
		if replaceVariants {
			if err := db.Where("product_id = ?", prod.ID).Delete(&models.Variant{}).Error; err != nil {
				return err
			}
			numberVariants(prod.Variants)
			for i := range prod.Variants {
				prod.Variants[i].ID = 0
				prod.Variants[i].ProductID = prod.ID
			}
			if len(prod.Variants) > 0 {
				if err := db.Create(&prod.Variants).Error; err != nil {
					return err
				}
			}
		}
		prod.AvailableQuantity = models.SumStock(prod.Variants)
		return db.Omit("Variants").Save(prod).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.Tx(ctx, func(tx *GormRepo) error {
		db := tx.DB.WithContext(ctx)
		if err := db.Where("product_id = ?", id).Delete(&models.Variant{}).Error; err != nil {
			return err
		}
		res := db.Where("id = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DecrementStock takes qty units from a variant in a single conditional
// update. It fails with ErrInsufficientStock when fewer than qty remain.
func (r *GormRepo) DecrementStock(ctx context.Context, variantID uint, qty int) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Variant{}).
		Where("id = ? AND stock >= ?", variantID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStock puts qty units back on the variant matching color and size.
// A variant that no longer exists is ignored.
func (r *GormRepo) RestoreStock(ctx context.Context, productID uuid.UUID, color, size string, qty int) error {
	return r.DB.WithContext(ctx).
		Model(&models.Variant{}).
		Where("product_id = ? AND color = ? AND size = ?", productID, color, size).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

// RecomputeAvailable sets available_quantity to the sum of variant stock.
func (r *GormRepo) RecomputeAvailable(ctx context.Context, productID uuid.UUID) error {
	return r.DB.WithContext(ctx).Exec(
		"UPDATE products SET available_quantity = (SELECT COALESCE(SUM(stock), 0) FROM variants WHERE product_id = ?) WHERE id = ?",
		productID, productID,
	).Error
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}
