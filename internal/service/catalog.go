package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/delivery_shop/internal/events"
	"github.com/Skotchmaster/delivery_shop/internal/logging"
	"github.com/Skotchmaster/delivery_shop/internal/models"
	"github.com/Skotchmaster/delivery_shop/internal/repo"
	"github.com/Skotchmaster/delivery_shop/internal/search"
	"github.com/Skotchmaster/delivery_shop/internal/transport"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  search.Index // optional
	Events events.Publisher
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, offset, limit)
}

// SearchProducts uses the full-text index when configured and falls back to
// SQL matching when there is none or it fails.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: query required", ErrValidation)
	}

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.GetProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		l.Warn("search_index_error", "reason", "falling back to sql", "error", err)
	}
	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

func variantsFrom(req []transport.VariantRequest) []models.Variant {
	out := make([]models.Variant, 0, len(req))
	for _, v := range req {
		out = append(out, models.Variant{
			Color: strings.TrimSpace(v.Color),
			Size:  strings.TrimSpace(v.Size),
			Price: v.Price,
			Stock: v.Stock,
		})
	}
	return out
}

func validateVariants(vs []models.Variant) error {
	seen := make(map[string]bool, len(vs))
	for i, v := range vs {
		if v.Color == "" || v.Size == "" {
			return fmt.Errorf("%w: variants[%d] color and size required", ErrValidation, i)
		}
		if v.Stock < 0 {
			return fmt.Errorf("%w: variants[%d].stock must be >= 0", ErrValidation, i)
		}
		if v.Price.IsNegative() {
			return fmt.Errorf("%w: variants[%d].price must be >= 0", ErrValidation, i)
		}
		key := v.Color + "\x00" + v.Size
		if seen[key] {
			return fmt.Errorf("%w: duplicate variant %s/%s", ErrValidation, v.Color, v.Size)
		}
		seen[key] = true
	}
	return nil
}

func distinct(vs []models.Variant, pick func(models.Variant) string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, v := range vs {
		if k := pick(v); !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// fillDerived defaults sizes, colors and a zero variant price from the variants.
func fillDerived(p *models.Product) {
	for i := range p.Variants {
		if p.Variants[i].Price.IsZero() {
			p.Variants[i].Price = p.Price
		}
	}
	if len(p.Sizes) == 0 {
		p.Sizes = distinct(p.Variants, func(v models.Variant) string { return v.Size })
	}
	if len(p.Colors) == 0 {
		p.Colors = distinct(p.Variants, func(v models.Variant) string { return v.Color })
	}
	p.AvailableQuantity = models.SumStock(p.Variants)
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor Actor, req transport.CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Category) == "" {
		return nil, fmt.Errorf("%w: title and category required", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if req.Rating < 0 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be within 0..5", ErrValidation)
	}

	p := &models.Product{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    strings.TrimSpace(req.Category),
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		Variants:    variantsFrom(req.Variants),
		Rating:      req.Rating,
	}
	if err := validateVariants(p.Variants); err != nil {
		return nil, err
	}
	fillDerived(p)

	created, err := s.Repo.CreateProduct(ctx, p)
	if err != nil {
		l.Error("create_product_error", "error", err)
		return nil, err
	}
	l.Info("create_product_success", "product_id", created.ID)
	s.afterWrite(ctx, events.ProductCreated, created)
	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor Actor, id uuid.UUID, req transport.UpdateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product", "product_id", id)
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
		}
		p.Price = *req.Price
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Rating != nil {
		if *req.Rating < 0 || *req.Rating > 5 {
			return nil, fmt.Errorf("%w: rating must be within 0..5", ErrValidation)
		}
		p.Rating = *req.Rating
	}
	replace := req.Variants != nil
	if replace {
		p.Variants = variantsFrom(*req.Variants)
		if err := validateVariants(p.Variants); err != nil {
			return nil, err
		}
		p.Sizes, p.Colors = nil, nil
	}
	if req.Sizes != nil {
		p.Sizes = *req.Sizes
	}
	if req.Colors != nil {
		p.Colors = *req.Colors
	}
	fillDerived(p)

	saved, err := s.Repo.SaveProduct(ctx, p, replace)
	if err != nil {
		l.Error("update_product_error", "error", err)
		return nil, err
	}
	l.Info("update_product_success")
	s.afterWrite(ctx, events.ProductUpdated, saved)
	return saved, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actor Actor, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product", "product_id", id)
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		l.Error("delete_product_error", "error", err)
		return err
	}
	l.Info("delete_product_success")

	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			l.Warn("search_index_error", "error", err)
		}
	}
	s.publishProduct(ctx, events.ProductDeleted, id, map[string]string{"id": id.String()})
	return nil
}

func (s *CatalogService) afterWrite(ctx context.Context, eventType string, p *models.Product) {
	if s.Index != nil {
		if err := s.Index.Index(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
		}
	}
	s.publishProduct(ctx, eventType, p.ID, p)
}

func (s *CatalogService) publishProduct(ctx context.Context, eventType string, id uuid.UUID, data any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, events.TopicProducts, id.String(), events.New(eventType, data)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", events.TopicProducts, "type", eventType, "error", err)
	}
}
