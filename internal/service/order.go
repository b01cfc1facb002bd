package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/delivery_shop/internal/events"
	"github.com/Skotchmaster/delivery_shop/internal/logging"
	"github.com/Skotchmaster/delivery_shop/internal/models"
	"github.com/Skotchmaster/delivery_shop/internal/repo"
	"github.com/Skotchmaster/delivery_shop/internal/transport"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Riders *RiderSelector
	// Policy is used when an order is placed.
	Policy Policy
	Events events.Publisher
}

func NewOrderService(r *repo.GormRepo, riders *RiderSelector, policy Policy, pub events.Publisher) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &OrderService{Repo: r, Riders: riders, Policy: policy, Events: pub}
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, events.TopicOrders, order.ID.String(), events.New(eventType, order)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", events.TopicOrders, "type", eventType, "order_id", order.ID, "error", err)
	}
}

func notFound(err error, what string, id uuid.UUID) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return err
}

func validateOrderRequest(req transport.CreateOrderRequest) (models.PaymentMethod, error) {
	if len(req.Items) == 0 {
		return "", fmt.Errorf("%w: items required", ErrValidation)
	}
	if strings.TrimSpace(req.CustomerAddress) == "" {
		return "", fmt.Errorf("%w: customerAddress required", ErrValidation)
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return "", fmt.Errorf("%w: customerPhone required", ErrValidation)
	}
	pm, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for i, it := range req.Items {
		if it.ProductID == uuid.Nil {
			return "", fmt.Errorf("%w: items[%d].productId required", ErrValidation, i)
		}
		if it.Quantity < 1 {
			return "", fmt.Errorf("%w: items[%d].quantity must be >= 1", ErrValidation, i)
		}
		if it.Color == "" || it.Size == "" {
			return "", fmt.Errorf("%w: items[%d] color and size required", ErrValidation, i)
		}
		if it.Price != nil && it.Price.IsNegative() {
			return "", fmt.Errorf("%w: items[%d].price must be >= 0", ErrValidation, i)
		}
	}
	return pm, nil
}

// PlaceOrder reserves stock for every item and records the order in one
// transaction. Any failing item leaves all stock untouched.
func (s *OrderService) PlaceOrder(ctx context.Context, actor Actor, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place_order", "customer_id", actor.ID)

	if actor.Role != models.RoleCustomer {
		return nil, fmt.Errorf("%w: only customers can place orders", ErrForbidden)
	}
	pm, err := validateOrderRequest(req)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(req.Items))
		touched := make([]uuid.UUID, 0, len(req.Items))
		seen := make(map[uuid.UUID]bool, len(req.Items))

		for _, it := range req.Items {
			product, err := tx.GetProduct(ctx, it.ProductID)
			if err != nil {
				return notFound(err, "product", it.ProductID)
			}
			variant, ok := product.FindVariant(it.Color, it.Size)
			if !ok {
				return fmt.Errorf("%w: %s has no variant %s/%s", ErrValidation, product.Title, it.Color, it.Size)
			}
			if it.Price != nil && !it.Price.IsZero() && !it.Price.Equal(variant.Price) {
				return fmt.Errorf("%w: price %s does not match %s for %s %s/%s",
					ErrValidation, it.Price, variant.Price, product.Title, it.Color, it.Size)
			}

			if err := tx.DecrementStock(ctx, variant.ID, it.Quantity); err != nil {
				if errors.Is(err, repo.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s %s/%s", ErrInsufficientStock, product.Title, it.Color, it.Size)
				}
				return err
			}
			if !seen[product.ID] {
				seen[product.ID] = true
				touched = append(touched, product.ID)
			}

			total = total.Add(variant.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			items = append(items, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Title,
				Color:       variant.Color,
				Size:        variant.Size,
				Price:       variant.Price,
				Quantity:    it.Quantity,
				ImageURL:    product.Image,
			})
		}

		for _, id := range touched {
			if err := tx.RecomputeAvailable(ctx, id); err != nil {
				return err
			}
		}

		rider, err := s.Riders.Select(ctx, tx, s.Policy)
		if err != nil {
			return err
		}

		order = &models.Order{
			CustomerID:      actor.ID,
			CustomerName:    actor.Name,
			CustomerAddress: strings.TrimSpace(req.CustomerAddress),
			CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
			Items:           items,
			TotalAmount:     total,
			Status:          models.StatusPaid,
			PaymentMethod:   pm,
		}
		if rider != nil {
			order.RiderID = &rider.ID
			order.RiderName = rider.Name
			order.Status = models.StatusShipped
		}

		order, err = tx.CreateOrder(ctx, order)
		return err
	})
	if err != nil {
		l.Warn("place_order_error", "error", err)
		return nil, err
	}

	l.Info("place_order_success", "order_id", order.ID, "total", order.TotalAmount.String(), "status", order.Status)
	s.publish(ctx, events.OrderCreated, order)
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, actor Actor) ([]models.Order, error) {
	if actor.Role != models.RoleCustomer {
		return nil, fmt.Errorf("%w: customers only", ErrForbidden)
	}
	return s.Repo.ListOrders(ctx, repo.OrderFilter{CustomerID: &actor.ID})
}

func (s *OrderService) ListAssigned(ctx context.Context, actor Actor) ([]models.Order, error) {
	if actor.Role != models.RoleRider {
		return nil, fmt.Errorf("%w: riders only", ErrForbidden)
	}
	return s.Repo.ListOrders(ctx, repo.OrderFilter{RiderID: &actor.ID})
}

// ListAll returns every order, optionally narrowed to one status.
func (s *OrderService) ListAll(ctx context.Context, actor Actor, status string) ([]models.Order, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admins only", ErrForbidden)
	}
	var f repo.OrderFilter
	if status != "" {
		st, err := models.ParseOrderStatus(status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		f.Status = &st
	}
	return s.Repo.ListOrders(ctx, f)
}

// Get is allowed for the owning customer, the assigned rider and admins.
func (s *OrderService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	switch {
	case actor.Role == models.RoleAdmin:
	case actor.Role == models.RoleCustomer && order.CustomerID == actor.ID:
	case actor.Role == models.RoleRider && order.AssignedTo(actor.ID):
	default:
		return nil, fmt.Errorf("%w: not your order", ErrForbidden)
	}
	return order, nil
}

func requireAdmin(actor Actor) error {
	if actor.Role != models.RoleAdmin {
		return fmt.Errorf("%w: admins only", ErrForbidden)
	}
	return nil
}

func (s *OrderService) rider(ctx context.Context, tx *repo.GormRepo, id uuid.UUID) (*models.User, error) {
	u, err := tx.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: rider %s does not exist", ErrValidation, id)
		}
		return nil, err
	}
	if u.Role != models.RoleRider {
		return nil, fmt.Errorf("%w: user %s is not a rider", ErrValidation, id)
	}
	return u, nil
}

func errCancelled(id uuid.UUID) error {
	return fmt.Errorf("%w: order %s is cancelled", ErrConflict, id)
}

// cancel puts the order's reserved stock back and marks it CANCELLED.
// Orders that are already finished cannot be cancelled.
func cancel(ctx context.Context, tx *repo.GormRepo, order *models.Order) error {
	if order.Status.Terminal() {
		return fmt.Errorf("%w: order is already %s", ErrConflict, order.Status)
	}
	touched := make(map[uuid.UUID]bool)
	for _, it := range order.Items {
		if err := tx.RestoreStock(ctx, it.ProductID, it.Color, it.Size, it.Quantity); err != nil {
			return err
		}
		touched[it.ProductID] = true
	}
	for id := range touched {
		if err := tx.RecomputeAvailable(ctx, id); err != nil {
			return err
		}
	}
	return tx.SetOrderStatus(ctx, order.ID, models.StatusCancelled)
}

// AssignRider hands the order to a rider and moves it to SHIPPED whatever
// its current status, unless it was cancelled. The stored rider name wins over riderName when they differ.
func (s *OrderService) AssignRider(ctx context.Context, actor Actor, orderID, riderID uuid.UUID, riderName string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.assign_rider", "order_id", orderID, "rider_id", riderID)
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if riderID == uuid.Nil || strings.TrimSpace(riderName) == "" {
		return nil, fmt.Errorf("%w: riderId and riderName required", ErrValidation)
	}

	order, err := s.assign(ctx, orderID, func(tx *repo.GormRepo) (*models.User, error) {
		return s.rider(ctx, tx, riderID)
	})
	if err != nil {
		l.Warn("assign_rider_error", "error", err)
		return nil, err
	}
	l.Info("assign_rider_success")
	s.publish(ctx, events.OrderRiderAssigned, order)
	return order, nil
}

// AssignRandomRider picks a uniformly random rider for the order.
func (s *OrderService) AssignRandomRider(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.assign_random_rider", "order_id", orderID)
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	order, err := s.assign(ctx, orderID, func(tx *repo.GormRepo) (*models.User, error) {
		r, err := s.Riders.Select(ctx, tx, PolicyRandom)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return nil, fmt.Errorf("%w: no riders available", ErrNotFound)
		}
		return r, nil
	})
	if err != nil {
		l.Warn("assign_random_rider_error", "error", err)
		return nil, err
	}
	l.Info("assign_random_rider_success", "rider_id", order.RiderID)
	s.publish(ctx, events.OrderRiderAssigned, order)
	return order, nil
}

func (s *OrderService) assign(ctx context.Context, orderID uuid.UUID, choose func(tx *repo.GormRepo) (*models.User, error)) (*models.Order, error) {
	var order *models.Order
	err := s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		current, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return notFound(err, "order", orderID)
		}
		if current.Status == models.StatusCancelled {
			return errCancelled(orderID)
		}
		rider, err := choose(tx)
		if err != nil {
			return err
		}
		if err := tx.SetOrderRider(ctx, orderID, rider.ID, rider.Name, models.StatusShipped); err != nil {
			return err
		}
		order, err = tx.GetOrder(ctx, orderID)
		return err
	})
	return order, err
}

// UnassignRider clears the rider and resets the order to PAID. Cancelled
// orders stay cancelled.
func (s *OrderService) UnassignRider(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.unassign_rider", "order_id", orderID)
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		current, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return notFound(err, "order", orderID)
		}
		if current.Status == models.StatusCancelled {
			return errCancelled(orderID)
		}
		if err := tx.ClearOrderRider(ctx, orderID); err != nil {
			return err
		}
		order, err = tx.GetOrder(ctx, orderID)
		return err
	})
	if err != nil {
		l.Warn("unassign_rider_error", "error", err)
		return nil, err
	}
	l.Info("unassign_rider_success")
	s.publish(ctx, events.OrderRiderUnassigned, order)
	return order, nil
}

// UpdateStatus moves an order along its lifecycle. Riders may only touch
// orders assigned to them. Only admins may send an order back to PAID, which
// drops its rider, or cancel it, which releases its stock. SHIPPED and
// IN_TRANSIT need an assigned rider.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, status string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", orderID, "actor_id", actor.ID)

	if !actor.Is(models.RoleAdmin, models.RoleRider) {
		return nil, fmt.Errorf("%w: riders and admins only", ErrForbidden)
	}
	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var order *models.Order
	err = s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		current, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return notFound(err, "order", orderID)
		}
		if actor.Role == models.RoleRider && !current.AssignedTo(actor.ID) {
			return fmt.Errorf("%w: order is not assigned to you", ErrForbidden)
		}
		if err := moveStatus(ctx, tx, actor, current, next); err != nil {
			return err
		}
		order, err = tx.GetOrder(ctx, orderID)
		return err
	})
	if err != nil {
		l.Warn("update_status_error", "status", status, "error", err)
		return nil, err
	}
	l.Info("update_status_success", "status", order.Status)
	s.publish(ctx, events.OrderStatusChanged, order)
	return order, nil
}

func moveStatus(ctx context.Context, tx *repo.GormRepo, actor Actor, current *models.Order, next models.OrderStatus) error {
	if current.Status == next {
		return nil
	}
	if current.Status.Terminal() {
		return fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, current.Status, next)
	}
	switch next {
	case models.StatusPaid:
		if actor.Role != models.RoleAdmin {
			return fmt.Errorf("%w: only admins can return an order to PAID", ErrForbidden)
		}
		return tx.ClearOrderRider(ctx, current.ID)
	case models.StatusCancelled:
		if actor.Role != models.RoleAdmin {
			return fmt.Errorf("%w: only admins can cancel through a status update", ErrForbidden)
		}
		return cancel(ctx, tx, current)
	case models.StatusShipped, models.StatusInTransit:
		if current.RiderID == nil {
			return fmt.Errorf("%w: order has no rider, assign one first", ErrConflict)
		}
	}
	if !current.Status.CanTransition(next) {
		return fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, current.Status, next)
	}
	return tx.SetOrderStatus(ctx, current.ID, next)
}

// AdminUpdate overrides status and/or rider without lifecycle checks.
// Cancelled orders are frozen and a cancel releases stock the way CancelOrder
// does. A PAID order carries no rider, so a rider alone ships it.
func (s *OrderService) AdminUpdate(ctx context.Context, actor Actor, orderID uuid.UUID, req transport.AdminUpdateRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.admin_update", "order_id", orderID)
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if req.Status == nil && req.RiderID == nil {
		return nil, fmt.Errorf("%w: status or riderId required", ErrValidation)
	}

	var next *models.OrderStatus
	if req.Status != nil {
		st, err := models.ParseOrderStatus(*req.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		next = &st
	}

	var order *models.Order
	err := s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		current, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return notFound(err, "order", orderID)
		}
		if current.Status == models.StatusCancelled {
			return errCancelled(orderID)
		}
		status := current.Status
		if next != nil {
			status = *next
		} else if status == models.StatusPaid {
			status = models.StatusShipped
		}
		switch status {
		case models.StatusPaid:
			if req.RiderID != nil {
				return fmt.Errorf("%w: a PAID order has no rider", ErrValidation)
			}
			if err := tx.ClearOrderRider(ctx, orderID); err != nil {
				return err
			}
		case models.StatusCancelled:
			if err := cancel(ctx, tx, current); err != nil {
				return err
			}
		case models.StatusShipped, models.StatusInTransit:
			if req.RiderID == nil && current.RiderID == nil {
				return fmt.Errorf("%w: order has no rider, assign one first", ErrConflict)
			}
		}

		switch {
		case status == models.StatusPaid:
		case req.RiderID != nil:
			rider, err := s.rider(ctx, tx, *req.RiderID)
			if err != nil {
				return err
			}
			if err := tx.SetOrderRider(ctx, orderID, rider.ID, rider.Name, status); err != nil {
				return err
			}
		default:
			if err := tx.SetOrderStatus(ctx, orderID, status); err != nil {
				return err
			}
		}
		order, err = tx.GetOrder(ctx, orderID)
		return err
	})
	if err != nil {
		l.Warn("admin_update_error", "error", err)
		return nil, err
	}
	l.Info("admin_update_success", "status", order.Status)
	s.publish(ctx, events.OrderStatusChanged, order)
	return order, nil
}

// CancelOrder cancels a customer's own PAID order, or any unfinished order
// for admins, and puts the reserved stock back.
func (s *OrderService) CancelOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.cancel", "order_id", orderID, "actor_id", actor.ID)
	if !actor.Is(models.RoleAdmin, models.RoleCustomer) {
		return nil, fmt.Errorf("%w: customers and admins only", ErrForbidden)
	}

	var order *models.Order
	err := s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		current, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return notFound(err, "order", orderID)
		}
		if actor.Role == models.RoleCustomer {
			if current.CustomerID != actor.ID {
				return fmt.Errorf("%w: not your order", ErrForbidden)
			}
			if current.Status != models.StatusPaid {
				return fmt.Errorf("%w: only PAID orders can be cancelled, order is %s", ErrConflict, current.Status)
			}
		}
		if err := cancel(ctx, tx, current); err != nil {
			return err
		}
		order, err = tx.GetOrder(ctx, orderID)
		return err
	})
	if err != nil {
		l.Warn("cancel_order_error", "error", err)
		return nil, err
	}
	l.Info("cancel_order_success")
	s.publish(ctx, events.OrderCancelled, order)
	return order, nil
}

// AutoAssign hands unassigned PAID orders, oldest first, to riders in
// roster order, wrapping around when orders outnumber riders.
func (s *OrderService) AutoAssign(ctx context.Context, actor Actor) ([]models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.auto_assign")
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var assigned []models.Order
	err := s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		pending, err := tx.ListUnassignedPaid(ctx)
		if err != nil {
			return err
		}
		riders, err := s.Riders.Rotation(ctx, tx, len(pending))
		if err != nil || len(riders) == 0 {
			return err
		}
		for i, o := range pending {
			rider := riders[i]
			if err := tx.SetOrderRider(ctx, o.ID, rider.ID, rider.Name, models.StatusShipped); err != nil {
				return err
			}
			updated, err := tx.GetOrder(ctx, o.ID)
			if err != nil {
				return err
			}
			assigned = append(assigned, *updated)
		}
		return nil
	})
	if err != nil {
		l.Error("auto_assign_error", "error", err)
		return nil, err
	}

	l.Info("auto_assign_success", "assigned", len(assigned))
	for i := range assigned {
		s.publish(ctx, events.OrderRiderAssigned, &assigned[i])
	}
	if assigned == nil {
		assigned = []models.Order{}
	}
	return assigned, nil
}
