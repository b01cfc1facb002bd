package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/delivery_shop/internal/db/dbtest"
	"github.com/Skotchmaster/delivery_shop/internal/events"
	"github.com/Skotchmaster/delivery_shop/internal/models"
	"github.com/Skotchmaster/delivery_shop/internal/repo"
	"github.com/Skotchmaster/delivery_shop/internal/transport"
)

type testEnv struct {
	Repo   *repo.GormRepo
	Events *events.Recorder
	Orders *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	r := repo.New(dbtest.Open(t))
	rec := &events.Recorder{}
	return &testEnv{
		Repo:   r,
		Events: rec,
		Orders: NewOrderService(r, NewRiderSelector(42), PolicyFirstAvailable, rec),
	}
}

func (e *testEnv) user(t *testing.T, name string, role models.Role, createdAt time.Time) Actor {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@coolgarmi.com", PasswordHash: "x", Role: role, CreatedAt: createdAt}
	require.NoError(t, e.Repo.CreateUser(context.Background(), u))
	return ActorFromUser(u)
}

func (e *testEnv) customer(t *testing.T) Actor {
	return e.user(t, "john", models.RoleCustomer, time.Time{})
}

type variantDef struct {
	Color, Size string
	Price       string
	Stock       int
}

func (e *testEnv) product(t *testing.T, title string, variants ...variantDef) *models.Product {
	t.Helper()
	p := &models.Product{Title: title, Description: title, Category: "AC", Price: decimal.RequireFromString("100"), Image: "https://img/" + title}
	for _, v := range variants {
		p.Variants = append(p.Variants, models.Variant{Color: v.Color, Size: v.Size, Price: decimal.RequireFromString(v.Price), Stock: v.Stock})
	}
	created, err := e.Repo.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return created
}

func (e *testEnv) stock(t *testing.T, p *models.Product, color, size string) int {
	t.Helper()
	got, err := e.Repo.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	v, ok := got.FindVariant(color, size)
	require.True(t, ok)
	return v.Stock
}

func orderFor(p *models.Product, color, size string, qty int) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		Items:           []transport.OrderItemRequest{{ProductID: p.ID, Color: color, Size: size, Quantity: qty}},
		CustomerAddress: "1 Main St",
		CustomerPhone:   "555-0100",
		PaymentMethod:   "card",
	}
}

// rawOrder inserts a PAID order directly, bypassing stock checks.
func (e *testEnv) rawOrder(t *testing.T, customer Actor, at time.Time) *models.Order {
	t.Helper()
	o, err := e.Repo.CreateOrder(context.Background(), &models.Order{
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		CustomerAddress: "1 Main St",
		CustomerPhone:   "555",
		TotalAmount:     decimal.Zero,
		Status:          models.StatusPaid,
		CreatedAt:       at,
	})
	require.NoError(t, err)
	return o
}

var admin = Actor{Role: models.RoleAdmin, Name: "Admin User"}
