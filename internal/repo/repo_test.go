package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/delivery_shop/internal/db/dbtest"
	"github.com/Skotchmaster/delivery_shop/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	return New(dbtest.Open(t))
}

func seedProduct(t *testing.T, r *GormRepo, stocks ...int) *models.Product {
	t.Helper()

	p := &models.Product{
		Title:       "Arctic Chill 1.5 Ton Split AC",
		Description: "Inverter split air conditioner",
		Price:       decimal.RequireFromString("100"),
		Image:       "https://img.example/ac.png",
		Category:    "AC",
	}
	sizes := []string{"1 Ton", "1.5 Ton", "2 Ton"}
	for i, s := range stocks {
		p.Variants = append(p.Variants, models.Variant{
			Color: "White",
			Size:  sizes[i%len(sizes)],
			Price: decimal.RequireFromString("100"),
			Stock: s,
		})
	}
	created, err := r.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return created
}

func TestProduct_CreateAndGet(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	p := seedProduct(t, r, 5, 3)
	assert.Equal(t, 8, p.AvailableQuantity)

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Variants, 2)
	assert.Equal(t, "1 Ton", got.Variants[0].Size)
	assert.Equal(t, "1.5 Ton", got.Variants[1].Size)
	assert.Equal(t, 8, got.AvailableQuantity)

	_, err = r.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecrementStock_Conditional(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	p := seedProduct(t, r, 5)
	vid := p.Variants[0].ID

	require.NoError(t, r.DecrementStock(ctx, vid, 3))
	err := r.DecrementStock(ctx, vid, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	require.NoError(t, r.RecomputeAvailable(ctx, p.ID))
	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Variants[0].Stock)
	assert.Equal(t, 2, got.AvailableQuantity)
}

func TestTx_RollsBackOnError(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	p := seedProduct(t, r, 5, 1)
	boom := errors.New("boom")

	err := r.Tx(ctx, func(tx *GormRepo) error {
		if err := tx.DecrementStock(ctx, p.Variants[0].ID, 2); err != nil {
			return err
		}
		if err := tx.DecrementStock(ctx, p.Variants[1].ID, 2); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	err = r.Tx(ctx, func(tx *GormRepo) error {
		if err := tx.DecrementStock(ctx, p.Variants[0].ID, 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Variants[0].Stock)
	assert.Equal(t, 1, got.Variants[1].Stock)
}

func TestRestoreStock(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	p := seedProduct(t, r, 1)
	require.NoError(t, r.RestoreStock(ctx, p.ID, "White", "1 Ton", 4))
	require.NoError(t, r.RestoreStock(ctx, p.ID, "Black", "1 Ton", 4))

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Variants[0].Stock)
}

func TestSaveProduct_ReplacesVariants(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	p := seedProduct(t, r, 5, 3)
	p.Title = "Arctic Chill Pro"
	p.Variants = []models.Variant{{Color: "Silver", Size: "2 Ton", Price: decimal.RequireFromString("150"), Stock: 7}}

	_, err := r.SaveProduct(ctx, p, true)
	require.NoError(t, err)

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arctic Chill Pro", got.Title)
	require.Len(t, got.Variants, 1)
	assert.Equal(t, "Silver", got.Variants[0].Color)
	assert.Equal(t, 7, got.AvailableQuantity)
}

func TestDeleteProduct(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	p := seedProduct(t, r, 5)
	require.NoError(t, r.DeleteProduct(ctx, p.ID))
	_, err := r.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, r.DeleteProduct(ctx, p.ID), ErrNotFound)
}

func TestSearchAndList(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	a := seedProduct(t, r, 1)
	fan := &models.Product{Title: "Breeze Ceiling Fan", Description: "quiet", Category: "Fan", Price: decimal.RequireFromString("20")}
	_, err := r.CreateProduct(ctx, fan)
	require.NoError(t, err)

	total, items, err := r.SearchProducts(ctx, "arctic", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)

	total, items, err = r.ListProducts(ctx, 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 1)

	byIDs, err := r.GetProductsByIDs(ctx, []uuid.UUID{fan.ID, uuid.New(), a.ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, fan.ID, byIDs[0].ID)
	assert.Equal(t, a.ID, byIDs[1].ID)
}

func TestUsers(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := &models.User{Name: "John Doe", Email: "John@Example.com", PasswordHash: "x"}
	require.NoError(t, r.CreateUser(ctx, u))
	assert.Equal(t, models.RoleCustomer, u.Role)

	err := r.CreateUser(ctx, &models.User{Name: "Dup", Email: "john@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := r.GetUserByEmail(ctx, " JOHN@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, r.LinkGoogle(ctx, u.ID, "google-sub", "https://pic"))
	got, err = r.GetUserByGoogleID(ctx, "google-sub")
	require.NoError(t, err)
	assert.Equal(t, "https://pic", got.ProfilePicture)

	_, err = r.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRiders_CreationOrder(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	second := &models.User{Name: "Rider Two", Email: "rider2@coolgarmi.com", PasswordHash: "x", Role: models.RoleRider, CreatedAt: base.Add(time.Minute)}
	first := &models.User{Name: "Rider One", Email: "rider1@coolgarmi.com", PasswordHash: "x", Role: models.RoleRider, CreatedAt: base}
	require.NoError(t, r.CreateUser(ctx, second))
	require.NoError(t, r.CreateUser(ctx, first))
	require.NoError(t, r.CreateUser(ctx, &models.User{Name: "Admin", Email: "admin@coolgarmi.com", PasswordHash: "x", Role: models.RoleAdmin}))

	riders, err := r.ListRiders(ctx)
	require.NoError(t, err)
	require.Len(t, riders, 2)
	assert.Equal(t, first.ID, riders[0].ID)
	assert.Equal(t, second.ID, riders[1].ID)
}

func TestApprovedEmails(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, ok, err := r.ApprovedRole(ctx, "staff@coolgarmi.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.UpsertApprovedEmail(ctx, "Staff@coolgarmi.com", models.RoleRider))
	require.NoError(t, r.UpsertApprovedEmail(ctx, "staff@coolgarmi.com", models.RoleAdmin))

	role, ok, err := r.ApprovedRole(ctx, "staff@coolgarmi.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.RoleAdmin, role)
}

func TestSessions(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	live := &models.Session{ID: "live", UserID: uuid.New(), ExpiresAt: now.Add(time.Hour)}
	dead := &models.Session{ID: "dead", UserID: uuid.New(), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, r.CreateSession(ctx, live))
	require.NoError(t, r.CreateSession(ctx, dead))

	got, err := r.GetSession(ctx, "live", now)
	require.NoError(t, err)
	assert.Equal(t, live.UserID, got.UserID)

	_, err = r.GetSession(ctx, "dead", now)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := r.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, r.DeleteSession(ctx, "live"))
	_, err = r.GetSession(ctx, "live", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrders_AssignAndList(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	p := seedProduct(t, r, 5)
	customer := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	newOrder := func(at time.Time) *models.Order {
		o := &models.Order{
			CustomerID:      customer,
			CustomerName:    "John Doe",
			CustomerAddress: "1 Main St",
			CustomerPhone:   "555",
			TotalAmount:     decimal.RequireFromString("100"),
			CreatedAt:       at,
			Items: []models.OrderItem{{
				ProductID: p.ID, ProductName: p.Title, Color: "White", Size: "1 Ton",
				Price: decimal.RequireFromString("100"), Quantity: 1,
			}},
		}
		created, err := r.CreateOrder(ctx, o)
		require.NoError(t, err)
		return created
	}
	older := newOrder(base)
	newer := newOrder(base.Add(time.Minute))
	assert.Equal(t, models.StatusPaid, older.Status)
	assert.Equal(t, models.PaymentCard, older.PaymentMethod)

	pending, err := r.ListUnassignedPaid(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, older.ID, pending[0].ID)

	rider := uuid.New()
	require.NoError(t, r.SetOrderRider(ctx, older.ID, rider, "Rider One", models.StatusShipped))

	got, err := r.GetOrder(ctx, older.ID)
	require.NoError(t, err)
	assert.True(t, got.AssignedTo(rider))
	assert.Equal(t, models.StatusShipped, got.Status)
	require.Len(t, got.Items, 1)

	assigned, err := r.ListOrders(ctx, OrderFilter{RiderID: &rider})
	require.NoError(t, err)
	require.Len(t, assigned, 1)

	mine, err := r.ListOrders(ctx, OrderFilter{CustomerID: &customer})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)

	require.NoError(t, r.ClearOrderRider(ctx, older.ID))
	got, err = r.GetOrderForUpdate(ctx, older.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RiderID)
	assert.Empty(t, got.RiderName)
	assert.Equal(t, models.StatusPaid, got.Status)
	assert.Len(t, got.Items, 1)

	paid := models.StatusPaid
	all, err := r.ListOrders(ctx, OrderFilter{Status: &paid})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, r.SetOrderStatus(ctx, uuid.New(), models.StatusDelivered), ErrNotFound)
}
