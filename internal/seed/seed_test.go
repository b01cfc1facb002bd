package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/delivery_shop/internal/db/dbtest"
	"github.com/Skotchmaster/delivery_shop/internal/hash"
	"github.com/Skotchmaster/delivery_shop/internal/models"
	"github.com/Skotchmaster/delivery_shop/internal/repo"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	r := repo.New(dbtest.Open(t))

	sum, err := Run(ctx, r, false)
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 4, Products: 5, Orders: 4, Approved: 3}, sum)

	riders, err := r.ListRiders(ctx)
	require.NoError(t, err)
	assert.Len(t, riders, 2)

	admin, err := r.GetUserByEmail(ctx, "admin@coolgarmi.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, hash.CheckPassword(admin.PasswordHash, "admin123"))

	role, ok, err := r.ApprovedRole(ctx, "rider2@coolgarmi.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.RoleRider, role)

	total, list, err := r.ListProducts(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	for _, p := range list {
		if p.Title == "Arctic Chill 1.5 Ton Split AC" {
			assert.Equal(t, 72, p.AvailableQuantity)
			assert.Equal(t, []string{"1 Ton", "1.5 Ton", "2 Ton"}, p.Sizes)
		}
	}

	orders, err := r.ListOrders(ctx, repo.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 4)
	assert.Equal(t, models.StatusPaid, orders[0].Status)
	assert.Equal(t, "32999", orders[0].TotalAmount.String())
}

func TestRun_KeepsExistingData(t *testing.T) {
	ctx := context.Background()
	r := repo.New(dbtest.Open(t))

	_, err := Run(ctx, r, false)
	require.NoError(t, err)

	again, err := Run(ctx, r, false)
	require.NoError(t, err)
	assert.Equal(t, Summary{Approved: 3}, again)

	reset, err := Run(ctx, r, true)
	require.NoError(t, err)
	assert.Equal(t, 4, reset.Users)
	assert.Equal(t, 4, reset.Orders)
}
