package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/delivery_shop/internal/models"
)

type staticRoster []models.User

func (s staticRoster) ListRiders(context.Context) ([]models.User, error) { return s, nil }

func roster(n int) staticRoster {
	out := make(staticRoster, n)
	for i := range out {
		out[i] = models.User{ID: uuid.New(), Role: models.RoleRider}
	}
	return out
}

func TestRiderSelector_Policies(t *testing.T) {
	riders := roster(3)
	sel := NewRiderSelector(7)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r, err := sel.Select(ctx, riders, PolicyFirstAvailable)
		require.NoError(t, err)
		assert.Equal(t, riders[0].ID, r.ID)
	}

	for i := 0; i < 7; i++ {
		r, err := sel.Select(ctx, riders, PolicyRoundRobin)
		require.NoError(t, err)
		assert.Equal(t, riders[i%3].ID, r.ID, "pick %d", i)
	}

	seen := map[uuid.UUID]bool{}
	for i := 0; i < 200; i++ {
		r, err := sel.Select(ctx, riders, PolicyRandom)
		require.NoError(t, err)
		seen[r.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestRiderSelector_EmptyRosterIsNoRider(t *testing.T) {
	sel := NewRiderSelector(1)
	for _, p := range []Policy{PolicyFirstAvailable, PolicyRoundRobin, PolicyRandom} {
		r, err := sel.Select(context.Background(), roster(0), p)
		require.NoError(t, err)
		assert.Nil(t, r)
	}
}

func TestRiderSelector_Rotation(t *testing.T) {
	riders := roster(2)
	sel := NewRiderSelector(1)

	got, err := sel.Rotation(context.Background(), riders, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, r := range got {
		assert.Equal(t, riders[i%2].ID, r.ID, "slot %d", i)
	}

	got, err = sel.Rotation(context.Background(), roster(0), 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("Round_Robin")
	require.NoError(t, err)
	assert.Equal(t, PolicyRoundRobin, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyFirstAvailable, p)

	_, err = ParsePolicy("nearest")
	assert.ErrorIs(t, err, ErrValidation)
}
