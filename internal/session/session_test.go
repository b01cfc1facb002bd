package session

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/delivery_shop/internal/db/dbtest"
	"github.com/Skotchmaster/delivery_shop/internal/repo"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	userID := uuid.New()

	id, expires, err := s.Create(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, id, 64)
	assert.True(t, expires.After(time.Now()))

	got, err := s.Lookup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = s.Lookup(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = s.Lookup(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.Destroy(ctx, id))
	_, err = s.Lookup(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDBStore(t *testing.T) {
	exerciseStore(t, &DBStore{Repo: repo.New(dbtest.Open(t)), TTL: time.Hour})
}

func TestDBStore_Expiry(t *testing.T) {
	r := repo.New(dbtest.Open(t))
	now := time.Now().UTC()
	s := &DBStore{Repo: r, TTL: time.Hour, Now: func() time.Time { return now }}

	id, _, err := s.Create(context.Background(), uuid.New())
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = s.Lookup(context.Background(), id)
	assert.ErrorIs(t, err, ErrNoSession)

	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL is required for redis tests")
	}

	s, err := NewRedisStore(context.Background(), url, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestCookies(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	c := CreateCookie(CookieName, "v", "/", exp, true)
	assert.Equal(t, "sid", c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	d := DeleteCookie(CookieName, "/", false)
	assert.Equal(t, -1, d.MaxAge)
	assert.Empty(t, d.Value)
	assert.False(t, d.Secure)

	assert.Len(t, Sha256Hex("abc"), 64)
	assert.NotEqual(t, "abc", Sha256Hex("abc"))
}
