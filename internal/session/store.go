package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNoSession = errors.New("session not found or expired")

// Store keeps server-side login sessions. Ids handed to clients are never
// stored verbatim.
type Store interface {
	Create(ctx context.Context, userID uuid.UUID) (id string, expires time.Time, err error)
	Lookup(ctx context.Context, id string) (uuid.UUID, error)
	Destroy(ctx context.Context, id string) error
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
