package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/delivery_shop/internal/models"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")  // 401
	ErrForbidden       = errors.New("forbidden")        // 403
	ErrNotFound        = errors.New("not found")        // 404
	ErrValidation      = errors.New("validation")       // 400
	ErrConflict        = errors.New("conflict")         // 409
	ErrUpstream        = errors.New("upstream failure") // 502
)

// ErrInsufficientStock is a validation failure.
var ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrValidation)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role models.Role
}

func ActorFromUser(u *models.User) Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

func (a Actor) Is(roles ...models.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
