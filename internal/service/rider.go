package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/Skotchmaster/delivery_shop/internal/models"
)

// Policy decides which rider of the roster gets the next order.
type Policy string

const (
	PolicyFirstAvailable Policy = "first_available"
	PolicyRoundRobin     Policy = "round_robin"
	PolicyRandom         Policy = "random"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyFirstAvailable, PolicyRoundRobin, PolicyRandom:
		return p, nil
	case "":
		return PolicyFirstAvailable, nil
	}
	return "", fmt.Errorf("%w: unknown rider policy %q", ErrValidation, s)
}

type RiderRoster interface {
	ListRiders(ctx context.Context) ([]models.User, error)
}

// RiderSelector picks riders from a roster ordered by creation time.
// The round-robin cursor is per process.
type RiderSelector struct {
	mu     sync.Mutex
	cursor int
	rnd    *rand.Rand
}

func NewRiderSelector(seed int64) *RiderSelector {
	return &RiderSelector{rnd: rand.New(rand.NewSource(seed))}
}

// Select loads the roster and picks one rider. A nil rider with a nil error
// means nobody is available.
func (s *RiderSelector) Select(ctx context.Context, roster RiderRoster, policy Policy) (*models.User, error) {
	riders, err := roster.ListRiders(ctx)
	if err != nil {
		return nil, err
	}
	return s.Pick(riders, policy), nil
}

// Rotation returns n riders walking the roster from its first rider and
// wrapping around. It is empty when the roster is.
func (s *RiderSelector) Rotation(ctx context.Context, roster RiderRoster, n int) ([]models.User, error) {
	riders, err := roster.ListRiders(ctx)
	if err != nil || len(riders) == 0 {
		return nil, err
	}
	out := make([]models.User, n)
	for i := range out {
		out[i] = riders[i%len(riders)]
	}
	return out, nil
}

func (s *RiderSelector) Pick(riders []models.User, policy Policy) *models.User {
	if len(riders) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var i int
	switch policy {
	case PolicyRoundRobin:
		i = s.cursor % len(riders)
		s.cursor++
	case PolicyRandom:
		if s.rnd == nil {
			s.rnd = rand.New(rand.NewSource(1))
		}
		i = s.rnd.Intn(len(riders))
	default:
		i = 0
	}
	r := riders[i]
	return &r
}
