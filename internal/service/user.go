package service

import (
	"context"

	"github.com/Skotchmaster/delivery_shop/internal/models"
	"github.com/Skotchmaster/delivery_shop/internal/repo"
)

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) Me(ctx context.Context, actor Actor) (*models.User, error) {
	u, err := s.Repo.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, "user", actor.ID)
	}
	return u, nil
}

func (s *UserService) ListRiders(ctx context.Context, actor Actor) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Repo.ListRiders(ctx)
}
