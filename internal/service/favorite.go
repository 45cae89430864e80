package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/repo"
)

type FavoriteService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

func (s *FavoriteService) Add(ctx context.Context, userID, productID uint) error {
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return err
	}

	exists, err := s.Repo.IsFavorite(ctx, userID, productID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: product already exists", ErrConflict)
	}

	if err := s.Repo.AddFavorite(ctx, userID, productID); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return fmt.Errorf("%w: product already exists", ErrConflict)
		}
		return err
	}

	publish(ctx, s.Events, TopicProductEvents, productID, "favorite_added", map[string]any{
		"user_id":    userID,
		"product_id": productID,
	})
	return nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, productID uint) error {
	if err := s.Repo.RemoveFavorite(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product is not in favorites", ErrNotFound)
		}
		return err
	}

	publish(ctx, s.Events, TopicProductEvents, productID, "favorite_removed", map[string]any{
		"user_id":    userID,
		"product_id": productID,
	})
	return nil
}
