package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
)

const (
	MinRate = 0
	MaxRate = 5
)

type CommentService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

func (s *CommentService) Create(ctx context.Context, userID, productID uint, rate int, content string) (*models.Comment, error) {
	if rate < MinRate || rate > MaxRate {
		return nil, fmt.Errorf("%w: rate must be between %d and %d", ErrValidation, MinRate, MaxRate)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	c := models.Comment{ProductID: productID, UserID: userID, Rate: rate, Content: content}
	if err := s.Repo.CreateComment(ctx, &c); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		case errors.Is(err, repo.ErrDuplicate):
			return nil, fmt.Errorf("%w: you have already commented on this product", ErrConflict)
		}
		return nil, err
	}

	publish(ctx, s.Events, TopicProductEvents, productID, "comment_created", map[string]any{
		"user_id":    userID,
		"product_id": productID,
		"comment_id": c.ID,
		"rate":       rate,
	})
	return &c, nil
}

func (s *CommentService) Delete(ctx context.Context, userID, productID uint) error {
	c, err := s.Repo.DeleteComment(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: comment not found", ErrNotFound)
		}
		return err
	}

	publish(ctx, s.Events, TopicProductEvents, productID, "comment_deleted", map[string]any{
		"user_id":    userID,
		"product_id": productID,
		"comment_id": c.ID,
	})
	return nil
}
