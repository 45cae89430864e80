package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

type CartSummary struct {
	ItemCounts int64
	TotalPrice int64
}

type CartLine struct {
	models.CartItem
	TotalPrice int64
}

type Checkout struct {
	Cart models.Cart
	CartSummary
}

// UpsertLine sets the quantity of productID in the user's open cart.
// The quantity replaces the previous one; it is not added to it.
func (s *CartService) UpsertLine(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if productID == 0 {
		return nil, fmt.Errorf("%w: product_id is required", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	change, err := s.Repo.UpsertCartLine(ctx, userID, productID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		case errors.Is(err, repo.ErrNotEnoughStock):
			return nil, fmt.Errorf("%w: quantity: %w", ErrValidation, err)
		}
		return nil, err
	}

	publish(ctx, s.Events, TopicCartEvents, userID, "cart_line_upserted", map[string]any{
		"user_id":           userID,
		"cart_id":           change.Item.CartID,
		"product_id":        productID,
		"quantity":          change.Item.Quantity,
		"previous_quantity": change.PreviousQuantity,
		"stock_left":        change.StockLeft,
	})
	return &change.Item, nil
}

// Summary aggregates the open cart; without one the summary is zero.
func (s *CartService) Summary(ctx context.Context, userID uint) (CartSummary, error) {
	cart, err := s.Repo.GetOpenCart(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartSummary{}, nil
		}
		return CartSummary{}, err
	}
	totals, err := s.Repo.CartTotals(ctx, cart.ID)
	if err != nil {
		return CartSummary{}, err
	}
	return CartSummary{ItemCounts: totals.ItemCounts, TotalPrice: totals.TotalPrice}, nil
}

func (s *CartService) Lines(ctx context.Context, userID, cartID uint) ([]CartLine, error) {
	if _, err := s.Repo.GetUserCart(ctx, userID, cartID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart %d", ErrNotFound, cartID)
		}
		return nil, err
	}

	items, err := s.Repo.CartLines(ctx, cartID)
	if err != nil {
		return nil, err
	}

	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		var price int64
		if it.Product != nil {
			price = it.Product.Price
		}
		lines = append(lines, CartLine{CartItem: it, TotalPrice: int64(it.Quantity) * price})
	}
	return lines, nil
}

func (s *CartService) RemoveLine(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	item, err := s.Repo.RemoveCartLine(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product is not in the cart", ErrNotFound)
		}
		return nil, err
	}

	publish(ctx, s.Events, TopicCartEvents, userID, "cart_line_removed", map[string]any{
		"user_id":    userID,
		"cart_id":    item.CartID,
		"product_id": productID,
		"quantity":   item.Quantity,
	})
	return item, nil
}

// Checkout closes the open cart. The reserved stock stays taken.
func (s *CartService) Checkout(ctx context.Context, userID uint) (*Checkout, error) {
	cart, totals, err := s.Repo.CloseCart(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("%w: no open cart", ErrNotFound)
		case errors.Is(err, repo.ErrEmptyCart):
			return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
		}
		return nil, err
	}

	publish(ctx, s.Events, TopicCartEvents, userID, "cart_checked_out", map[string]any{
		"user_id":     userID,
		"cart_id":     cart.ID,
		"item_counts": totals.ItemCounts,
		"total_price": totals.TotalPrice,
	})
	return &Checkout{
		Cart:        *cart,
		CartSummary: CartSummary{ItemCounts: totals.ItemCounts, TotalPrice: totals.TotalPrice},
	}, nil
}
