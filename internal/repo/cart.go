package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/grocery_shop/internal/models"
)

type CartTotals struct {
	ItemCounts int64
	TotalPrice int64
}

// LineChange describes a committed cart line mutation.
type LineChange struct {
	Item             models.CartItem
	PreviousQuantity int
	StockLeft        int
}

func findOpenCart(tx *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := tx.Clauses(forUpdate).
		Where("user_id = ? AND status = ?", userID, models.CartStatusOpen).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// openCartForUpdate returns the user's open cart, creating it when absent.
// A concurrent creator loses on the partial unique index and re-reads.
func openCartForUpdate(tx *gorm.DB, userID uint) (*models.Cart, error) {
	cart, err := findOpenCart(tx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.Cart{UserID: userID, Status: models.CartStatusOpen}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&created)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		return &created, nil
	}
	return findOpenCart(tx, userID)
}

// UpsertCartLine sets the line quantity for productID in the user's open
// cart to quantity and moves the difference between the old and the new
// quantity out of (or back into) product stock. Everything happens under
// row locks on the product and the line in a single transaction.
func (r *GormRepo) UpsertCartLine(ctx context.Context, userID, productID uint, quantity int) (*LineChange, error) {
	var change LineChange
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(forUpdate).First(&product, productID).Error; err != nil {
			return err
		}
		if quantity > product.Quantity {
			return fmt.Errorf("%w: requested %d, available %d", ErrNotEnoughStock, quantity, product.Quantity)
		}

		cart, err := openCartForUpdate(tx, userID)
		if err != nil {
			return err
		}

		var item models.CartItem
		err = tx.Clauses(forUpdate).
			Where("cart_id = ? AND product_id = ?", cart.ID, productID).
			First(&item).Error
		switch {
		case err == nil:
			change.PreviousQuantity = item.Quantity
			if err := tx.Model(&item).Update("quantity", quantity).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
			if err := tx.Create(&item).Error; err != nil {
				return translate(err)
			}
		default:
			return err
		}

		stock := product.Quantity + change.PreviousQuantity - quantity
		if err := tx.Model(&product).Update("quantity", stock).Error; err != nil {
			return err
		}

		item.Quantity = quantity
		change.Item = item
		change.StockLeft = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

// RemoveCartLine deletes the product's line from the open cart and returns
// its quantity to stock.
func (r *GormRepo) RemoveCartLine(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(forUpdate).First(&product, productID).Error; err != nil {
			return err
		}
		cart, err := findOpenCart(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Clauses(forUpdate).
			Where("cart_id = ? AND product_id = ?", cart.ID, productID).
			First(&item).Error; err != nil {
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		return tx.Model(&product).Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func cartTotals(tx *gorm.DB, cartID uint) (CartTotals, error) {
	var totals CartTotals
	err := tx.Model(&models.CartItem{}).
		Select("COALESCE(SUM(cart_items.quantity), 0) AS item_counts, " +
			"COALESCE(SUM(cart_items.quantity * products.price), 0) AS total_price").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Scan(&totals).Error
	return totals, err
}

func (r *GormRepo) GetOpenCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.CartStatusOpen).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) CartTotals(ctx context.Context, cartID uint) (CartTotals, error) {
	return cartTotals(r.DB.WithContext(ctx), cartID)
}

// GetUserCart finds a cart of any status, but only among the user's own.
func (r *GormRepo) GetUserCart(ctx context.Context, userID, cartID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", cartID, userID).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) CartLines(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CloseCart is the only transition of a cart to closed. It fails with
// gorm.ErrRecordNotFound when there is no open cart and ErrEmptyCart when
// the open cart has no lines.
func (r *GormRepo) CloseCart(ctx context.Context, userID uint) (*models.Cart, CartTotals, error) {
	var (
		cart   *models.Cart
		totals CartTotals
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if cart, err = findOpenCart(tx, userID); err != nil {
			return err
		}
		if totals, err = cartTotals(tx, cart.ID); err != nil {
			return err
		}
		if totals.ItemCounts == 0 {
			return ErrEmptyCart
		}
		if err := tx.Model(cart).Update("status", models.CartStatusClosed).Error; err != nil {
			return err
		}
		cart.Status = models.CartStatusClosed
		return nil
	})
	if err != nil {
		return nil, CartTotals{}, err
	}
	return cart, totals, nil
}
