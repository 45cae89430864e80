package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/models"
)

// CreateComment inserts the comment and folds its rate into the product's
// rating aggregate. The (product, user) unique index rejects a second
// comment with ErrDuplicate.
func (r *GormRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(forUpdate).First(&product, c.ProductID).Error; err != nil {
			return err
		}
		if err := tx.Create(c).Error; err != nil {
			return translate(err)
		}
		return tx.Model(&product).Updates(map[string]any{
			"rate":       gorm.Expr("rate + ?", c.Rate),
			"rate_count": gorm.Expr("rate_count + 1"),
		}).Error
	})
}

func (r *GormRepo) DeleteComment(ctx context.Context, userID, productID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(forUpdate).First(&product, productID).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ? AND user_id = ?", productID, userID).First(&comment).Error; err != nil {
			return err
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&product).Updates(map[string]any{
			"rate":       gorm.Expr("rate - ?", comment.Rate),
			"rate_count": gorm.Expr("rate_count - 1"),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
