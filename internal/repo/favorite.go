package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/models"
)

func (r *GormRepo) IsFavorite(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.FavoriteProduct{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FavoriteSet reports which of productIDs the user has marked as favorite.
func (r *GormRepo) FavoriteSet(ctx context.Context, userID uint, productIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool, len(productIDs))
	if userID == 0 || len(productIDs) == 0 {
		return set, nil
	}
	var ids []uint
	if err := r.DB.WithContext(ctx).Model(&models.FavoriteProduct{}).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *GormRepo) AddFavorite(ctx context.Context, userID, productID uint) error {
	fav := models.FavoriteProduct{UserID: userID, ProductID: productID}
	return translate(r.DB.WithContext(ctx).Create(&fav).Error)
}

func (r *GormRepo) RemoveFavorite(ctx context.Context, userID, productID uint) error {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.FavoriteProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
