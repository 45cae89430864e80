package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/models"
)

var ErrTokenRevoked = errors.New("refresh token expired or revoked")

func (r *GormRepo) SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return translate(r.DB.WithContext(ctx).Create(t).Error)
}

func usableRefresh(tx *gorm.DB, jti, tokenHash string) (*models.RefreshToken, error) {
	var stored models.RefreshToken
	if err := tx.Clauses(forUpdate).
		Where("jti = ? AND token_hash = ?", jti, tokenHash).
		First(&stored).Error; err != nil {
		return nil, err
	}
	if stored.Revoked || stored.ExpiresAt < time.Now().Unix() {
		return nil, ErrTokenRevoked
	}
	return &stored, nil
}

// RotateRefreshToken revokes the presented token and stores its successor
// in one transaction, so a refresh token can be exchanged only once.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, oldHash string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stored, err := usableRefresh(tx, oldJTI, oldHash)
		if err != nil {
			return err
		}
		if stored.UserID != next.UserID {
			return ErrTokenRevoked
		}
		if err := tx.Model(stored).Update("revoked", true).Error; err != nil {
			return err
		}
		return translate(tx.Create(next).Error)
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, jti, tokenHash string) error {
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("jti = ? AND token_hash = ? AND revoked = ?", jti, tokenHash, false).
		Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
