package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254;not null;default:''" json:"email"`
	FirstName    string    `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName     string    `gorm:"size:150;not null;default:''" json:"last_name"`
	PasswordHash string    `gorm:"not null"                   json:"-"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"date_joined"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"                 json:"id"`
	JTI       string `gorm:"size:64;uniqueIndex;not null" json:"jti"`
	TokenHash string `gorm:"size:64;uniqueIndex;not null" json:"-"`
	UserID    uint   `gorm:"index;not null"             json:"user_id"`
	User      *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ExpiresAt int64  `gorm:"not null"                   json:"expires_at"`
	Revoked   bool   `gorm:"not null;default:false"     json:"revoked"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"size:128;not null"        json:"title"`
	Icon        string `gorm:"size:255;not null;default:''" json:"icon"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
}

type Unit string

const (
	UnitKilogram     Unit = "1kg"
	UnitHalfKilogram Unit = "0.5kg"
	UnitPiece        Unit = "1"
)

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"                                  json:"id"`
	Title       string    `gorm:"size:128;not null;uniqueIndex:idx_product_title_slug"      json:"title"`
	Slug        string    `gorm:"size:128;not null;uniqueIndex:idx_product_title_slug"      json:"slug"`
	Description string    `gorm:"type:text;not null;default:''"                             json:"description"`
	Image       string    `gorm:"size:255;not null;default:''"                              json:"image"`
	Price       int64     `gorm:"not null;default:0;check:price >= 0"                       json:"price"`
	Unit        Unit      `gorm:"size:8;not null"                                           json:"unit"`
	Quantity    int       `gorm:"not null;default:0;check:quantity >= 0"                    json:"quantity"`
	Rate        int       `gorm:"not null;default:0"                                        json:"rate"`
	RateCount   int       `gorm:"not null;default:0"                                        json:"rate_count"`
	CategoryID  uint      `gorm:"not null;index"                                            json:"category_id"`
	Category    *Category `gorm:"constraint:OnDelete:CASCADE"                               json:"-"`
}

// AverageRate is the mean comment rate rounded to one decimal.
func (p Product) AverageRate() decimal.Decimal {
	if p.RateCount <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(p.Rate)).
		Div(decimal.NewFromInt(int64(p.RateCount))).
		Round(1)
}

type CartStatus string

const (
	CartStatusOpen   CartStatus = "open"
	CartStatusClosed CartStatus = "closed"
)

// Cart: a user has at most one open cart, enforced by a partial unique index.
type Cart struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"                                         json:"id"`
	UserID    uint       `gorm:"not null;index;uniqueIndex:idx_open_cart_per_user,where:status = 'open'" json:"user_id"`
	User      *User      `gorm:"constraint:OnDelete:CASCADE"                                      json:"-"`
	Status    CartStatus `gorm:"size:8;not null"                                                  json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

type CartItem struct {
	ID        uint     `gorm:"primaryKey;autoIncrement"                      json:"id"`
	CartID    uint     `gorm:"not null;uniqueIndex:idx_cart_item_cart_product" json:"cart_id"`
	Cart      *Cart    `gorm:"constraint:OnDelete:CASCADE"                   json:"-"`
	ProductID uint     `gorm:"not null;uniqueIndex:idx_cart_item_cart_product;index" json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE"                   json:"product,omitempty"`
	Quantity  int      `gorm:"not null;check:quantity > 0"                   json:"quantity"`
}

// FavoriteProduct is the join row of the user <-> product favorites set.
type FavoriteProduct struct {
	UserID    uint     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User      *User    `gorm:"constraint:OnDelete:CASCADE"    json:"-"`
	ProductID uint     `gorm:"primaryKey;autoIncrement:false;index" json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE"    json:"-"`
}

func (FavoriteProduct) TableName() string { return "user_favorite_products" }

type Comment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                       json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_comment_product_user"  json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE"                    json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_product_user;index" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE"                    json:"-"`
	Rate      int       `gorm:"not null;check:rate >= 0 AND rate <= 5"         json:"rate"`
	Content   string    `gorm:"type:text;not null"                             json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&Category{},
		&Product{},
		&Cart{},
		&CartItem{},
		&FavoriteProduct{},
		&Comment{},
	}
}
