package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/service"
)

type SignUpRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email"    validate:"omitempty,email,max=254"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest may be empty when the refresh token comes in a cookie.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type UpdateProfileRequest struct {
	Email     *string `json:"email"      validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=150"`
}

type CartLineRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"   validate:"required,min=1"`
}

type CommentRequest struct {
	Rate    *int   `json:"rate"    validate:"required,min=0,max=5"`
	Content string `json:"content" validate:"required"`
}

type ZeroOutRequest struct {
	ProductIDs []uint `json:"product_ids" validate:"required,min=1,dive,required"`
}

type CreateProductRequest struct {
	Title       string `json:"title"       validate:"required,max=128"`
	Slug        string `json:"slug"        validate:"omitempty,max=128"`
	Description string `json:"description"`
	Image       string `json:"image"       validate:"omitempty,max=255"`
	Price       int64  `json:"price"       validate:"min=0"`
	Unit        string `json:"unit"        validate:"required,oneof=1kg 0.5kg 1"`
	Quantity    int    `json:"quantity"    validate:"min=0"`
	CategoryID  uint   `json:"category_id" validate:"required"`
}

type CreateCategoryRequest struct {
	Title       string `json:"title"       validate:"required,max=128"`
	Icon        string `json:"icon"        validate:"omitempty,max=255"`
	Description string `json:"description"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ProfileResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type CategoryResponse struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// ProductResponse is the list shape; the description is left out.
type ProductResponse struct {
	ID             uint            `json:"id"`
	Title          string          `json:"title"`
	Slug           string          `json:"slug"`
	Image          string          `json:"image"`
	Price          int64           `json:"price"`
	Unit           string          `json:"unit"`
	Quantity       int             `json:"quantity"`
	Rate           int             `json:"rate"`
	RateCount      int             `json:"rate_count"`
	AverageRate    decimal.Decimal `json:"average_rate"`
	CategoryID     uint            `json:"category_id"`
	IsUserFavorite bool            `json:"is_user_favorite"`
}

type ProductDetailResponse struct {
	ProductResponse
	Description string `json:"description"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type ProductPage struct {
	Data []ProductResponse `json:"data"`
	Meta PageMeta          `json:"meta"`
}

type CartLineResponse struct {
	ID        uint `json:"id"`
	CartID    uint `json:"cart_id"`
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CartSummaryResponse struct {
	ItemCounts int64 `json:"item_counts"`
	TotalPrice int64 `json:"total_price"`
}

type CartLineDetail struct {
	ID         uint                  `json:"id"`
	Quantity   int                   `json:"quantity"`
	TotalPrice int64                 `json:"total_price"`
	Product    ProductDetailResponse `json:"product"`
}

type CheckoutResponse struct {
	CartID     uint   `json:"cart_id"`
	Status     string `json:"status"`
	ItemCounts int64  `json:"item_counts"`
	TotalPrice int64  `json:"total_price"`
}

type CommentResponse struct {
	ID        uint      `json:"id"`
	ProductID uint      `json:"product_id"`
	UserID    uint      `json:"user_id"`
	Rate      int       `json:"rate"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func NewProfileResponse(u *models.User) ProfileResponse {
	return ProfileResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func NewCategoryResponses(items []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(items))
	for _, c := range items {
		out = append(out, CategoryResponse{ID: c.ID, Title: c.Title, Icon: c.Icon})
	}
	return out
}

func NewProductResponse(p models.Product, favorite bool) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Title:          p.Title,
		Slug:           p.Slug,
		Image:          p.Image,
		Price:          p.Price,
		Unit:           string(p.Unit),
		Quantity:       p.Quantity,
		Rate:           p.Rate,
		RateCount:      p.RateCount,
		AverageRate:    p.AverageRate(),
		CategoryID:     p.CategoryID,
		IsUserFavorite: favorite,
	}
}

func NewProductDetailResponse(p models.Product, favorite bool) ProductDetailResponse {
	return ProductDetailResponse{
		ProductResponse: NewProductResponse(p, favorite),
		Description:     p.Description,
	}
}

func NewProductResponses(views []service.ProductView) []ProductResponse {
	out := make([]ProductResponse, 0, len(views))
	for _, v := range views {
		out = append(out, NewProductResponse(v.Product, v.IsUserFavorite))
	}
	return out
}

func NewPageMeta(page, size int, total int64) PageMeta {
	var pages int64
	if size > 0 {
		pages = (total + int64(size) - 1) / int64(size)
	}
	return PageMeta{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    int64(page) < pages,
	}
}

func NewCartLineResponse(it *models.CartItem) CartLineResponse {
	return CartLineResponse{ID: it.ID, CartID: it.CartID, ProductID: it.ProductID, Quantity: it.Quantity}
}

func NewCartLineDetails(lines []service.CartLine) []CartLineDetail {
	out := make([]CartLineDetail, 0, len(lines))
	for _, l := range lines {
		d := CartLineDetail{ID: l.ID, Quantity: l.Quantity, TotalPrice: l.TotalPrice}
		if l.Product != nil {
			d.Product = NewProductDetailResponse(*l.Product, false)
		}
		out = append(out, d)
	}
	return out
}

func NewCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		ProductID: c.ProductID,
		UserID:    c.UserID,
		Rate:      c.Rate,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}
