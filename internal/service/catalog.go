package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
)

type CategoryCache interface {
	GetCategories(ctx context.Context) ([]models.Category, bool, error)
	SetCategories(ctx context.Context, items []models.Category) error
	InvalidateCategories(ctx context.Context) error
}

type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []uint, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Cache  CategoryCache
	Index  ProductIndex
	Events EventPublisher
}

type ProductView struct {
	models.Product
	IsUserFavorite bool
}

type NewProduct struct {
	Title       string
	Slug        string
	Description string
	Image       string
	Price       int64
	Unit        models.Unit
	Quantity    int
	CategoryID  uint
}

func validateFilter(f repo.ProductFilter) error {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return fmt.Errorf("%w: min_price must not be negative", ErrValidation)
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return fmt.Errorf("%w: max_price must not be negative", ErrValidation)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("%w: min_price must not exceed max_price", ErrValidation)
	}
	switch f.Ordering {
	case "", repo.OrderPriceAsc, repo.OrderPriceDesc:
	default:
		return fmt.Errorf("%w: ordering must be %q or %q", ErrValidation, repo.OrderPriceAsc, repo.OrderPriceDesc)
	}
	return nil
}

// decorate marks the caller's favorites. userID 0 is an anonymous caller.
func (s *CatalogService) decorate(ctx context.Context, userID uint, items []models.Product) ([]ProductView, error) {
	ids := make([]uint, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	favs, err := s.Repo.FavoriteSet(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ProductView, 0, len(items))
	for _, p := range items {
		out = append(out, ProductView{Product: p, IsUserFavorite: favs[p.ID]})
	}
	return out, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, userID uint, f repo.ProductFilter, offset, limit int) (int64, []ProductView, error) {
	if err := validateFilter(f); err != nil {
		return 0, nil, err
	}
	total, items, err := s.Repo.ListProducts(ctx, f, offset, limit)
	if err != nil {
		return 0, nil, err
	}
	views, err := s.decorate(ctx, userID, items)
	if err != nil {
		return 0, nil, err
	}
	return total, views, nil
}

func (s *CatalogService) ListFavorites(ctx context.Context, userID uint, f repo.ProductFilter, offset, limit int) (int64, []ProductView, error) {
	if userID == 0 {
		return 0, nil, ErrUnauthorized
	}
	f.FavoritesOf = userID
	return s.ListProducts(ctx, userID, f, offset, limit)
}

func (s *CatalogService) GetProduct(ctx context.Context, userID, id uint) (*ProductView, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	views, err := s.decorate(ctx, userID, []models.Product{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// SearchProducts ranks with the search index when one is configured and
// falls back to the database text filter otherwise.
func (s *CatalogService) SearchProducts(ctx context.Context, userID uint, query string, offset, limit int) (int64, []ProductView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: q is required", ErrValidation)
	}
	if s.Index == nil {
		return s.ListProducts(ctx, userID, repo.ProductFilter{Search: query}, offset, limit)
	}

	total, ids, err := s.Index.SearchProducts(ctx, query, offset, limit)
	if err != nil {
		return 0, nil, err
	}
	found, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return 0, nil, err
	}

	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	ranked := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ranked = append(ranked, p)
		}
	}

	views, err := s.decorate(ctx, userID, ranked)
	if err != nil {
		return 0, nil, err
	}
	return total, views, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in NewProduct) (*models.Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Price < 0 || in.Quantity < 0 {
		return nil, fmt.Errorf("%w: price and quantity must not be negative", ErrValidation)
	}
	switch in.Unit {
	case models.UnitKilogram, models.UnitHalfKilogram, models.UnitPiece:
	default:
		return nil, fmt.Errorf("%w: unknown unit %q", ErrValidation, in.Unit)
	}
	if _, err := s.Repo.GetCategory(ctx, in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d does not exist", ErrValidation, in.CategoryID)
		}
		return nil, err
	}

	productSlug := slug.Make(in.Slug)
	if productSlug == "" {
		productSlug = slug.Make(title)
	}

	p := models.Product{
		Title:       title,
		Slug:        productSlug,
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price,
		Unit:        in.Unit,
		Quantity:    in.Quantity,
		CategoryID:  in.CategoryID,
	}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: product with this title and slug already exists", ErrConflict)
		}
		return nil, err
	}

	s.reindex(ctx, p)
	publish(ctx, s.Events, TopicProductEvents, p.ID, "product_created", map[string]any{
		"product_id": p.ID,
		"quantity":   p.Quantity,
		"price":      p.Price,
	})
	return &p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_delete_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, TopicProductEvents, id, "product_deleted", map[string]any{"product_id": id})
	return nil
}

// ZeroOutStock marks the given products as sold out.
func (s *CatalogService) ZeroOutStock(ctx context.Context, userID uint, ids []uint) ([]ProductView, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: product_ids must not be empty", ErrValidation)
	}
	items, err := s.Repo.ZeroOutStock(ctx, ids)
	if err != nil {
		return nil, err
	}

	updated := make([]uint, 0, len(items))
	for _, p := range items {
		s.reindex(ctx, p)
		updated = append(updated, p.ID)
	}
	publish(ctx, s.Events, TopicProductEvents, 0, "stock_zeroed", map[string]any{"product_ids": updated})
	return s.decorate(ctx, userID, items)
}

func (s *CatalogService) reindex(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.categories")

	if s.Cache != nil {
		items, ok, err := s.Cache.GetCategories(ctx)
		if err != nil {
			l.Warn("category_cache_read_failed", "error", err)
		} else if ok {
			return items, nil
		}
	}

	items, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.SetCategories(ctx, items); err != nil {
			l.Warn("category_cache_write_failed", "error", err)
		}
	}
	return items, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, title, icon, description string) (*models.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	c := models.Category{Title: title, Icon: icon, Description: description}
	if err := s.Repo.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.InvalidateCategories(ctx); err != nil {
			logging.FromContext(ctx).Warn("category_cache_invalidate_failed", "error", err)
		}
	}
	return &c, nil
}
