package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/models"
)

const (
	OrderPriceAsc  = "price"
	OrderPriceDesc = "-price"
)

type ProductFilter struct {
	MinPrice   *int64
	MaxPrice   *int64
	CategoryID *uint
	Search     string
	Ordering   string
	// FavoritesOf restricts the listing to one user's favorites when non-zero.
	FavoritesOf uint
}

func (r *GormRepo) applyProductFilter(q *gorm.DB, f ProductFilter) *gorm.DB {
	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}
	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where(`LOWER(products.title) LIKE ? ESCAPE '\' OR LOWER(products.slug) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if f.FavoritesOf != 0 {
		q = q.Where("products.id IN (?)",
			r.DB.Model(&models.FavoriteProduct{}).Select("product_id").Where("user_id = ?", f.FavoritesOf))
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func orderClause(ordering string) string {
	switch ordering {
	case OrderPriceAsc:
		return "products.price ASC, products.id ASC"
	case OrderPriceDesc:
		return "products.price DESC, products.id ASC"
	default:
		return "products.id ASC"
	}
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	filtered := func() *gorm.DB {
		return r.applyProductFilter(r.DB.WithContext(ctx).Model(&models.Product{}), f)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := filtered().Order(orderClause(f.Ordering)).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	items := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(r.DB.WithContext(ctx).Create(p).Error)
}

// DeleteProduct removes the product and everything that references it.
// The foreign keys cascade as well; the explicit deletes keep the behaviour
// identical on databases created without them.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(forUpdate).First(&product, id).Error; err != nil {
			return err
		}
		for _, dep := range []any{&models.CartItem{}, &models.Comment{}, &models.FavoriteProduct{}} {
			if err := tx.Where("product_id = ?", id).Delete(dep).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&product).Error
	})
}

// ZeroOutStock sets quantity to zero for every existing product in ids and
// returns those products. Unknown ids are skipped.
func (r *GormRepo) ZeroOutStock(ctx context.Context, ids []uint) ([]models.Product, error) {
	var items []models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("id IN ?", ids).Update("quantity", 0).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Order("id").Find(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var items []models.Category
	if err := r.DB.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.DB.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}
