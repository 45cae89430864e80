package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
	"github.com/Skotchmaster/grocery_shop/internal/util"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	middleware "github.com/Skotchmaster/grocery_shop/pkg/middleware/auth"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

type pageQuery struct {
	page, size    int
	offset, limit int
}

func parsePageQuery(c echo.Context) (pageQuery, error) {
	page, size, err := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	if err != nil {
		return pageQuery{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	offset, limit := util.Calculate(page, size)
	return pageQuery{page: page, size: size, offset: offset, limit: limit}, nil
}

func parseProductFilter(c echo.Context) (repo.ProductFilter, error) {
	var f repo.ProductFilter
	var err error

	if f.MinPrice, err = parseOptionalInt(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parseOptionalInt(c, "max_price"); err != nil {
		return f, err
	}
	categoryID, err := parseOptionalInt(c, "category_id")
	if err != nil {
		return f, err
	}
	if categoryID != nil {
		if *categoryID < 1 {
			return f, echo.NewHTTPError(http.StatusBadRequest, "category_id must be a positive integer")
		}
		id := uint(*categoryID)
		f.CategoryID = &id
	}
	f.Search = strings.TrimSpace(c.QueryParam("search"))
	f.Ordering = c.QueryParam("ordering")
	return f, nil
}

func productPage(views []service.ProductView, pq pageQuery, total int64) transport.ProductPage {
	return transport.ProductPage{
		Data: transport.NewProductResponses(views),
		Meta: transport.NewPageMeta(pq.page, pq.size, total),
	}
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_categories")

	items, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCategoryResponses(items))
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	f, err := parseProductFilter(c)
	if err != nil {
		l.Warn("list_products_error", "status", 400, "reason", "invalid query", "error", err)
		return err
	}
	pq, err := parsePageQuery(c)
	if err != nil {
		l.Warn("list_products_error", "status", 400, "reason", "invalid page", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	total, views, err := h.Svc.ListProducts(ctx, userID, f, pq.offset, pq.limit)
	if err != nil {
		return fail(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, productPage(views, pq, total))
}

func (h *CatalogHTTP) ListFavorites(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_favorites")

	f, err := parseProductFilter(c)
	if err != nil {
		l.Warn("list_favorites_error", "status", 400, "reason", "invalid query", "error", err)
		return err
	}
	pq, err := parsePageQuery(c)
	if err != nil {
		l.Warn("list_favorites_error", "status", 400, "reason", "invalid page", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	total, views, err := h.Svc.ListFavorites(ctx, userID, f, pq.offset, pq.limit)
	if err != nil {
		return fail(l, "list_favorites_error", err)
	}
	return c.JSON(http.StatusOK, productPage(views, pq, total))
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := parseID(c, "product_id")
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "invalid product id", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	view, err := h.Svc.GetProduct(ctx, userID, id)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewProductDetailResponse(view.Product, view.IsUserFavorite))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	pq, err := parsePageQuery(c)
	if err != nil {
		l.Warn("search_products_error", "status", 400, "reason", "invalid page", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	total, views, err := h.Svc.SearchProducts(ctx, userID, c.QueryParam("q"), pq.offset, pq.limit)
	if err != nil {
		return fail(l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, productPage(views, pq, total))
}

func (h *CatalogHTTP) ZeroOutStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.zero_out_stock")

	var req transport.ZeroOutRequest
	if err := bindRequest(c, &req); err != nil {
		l.Warn("zero_out_stock_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	views, err := h.Svc.ZeroOutStock(ctx, userID, req.ProductIDs)
	if err != nil {
		return fail(l, "zero_out_stock_error", err)
	}

	out := make([]transport.ProductDetailResponse, 0, len(views))
	for _, v := range views {
		out = append(out, transport.NewProductDetailResponse(v.Product, v.IsUserFavorite))
	}
	l.Info("zero_out_stock_success", "updated", len(views))
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	var req transport.CreateProductRequest
	if err := bindRequest(c, &req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	p, err := h.Svc.CreateProduct(ctx, service.NewProduct{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
		Unit:        models.Unit(req.Unit),
		Quantity:    req.Quantity,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return fail(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, transport.NewProductDetailResponse(*p, false))
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	id, err := parseID(c, "product_id")
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "invalid product id", "error", err)
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_category")

	var req transport.CreateCategoryRequest
	if err := bindRequest(c, &req); err != nil {
		l.Warn("category_create_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	cat, err := h.Svc.CreateCategory(ctx, req.Title, req.Icon, req.Description)
	if err != nil {
		return fail(l, "category_create_error", err)
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, transport.CategoryResponse{ID: cat.ID, Title: cat.Title, Icon: cat.Icon})
}
