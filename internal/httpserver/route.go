package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	middleware "github.com/Skotchmaster/grocery_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/grocery_shop/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/grocery_shop/pkg/middleware/logging"
)

type Deps struct {
	AuthHandler     *AuthHTTP
	CatalogHandler  *CatalogHTTP
	FavoriteHandler *FavoriteHTTP
	CartHandler     *CartHTTP
	CommentHandler  *CommentHTTP
	JWTSecret       []byte
	// Ready reports whether the storage behind the API is reachable.
	Ready func(ctx context.Context) error
}

// NewEcho builds the server with the middleware chain every route shares.
// secureCookies marks the CSRF cookie Secure for HTTPS deployments.
func NewEcho(logger *slog.Logger, secureCookies bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(csrf.Middleware(secureCookies))
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	auth := middleware.NewJWTAuth(d.JWTSecret)

	e.POST("/signup", d.AuthHandler.SignUp)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/token/refresh", d.AuthHandler.Refresh)
	e.POST("/logout", d.AuthHandler.LogOut, auth.RequireAuth)

	profile := e.Group("/profile", auth.RequireAuth)
	profile.GET("", d.AuthHandler.GetProfile)
	profile.PUT("", d.AuthHandler.UpdateProfile)

	e.GET("/categories", d.CatalogHandler.ListCategories)

	products := e.Group("/products")
	products.GET("", d.CatalogHandler.ListProducts, auth.OptionalAuth)
	products.GET("/search", d.CatalogHandler.SearchProducts, auth.OptionalAuth)
	products.GET("/:product_id", d.CatalogHandler.GetProduct, auth.OptionalAuth)

	favorites := products.Group("/favorites", auth.RequireAuth)
	favorites.GET("", d.CatalogHandler.ListFavorites)
	favorites.POST("/:product_id", d.FavoriteHandler.Add)
	favorites.DELETE("/:product_id", d.FavoriteHandler.Remove)

	cart := products.Group("/cart", auth.RequireAuth)
	cart.GET("", d.CartHandler.Summary)
	cart.PUT("", d.CartHandler.UpsertLine)
	cart.POST("/checkout", d.CartHandler.Checkout)
	cart.GET("/:cart_id", d.CartHandler.Lines)
	cart.DELETE("/items/:product_id", d.CartHandler.RemoveLine)

	products.POST("/:product_id/comment", d.CommentHandler.Create, auth.RequireAuth)
	products.DELETE("/:product_id/comment", d.CommentHandler.Delete, auth.RequireAuth)

	admin := e.Group("/admin", auth.RequireAdmin)
	admin.PUT("/product", d.CatalogHandler.ZeroOutStock)
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.DELETE("/products/:product_id", d.CatalogHandler.DeleteProduct)
	admin.POST("/categories", d.CatalogHandler.CreateCategory)
}
