package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	middleware "github.com/Skotchmaster/grocery_shop/pkg/middleware/auth"
)

type FavoriteHTTP struct {
	Svc *service.FavoriteService
}

func (h *FavoriteHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "favorite.add")

	productID, err := parseID(c, "product_id")
	if err != nil {
		l.Warn("favorite_add_error", "status", 400, "reason", "invalid product id", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	if err := h.Svc.Add(ctx, userID, productID); err != nil {
		// an already favorited product is reported as a bad request
		if errors.Is(err, service.ErrConflict) {
			return failWith(l, "favorite_add_error", http.StatusBadRequest, err)
		}
		return fail(l, "favorite_add_error", err)
	}

	l.Info("favorite_add_success", "product_id", productID)
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "OK"})
}

func (h *FavoriteHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "favorite.remove")

	productID, err := parseID(c, "product_id")
	if err != nil {
		l.Warn("favorite_remove_error", "status", 400, "reason", "invalid product id", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	if err := h.Svc.Remove(ctx, userID, productID); err != nil {
		return fail(l, "favorite_remove_error", err)
	}

	l.Info("favorite_remove_success", "product_id", productID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "OK"})
}
