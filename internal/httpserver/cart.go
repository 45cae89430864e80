package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	middleware "github.com/Skotchmaster/grocery_shop/pkg/middleware/auth"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) UpsertLine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.upsert_line")

	var req transport.CartLineRequest
	if err := bindRequest(c, &req); err != nil {
		l.Warn("cart_upsert_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	item, err := h.Svc.UpsertLine(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "cart_upsert_error", err)
	}

	l.Info("cart_upsert_success", "cart_id", item.CartID, "product_id", item.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, transport.NewCartLineResponse(item))
}

func (h *CartHTTP) Summary(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.summary")

	userID, _ := middleware.UserID(c)
	sum, err := h.Svc.Summary(ctx, userID)
	if err != nil {
		return fail(l, "cart_summary_error", err)
	}
	return c.JSON(http.StatusOK, transport.CartSummaryResponse{ItemCounts: sum.ItemCounts, TotalPrice: sum.TotalPrice})
}

func (h *CartHTTP) Lines(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.lines")

	cartID, err := parseID(c, "cart_id")
	if err != nil {
		l.Warn("cart_lines_error", "status", 400, "reason", "invalid cart id", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	lines, err := h.Svc.Lines(ctx, userID, cartID)
	if err != nil {
		return fail(l, "cart_lines_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartLineDetails(lines))
}

func (h *CartHTTP) RemoveLine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_line")

	productID, err := parseID(c, "product_id")
	if err != nil {
		l.Warn("cart_remove_error", "status", 400, "reason", "invalid product id", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	if _, err := h.Svc.RemoveLine(ctx, userID, productID); err != nil {
		return fail(l, "cart_remove_error", err)
	}

	l.Info("cart_remove_success", "product_id", productID)
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	userID, _ := middleware.UserID(c)
	out, err := h.Svc.Checkout(ctx, userID)
	if err != nil {
		return fail(l, "cart_checkout_error", err)
	}

	l.Info("cart_checkout_success", "cart_id", out.Cart.ID, "total_price", out.TotalPrice)
	return c.JSON(http.StatusOK, transport.CheckoutResponse{
		CartID:     out.Cart.ID,
		Status:     string(out.Cart.Status),
		ItemCounts: out.ItemCounts,
		TotalPrice: out.TotalPrice,
	})
}
