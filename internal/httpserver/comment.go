package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	middleware "github.com/Skotchmaster/grocery_shop/pkg/middleware/auth"
)

type CommentHTTP struct {
	Svc *service.CommentService
}

func (h *CommentHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.create")

	productID, err := parseID(c, "product_id")
	if err != nil {
		l.Warn("comment_create_error", "status", 400, "reason", "invalid product id", "error", err)
		return err
	}

	var req transport.CommentRequest
	if err := bindRequest(c, &req); err != nil {
		l.Warn("comment_create_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	comment, err := h.Svc.Create(ctx, userID, productID, *req.Rate, req.Content)
	if err != nil {
		return fail(l, "comment_create_error", err)
	}

	l.Info("comment_create_success", "product_id", productID, "comment_id", comment.ID)
	return c.JSON(http.StatusCreated, transport.NewCommentResponse(comment))
}

func (h *CommentHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.delete")

	productID, err := parseID(c, "product_id")
	if err != nil {
		l.Warn("comment_delete_error", "status", 400, "reason", "invalid product id", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	if err := h.Svc.Delete(ctx, userID, productID); err != nil {
		return fail(l, "comment_delete_error", err)
	}

	l.Info("comment_delete_success", "product_id", productID)
	return c.NoContent(http.StatusNoContent)
}
