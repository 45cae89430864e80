package httpserver

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/grocery_shop/internal/transport"
)

func TestCart_UpsertSummaryLinesCheckout(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "alice", "user")
	cat := env.category(t, "fruit")
	p := env.product(t, cat.ID, "apple", 500, 10)

	rec := env.do(t, http.MethodPut, "/products/cart", transport.CartLineRequest{ProductID: p.ID, Quantity: 3}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	line := decode[transport.CartLineResponse](t, rec)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, p.ID, line.ProductID)

	rec = env.do(t, http.MethodPut, "/products/cart", transport.CartLineRequest{ProductID: p.ID, Quantity: 5}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decode[transport.CartLineResponse](t, rec).Quantity)

	stored, err := env.Repo.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Quantity)

	rec = env.do(t, http.MethodGet, "/products/cart", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, transport.CartSummaryResponse{ItemCounts: 5, TotalPrice: 2500}, decode[transport.CartSummaryResponse](t, rec))

	rec = env.do(t, http.MethodGet, withID("/products/cart/", line.CartID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	lines := decode[[]transport.CartLineDetail](t, rec)
	require.Len(t, lines, 1)
	assert.EqualValues(t, 2500, lines[0].TotalPrice)
	assert.Equal(t, "apple", lines[0].Product.Title)

	rec = env.do(t, http.MethodPost, "/products/cart/checkout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, transport.CheckoutResponse{CartID: line.CartID, Status: "closed", ItemCounts: 5, TotalPrice: 2500},
		decode[transport.CheckoutResponse](t, rec))

	rec = env.do(t, http.MethodPost, "/products/cart/checkout", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/products/cart", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, transport.CartSummaryResponse{}, decode[transport.CartSummaryResponse](t, rec))
}

func TestCart_Errors(t *testing.T) {
	env := newTestEnv(t)
	_, alice := env.user(t, "alice", "user")
	_, bob := env.user(t, "bob", "user")
	cat := env.category(t, "fruit")
	p := env.product(t, cat.ID, "apple", 500, 2)

	assert.Equal(t, http.StatusUnauthorized,
		env.do(t, http.MethodPut, "/products/cart", transport.CartLineRequest{ProductID: p.ID, Quantity: 1}, "").Code)

	rec := env.do(t, http.MethodPut, "/products/cart", map[string]any{"product_id": p.ID, "quantity": 0}, alice)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[struct {
		Errors map[string]string `json:"errors"`
	}](t, rec)
	assert.Contains(t, body.Errors, "quantity")

	rec = env.do(t, http.MethodPut, "/products/cart", transport.CartLineRequest{ProductID: p.ID, Quantity: 3}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/products/cart", transport.CartLineRequest{ProductID: 999, Quantity: 1}, alice)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/products/cart", transport.CartLineRequest{ProductID: p.ID, Quantity: 1}, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	cartID := decode[transport.CartLineResponse](t, rec).CartID

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, withID("/products/cart/", cartID), nil, bob).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/products/cart/checkout", nil, bob).Code)
}

func TestCart_RemoveLine(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "alice", "user")
	cat := env.category(t, "fruit")
	p := env.product(t, cat.ID, "apple", 500, 10)

	rec := env.do(t, http.MethodPut, "/products/cart", transport.CartLineRequest{ProductID: p.ID, Quantity: 4}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, withID("/products/cart/items/", p.ID), nil, token).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, withID("/products/cart/items/", p.ID), nil, token).Code)

	stored, err := env.Repo.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Quantity)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/products/cart/checkout", nil, token).Code)
}
