package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/grocery_shop/internal/models"
)

func newCartFixture(t *testing.T, price int64, stock int) (*CartService, *recordingPublisher, *models.User, *models.Product) {
	t.Helper()
	r := newTestRepo(t)
	pub := &recordingPublisher{}
	cat := seedCategory(t, r, "Fruit")
	return &CartService{Repo: r, Events: pub}, pub, seedUser(t, r, "buyer"), seedProduct(t, r, cat.ID, "apple", price, stock)
}

func currentStock(t *testing.T, s *CartService, id uint) int {
	t.Helper()
	p, err := s.Repo.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func TestCartService_UpsertLine_ReplacementExample(t *testing.T) {
	t.Parallel()
	svc, pub, u, p := newCartFixture(t, 500, 10)
	ctx := context.Background()

	item, err := svc.UpsertLine(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, 7, currentStock(t, svc, p.ID))

	item, err = svc.UpsertLine(ctx, u.ID, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, 5, currentStock(t, svc, p.ID))

	sum, err := svc.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, CartSummary{ItemCounts: 5, TotalPrice: 2500}, sum)

	assert.Equal(t, []string{"cart_line_upserted", "cart_line_upserted"}, pub.types())
}

func TestCartService_UpsertLine_Decrease(t *testing.T) {
	t.Parallel()
	svc, _, u, p := newCartFixture(t, 100, 10)
	ctx := context.Background()

	_, err := svc.UpsertLine(ctx, u.ID, p.ID, 6)
	require.NoError(t, err)
	_, err = svc.UpsertLine(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, 8, currentStock(t, svc, p.ID))
}

func TestCartService_UpsertLine_Errors(t *testing.T) {
	t.Parallel()
	svc, pub, u, p := newCartFixture(t, 100, 4)
	ctx := context.Background()

	tests := []struct {
		name      string
		productID uint
		quantity  int
		expected  error
	}{
		{name: "zero quantity", productID: p.ID, quantity: 0, expected: ErrValidation},
		{name: "negative quantity", productID: p.ID, quantity: -2, expected: ErrValidation},
		{name: "more than stock", productID: p.ID, quantity: 5, expected: ErrValidation},
		{name: "missing product id", productID: 0, quantity: 1, expected: ErrValidation},
		{name: "unknown product", productID: 777, quantity: 1, expected: ErrNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			item, err := svc.UpsertLine(ctx, u.ID, tt.productID, tt.quantity)
			require.Error(t, err)
			assert.Nil(t, item)
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	assert.Equal(t, 4, currentStock(t, svc, p.ID))
	assert.Empty(t, pub.types())
}

// Stock already reserved by the line is not counted as available, so a
// replacement quantity must fit in what the product has left.
func TestCartService_UpsertLine_ChecksCurrentStock(t *testing.T) {
	t.Parallel()
	svc, _, u, p := newCartFixture(t, 100, 10)
	ctx := context.Background()

	_, err := svc.UpsertLine(ctx, u.ID, p.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, currentStock(t, svc, p.ID))

	_, err = svc.UpsertLine(ctx, u.ID, p.ID, 5)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 4, currentStock(t, svc, p.ID))

	item, err := svc.UpsertLine(ctx, u.ID, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)
	assert.Equal(t, 6, currentStock(t, svc, p.ID))
}

func TestCartService_UpsertLine_ConcurrentKeepsStockConsistent(t *testing.T) {
	t.Parallel()
	svc, _, u, p := newCartFixture(t, 100, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for q := 1; q <= 8; q++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			_, _ = svc.UpsertLine(ctx, u.ID, p.ID, q)
		}(q)
	}
	wg.Wait()

	cart, err := svc.Repo.GetOpenCart(ctx, u.ID)
	require.NoError(t, err)
	lines, err := svc.Repo.CartLines(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, 50, currentStock(t, svc, p.ID)+lines[0].Quantity)

	var carts int64
	require.NoError(t, svc.Repo.DB.Model(&models.Cart{}).Count(&carts).Error)
	assert.EqualValues(t, 1, carts)
}

func TestCartService_Summary_NoOpenCart(t *testing.T) {
	t.Parallel()
	svc, _, u, _ := newCartFixture(t, 100, 1)

	sum, err := svc.Summary(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, CartSummary{}, sum)
}

func TestCartService_Summary_UsesCurrentPrice(t *testing.T) {
	t.Parallel()
	svc, _, u, p := newCartFixture(t, 100, 10)
	ctx := context.Background()

	_, err := svc.UpsertLine(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Repo.DB.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", 150).Error)

	sum, err := svc.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 300, sum.TotalPrice)
}

func TestCartService_Lines(t *testing.T) {
	t.Parallel()
	svc, _, u, p := newCartFixture(t, 120, 10)
	ctx := context.Background()

	other := seedProduct(t, svc.Repo, p.CategoryID, "pear", 30, 10)
	stranger := seedUser(t, svc.Repo, "stranger")

	item, err := svc.UpsertLine(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	_, err = svc.UpsertLine(ctx, u.ID, other.ID, 3)
	require.NoError(t, err)

	lines, err := svc.Lines(ctx, u.ID, item.CartID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.EqualValues(t, 240, lines[0].TotalPrice)
	require.NotNil(t, lines[0].Product)
	assert.Equal(t, "apple", lines[0].Product.Title)
	assert.EqualValues(t, 90, lines[1].TotalPrice)

	_, err = svc.Lines(ctx, stranger.ID, item.CartID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Lines(ctx, u.ID, 4040)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_Checkout(t *testing.T) {
	t.Parallel()
	svc, pub, u, p := newCartFixture(t, 200, 10)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := svc.UpsertLine(ctx, u.ID, p.ID, 4)
	require.NoError(t, err)

	out, err := svc.Checkout(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CartStatusClosed, out.Cart.Status)
	assert.Equal(t, first.CartID, out.Cart.ID)
	assert.Equal(t, CartSummary{ItemCounts: 4, TotalPrice: 800}, out.CartSummary)

	sum, err := svc.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, CartSummary{}, sum)
	assert.Equal(t, 6, currentStock(t, svc, p.ID))

	// closed carts stay readable by their owner
	lines, err := svc.Lines(ctx, u.ID, first.CartID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	next, err := svc.UpsertLine(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)
	assert.NotEqual(t, first.CartID, next.CartID)

	assert.Contains(t, pub.types(), "cart_checked_out")
}

func TestCartService_Checkout_EmptyCart(t *testing.T) {
	t.Parallel()
	svc, _, u, p := newCartFixture(t, 200, 10)
	ctx := context.Background()

	_, err := svc.UpsertLine(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)
	_, err = svc.RemoveLine(ctx, u.ID, p.ID)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCartService_RemoveLine(t *testing.T) {
	t.Parallel()
	svc, _, u, p := newCartFixture(t, 200, 10)
	ctx := context.Background()

	_, err := svc.RemoveLine(ctx, u.ID, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpsertLine(ctx, u.ID, p.ID, 7)
	require.NoError(t, err)

	item, err := svc.RemoveLine(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, item.Quantity)
	assert.Equal(t, 10, currentStock(t, svc, p.ID))
}

func TestCartService_PublishFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()
	svc, pub, u, p := newCartFixture(t, 200, 10)
	pub.err = assert.AnError

	_, err := svc.UpsertLine(context.Background(), u.ID, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, currentStock(t, svc, p.ID))
}
