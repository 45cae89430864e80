package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/pkg/db"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	"github.com/Skotchmaster/grocery_shop/pkg/tokens"
)

var (
	testAccessSecret  = []byte("test-access-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

type testEnv struct {
	E    *echo.Echo
	Repo *repo.GormRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, repo.AutoMigrate(gdb))

	r := repo.New(gdb)
	e := NewEcho(logging.New("error"), false)
	Register(e, &Deps{
		AuthHandler: &AuthHTTP{Svc: &service.AuthService{
			Repo:          r,
			JWTSecret:     testAccessSecret,
			RefreshSecret: testRefreshSecret,
		}},
		CatalogHandler:  &CatalogHTTP{Svc: &service.CatalogService{Repo: r}},
		FavoriteHandler: &FavoriteHTTP{Svc: &service.FavoriteService{Repo: r}},
		CartHandler:     &CartHTTP{Svc: &service.CartService{Repo: r}},
		CommentHandler:  &CommentHTTP{Svc: &service.CommentService{Repo: r}},
		JWTSecret:       testAccessSecret,
		Ready:           func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	})

	return &testEnv{E: e, Repo: r}
}

// do sends a request through the full router. body may be nil, a string or
// any JSON-encodable value.
func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) user(t *testing.T, username, role string) (*models.User, string) {
	t.Helper()

	u := &models.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, env.Repo.CreateUser(context.Background(), u))

	token, err := tokens.NewAccessToken(testAccessSecret, strconv.FormatUint(uint64(u.ID), 10), role, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return u, token
}

func (env *testEnv) category(t *testing.T, title string) *models.Category {
	t.Helper()
	c := &models.Category{Title: title}
	require.NoError(t, env.Repo.CreateCategory(context.Background(), c))
	return c
}

func (env *testEnv) product(t *testing.T, categoryID uint, title string, price int64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Title:      title,
		Slug:       title,
		Price:      price,
		Unit:       models.UnitPiece,
		Quantity:   stock,
		CategoryID: categoryID,
	}
	require.NoError(t, env.Repo.CreateProduct(context.Background(), p))
	return p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func withID(prefix string, id uint) string {
	return prefix + strconv.FormatUint(uint64(id), 10)
}
