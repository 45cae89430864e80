package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/Skotchmaster/grocery_shop/pkg/middleware/auth"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(false))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/thing", ok)
	e.PUT("/thing", ok)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_SkipsBearerAndAnonymous(t *testing.T) {
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodPut, "/thing", nil)
	assert.Equal(t, http.StatusOK, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodPut, "/thing", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer token")
	req.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: "token"})
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestMiddleware_CookieAuthRequiresToken(t *testing.T) {
	e := newTestEcho()
	access := &http.Cookie{Name: auth.AccessCookie, Value: "token"}

	req := httptest.NewRequest(http.MethodGet, "/thing", nil)
	req.AddCookie(access)
	rec := serve(e, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var csrfCookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == CookieName {
			csrfCookie = ck
		}
	}
	require.NotNil(t, csrfCookie)
	assert.NotEmpty(t, csrfCookie.Value)

	req = httptest.NewRequest(http.MethodPut, "/thing", nil)
	req.AddCookie(access)
	req.AddCookie(csrfCookie)
	assert.NotEqual(t, http.StatusOK, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodPut, "/thing", nil)
	req.AddCookie(access)
	req.AddCookie(csrfCookie)
	req.Header.Set(HeaderName, "wrong")
	assert.Equal(t, http.StatusForbidden, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodPut, "/thing", nil)
	req.AddCookie(access)
	req.AddCookie(csrfCookie)
	req.Header.Set(HeaderName, csrfCookie.Value)
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}
