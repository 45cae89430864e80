package csrf

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	auth "github.com/Skotchmaster/grocery_shop/pkg/middleware/auth"
)

const (
	CookieName = "XSRF-TOKEN"
	HeaderName = "X-CSRF-Token"
)

// cookieAuthenticated reports whether the browser's access cookie is what
// identifies the caller. Bearer clients are not exposed to CSRF.
func cookieAuthenticated(c echo.Context) bool {
	if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
		return false
	}
	_, err := c.Cookie(auth.AccessCookie)
	return err == nil
}

// Middleware applies double-submit CSRF checks to cookie-authenticated
// requests. Safe methods receive the token cookie; unsafe ones must echo it
// in the X-CSRF-Token header.
func Middleware(secure bool) echo.MiddlewareFunc {
	return echomw.CSRFWithConfig(echomw.CSRFConfig{
		Skipper:        func(c echo.Context) bool { return !cookieAuthenticated(c) },
		TokenLookup:    "header:" + HeaderName,
		CookieName:     CookieName,
		CookiePath:     "/",
		CookieMaxAge:   86400,
		CookieSecure:   secure,
		CookieSameSite: http.SameSiteLaxMode,
	})
}
