package middleware

import (
	"net/http"
	"time"
)

// CookieOptions are shared by every auth cookie the API sets.
type CookieOptions struct {
	Path   string
	Secure bool
}

func (o CookieOptions) path() string {
	if o.Path == "" {
		return "/"
	}
	return o.Path
}

// Token returns an HttpOnly cookie carrying a token until expires.
func (o CookieOptions) Token(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.path(),
		Expires:  expires,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Expired returns a cookie that makes the browser drop name.
func (o CookieOptions) Expired(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     o.path(),
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
