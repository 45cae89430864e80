package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	middleware "github.com/Skotchmaster/grocery_shop/pkg/middleware/auth"
)

type AuthHTTP struct {
	Svc     *service.AuthService
	Cookies middleware.CookieOptions
}

func (h *AuthHTTP) setTokenCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(h.Cookies.Token(middleware.AccessCookie, res.AccessToken, res.AccessExp))
	c.SetCookie(h.Cookies.Token(middleware.RefreshCookie, res.RefreshToken, res.RefreshExp))
}

func (h *AuthHTTP) SignUp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignUpRequest
	if err := bindRequest(c, &req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	user, err := h.Svc.SignUp(ctx, req.Username, req.Password, req.Email)
	if err != nil {
		return fail(l, "signup_error", err)
	}

	l.Info("signup_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.NewUserResponse(user))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bindRequest(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	h.setTokenCookies(c, res)
	l.Info("login_successful", "is_admin", res.IsAdmin)
	return c.JSON(http.StatusOK, transport.TokenPairResponse{Access: res.AccessToken, Refresh: res.RefreshToken})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := bindRequest(c, &req); err != nil {
		l.Warn("refresh_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}
	if req.Refresh == "" {
		if cookie, err := c.Cookie(middleware.RefreshCookie); err == nil {
			req.Refresh = cookie.Value
		}
	}

	res, err := h.Svc.Refresh(ctx, req.Refresh)
	if err != nil {
		return fail(l, "refresh_failed", err)
	}

	h.setTokenCookies(c, res)
	l.Info("refresh_successful")
	return c.JSON(http.StatusOK, transport.TokenPairResponse{Access: res.AccessToken, Refresh: res.RefreshToken})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	userID, _ := middleware.UserID(c)

	var req transport.RefreshRequest
	if err := bindRequest(c, &req); err != nil {
		l.Warn("logout_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}
	if req.Refresh == "" {
		if cookie, err := c.Cookie(middleware.RefreshCookie); err == nil {
			req.Refresh = cookie.Value
		}
	}

	if err := h.Svc.LogOut(ctx, userID, req.Refresh); err != nil {
		return fail(l, "logout_error", err)
	}

	c.SetCookie(h.Cookies.Expired(middleware.AccessCookie))
	c.SetCookie(h.Cookies.Expired(middleware.RefreshCookie))
	l.Info("logout_successful")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "OK"})
}

func (h *AuthHTTP) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.get")

	userID, _ := middleware.UserID(c)
	user, err := h.Svc.Profile(ctx, userID)
	if err != nil {
		return fail(l, "get_profile_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewProfileResponse(user))
}

func (h *AuthHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.update")

	var req transport.UpdateProfileRequest
	if err := bindRequest(c, &req); err != nil {
		l.Warn("update_profile_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	userID, _ := middleware.UserID(c)
	user, err := h.Svc.UpdateProfile(ctx, userID, service.ProfileUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return fail(l, "update_profile_error", err)
	}

	l.Info("update_profile_success")
	return c.JSON(http.StatusOK, transport.NewProfileResponse(user))
}
