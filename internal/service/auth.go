package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/pkg/hash"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	"github.com/Skotchmaster/grocery_shop/pkg/tokens"
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Events        EventPublisher
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	IsAdmin      bool
}

type ProfileUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return 15 * time.Minute
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return 7 * 24 * time.Hour
}

func (s *AuthService) SignUp(ctx context.Context, username, password, email string) (*models.User, error) {
	return s.createUser(ctx, username, password, email, tokens.RoleUser)
}

// CreateAdmin is used by the create-admin command only.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password, email string) (*models.User, error) {
	return s.createUser(ctx, username, password, email, tokens.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, username, password, email, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("signup_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: user with this username already exists", ErrConflict)
		}
		return nil, err
	}

	publish(ctx, s.Events, TopicUserEvents, user.ID, "user_registered", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}

	res, next, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SaveRefreshToken(ctx, next); err != nil {
		return nil, err
	}
	return res, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked in the same transaction that stores its successor.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", ErrValidation)
	}

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	user, err := s.Repo.GetUser(ctx, uint(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, err
	}

	res, next, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, hash.Sha256Hex(refreshToken), next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repo.ErrTokenRevoked) {
			return nil, fmt.Errorf("%w: refresh token expired or revoked", ErrUnauthorized)
		}
		return nil, err
	}
	return res, nil
}

// LogOut revokes the caller's refresh token. Revoking an already revoked
// token is not an error.
func (s *AuthService) LogOut(ctx context.Context, userID uint, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	if claims.Subject != strconv.FormatUint(uint64(userID), 10) {
		return fmt.Errorf("%w: refresh token belongs to another user", ErrUnauthorized)
	}
	err = s.Repo.RevokeRefreshToken(ctx, claims.ID, hash.Sha256Hex(refreshToken))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) issuePair(user *models.User) (*LoginResult, *models.RefreshToken, error) {
	subject := strconv.FormatUint(uint64(user.ID), 10)
	now := time.Now()

	accessExp := now.Add(s.accessTTL())
	access, err := tokens.NewAccessToken(s.JWTSecret, subject, user.Role, accessExp)
	if err != nil {
		return nil, nil, err
	}

	refreshExp := now.Add(s.refreshTTL())
	jti := uuid.NewString()
	refresh, err := tokens.NewRefreshToken(s.RefreshSecret, subject, jti, refreshExp)
	if err != nil {
		return nil, nil, err
	}

	stored := &models.RefreshToken{
		JTI:       jti,
		TokenHash: hash.Sha256Hex(refresh),
		UserID:    user.ID,
		ExpiresAt: refreshExp.Unix(),
	}
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		IsAdmin:      user.Role == tokens.RoleAdmin,
	}, stored, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, upd ProfileUpdate) (*models.User, error) {
	fields := map[string]any{}
	if upd.Email != nil {
		fields["email"] = strings.TrimSpace(*upd.Email)
	}
	if upd.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*upd.LastName)
	}

	user, err := s.Repo.UpdateUser(ctx, userID, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}
