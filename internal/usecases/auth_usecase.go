package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
	"loremaster/internal/interfaces"
)

// Claims is the bearer token payload. The user id is the only claim the
// access layer trusts.
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string         `json:"token"`
	User  *entities.User `json:"user"`
}

type AuthUsecase struct {
	users     interfaces.UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthUsecase(users interfaces.UserStore, secret string, ttl time.Duration) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		jwtSecret: []byte(secret),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

func (uc *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := entities.Validate(in); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if apperr.CodeOf(err) == apperr.CodeConflict {
			return nil, apperr.Conflict("username or email already registered")
		}
		return nil, err
	}
	return uc.issue(user)
}

// Login verifies credentials. Unknown users and wrong passwords give the same error.
func (uc *AuthUsecase) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := entities.Validate(in); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return uc.issue(user)
}

func (uc *AuthUsecase) Me(ctx context.Context, id access.Identity) (*entities.User, error) {
	return uc.users.GetByID(ctx, id.UserID)
}

func (uc *AuthUsecase) ChangePassword(ctx context.Context, id access.Identity, in ChangePasswordInput) error {
	if err := entities.Validate(in); err != nil {
		return err
	}
	user, err := uc.users.GetByID(ctx, id.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return apperr.Validation("current password is incorrect")
	}
	hashed, err := hashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return uc.users.UpdatePassword(ctx, user.ID, hashed)
}

// bcrypt only reads the first 72 bytes.
func hashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", apperr.Validation("password must be at most 72 bytes")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Internal("failed to hash password", err)
	}
	return string(hashed), nil
}

func (uc *AuthUsecase) issue(user *entities.User) (*AuthResult, error) {
	now := uc.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(uc.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.jwtSecret)
	if err != nil {
		return nil, apperr.Internal("failed to sign token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// ParseToken verifies an HS256 token and returns the identity it carries.
func (uc *AuthUsecase) ParseToken(tokenString string) (access.Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return uc.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(uc.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.UserID <= 0 {
		return access.Identity{}, apperr.Unauthorized("invalid or expired token")
	}
	return access.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
