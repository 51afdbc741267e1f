package service

import (
	"context"
	"errors"

	"tokoaing/internal/domain/entity"
)

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("no account for this email")
)

// IdentityService is the hosted authentication backend.
type IdentityService interface {
	CreateUser(ctx context.Context, email, password string) (string, error)
	// SignIn checks email and password and returns the identity with a fresh ID token.
	SignIn(ctx context.Context, email, password string) (*entity.Identity, error)
	VerifyToken(ctx context.Context, idToken string) (*entity.Identity, error)
	// SignOut revokes every refresh token issued to uid.
	SignOut(ctx context.Context, uid string) error
	SendPasswordReset(ctx context.Context, email string) error
	UpdateEmail(ctx context.Context, uid, email string) error
	UpdatePassword(ctx context.Context, uid, password string) error
}
