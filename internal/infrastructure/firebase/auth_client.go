package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/service"
)

// FirebaseAuthClient combines the admin SDK, which manages users and verifies tokens, with
// the Identity Toolkit REST API, which is the only way to check a password server side.
type FirebaseAuthClient struct {
	client  *auth.Client
	toolkit *identitytoolkit.Service
}

func NewFirebaseAuthClient(ctx context.Context, client *auth.Client, apiKey string) (*FirebaseAuthClient, error) {
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %v", err)
	}

	return &FirebaseAuthClient{
		client:  client,
		toolkit: toolkit,
	}, nil
}

var _ service.IdentityService = (*FirebaseAuthClient)(nil)

func (f *FirebaseAuthClient) CreateUser(ctx context.Context, email, password string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", service.ErrEmailInUse
		}
		return "", err
	}

	return user.UID, nil
}

func (f *FirebaseAuthClient) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}

	resp, err := f.toolkit.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	if err != nil {
		return nil, mapToolkitError(err)
	}

	return &entity.Identity{
		UID:     resp.LocalId,
		Email:   resp.Email,
		IDToken: resp.IdToken,
	}, nil
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, idToken string) (*entity.Identity, error) {
	token, err := f.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidToken, err)
	}

	email, _ := token.Claims["email"].(string)
	return &entity.Identity{
		UID:     token.UID,
		Email:   email,
		IDToken: idToken,
	}, nil
}

func (f *FirebaseAuthClient) SignOut(ctx context.Context, uid string) error {
	return f.client.RevokeRefreshTokens(ctx, uid)
}

func (f *FirebaseAuthClient) SendPasswordReset(ctx context.Context, email string) error {
	req := &identitytoolkit.Relyingparty{
		Email:       email,
		RequestType: "PASSWORD_RESET",
	}

	if _, err := f.toolkit.Relyingparty.GetOobConfirmationCode(req).Context(ctx).Do(); err != nil {
		return mapToolkitError(err)
	}
	return nil
}

func (f *FirebaseAuthClient) UpdateEmail(ctx context.Context, uid, email string) error {
	params := (&auth.UserToUpdate{}).
		Email(email)

	if _, err := f.client.UpdateUser(ctx, uid, params); err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return service.ErrEmailInUse
		}
		return err
	}
	return nil
}

func (f *FirebaseAuthClient) UpdatePassword(ctx context.Context, uid, password string) error {
	params := (&auth.UserToUpdate{}).
		Password(password)

	_, err := f.client.UpdateUser(ctx, uid, params)
	return err
}

func mapToolkitError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case strings.HasPrefix(apiErr.Message, "EMAIL_NOT_FOUND"):
		return service.ErrUserNotFound
	case strings.HasPrefix(apiErr.Message, "INVALID_PASSWORD"),
		strings.HasPrefix(apiErr.Message, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(apiErr.Message, "USER_DISABLED"):
		return service.ErrInvalidCredentials
	}
	return err
}
