package usecase

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/internal/domain/service"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/logger"
)

type AuthUseCase struct {
	accountRepo repository.AccountRepository
	identity    service.IdentityService
	now         Clock
}

func NewAuthUseCase(accountRepo repository.AccountRepository, identity service.IdentityService) *AuthUseCase {
	return &AuthUseCase{
		accountRepo: accountRepo,
		identity:    identity,
		now:         time.Now,
	}
}

type RegisterInput struct {
	Email    string
	Password string
}

// Register creates the auth user and its profile document with the default role.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*entity.Account, error) {
	email := strings.TrimSpace(input.Email)

	uid, err := uc.identity.CreateUser(ctx, email, input.Password)
	if err != nil {
		if stderrors.Is(err, service.ErrEmailInUse) {
			return nil, errors.Conflict("Email already in use", err)
		}
		return nil, errors.Internal("Failed to create user in authentication provider", err)
	}

	account := &entity.Account{
		UID:             uid,
		Email:           email,
		Role:            entity.RoleUser,
		TotalSpent:      0,
		MysteryBoxPlays: 0,
		CreatedAt:       millis(uc.now()),
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		logger.Error("Account %s created in auth but profile write failed: %v", uid, err)
		return nil, errors.Internal("Failed to create user record", err)
	}

	logger.Info("Registered account %s", uid)
	return account, nil
}

func (uc *AuthUseCase) GetProfile(ctx context.Context, actor Actor) (*entity.Account, error) {
	if err := actor.requireAccount(); err != nil {
		return nil, err
	}
	return uc.accountRepo.GetByID(ctx, actor.UID)
}

func (uc *AuthUseCase) SendPasswordReset(ctx context.Context, email string) error {
	if err := uc.identity.SendPasswordReset(ctx, strings.TrimSpace(email)); err != nil {
		if stderrors.Is(err, service.ErrUserNotFound) {
			return errors.NotFound("Account", err)
		}
		return errors.Internal("Failed to send password reset email", err)
	}
	return nil
}

type UpdateCredentialsInput struct {
	CurrentPassword string
	NewEmail        string
	NewPassword     string
}

// UpdateCredentials re-authenticates with the current password before changing the email,
// the password or both. A new email is mirrored into the profile document.
func (uc *AuthUseCase) UpdateCredentials(ctx context.Context, actor Actor, input UpdateCredentialsInput) (*entity.Account, error) {
	if err := actor.requireAccount(); err != nil {
		return nil, err
	}

	newEmail := strings.TrimSpace(input.NewEmail)
	if newEmail == actor.Email {
		newEmail = ""
	}
	if newEmail == "" && input.NewPassword == "" {
		return nil, errors.BadRequest("Nothing to update", nil)
	}

	if _, err := uc.identity.SignIn(ctx, actor.Email, input.CurrentPassword); err != nil {
		if stderrors.Is(err, service.ErrInvalidCredentials) || stderrors.Is(err, service.ErrUserNotFound) {
			return nil, errors.Unauthorized("Current password is incorrect", err)
		}
		return nil, errors.Internal("Failed to re-authenticate", err)
	}

	if newEmail != "" {
		if err := uc.identity.UpdateEmail(ctx, actor.UID, newEmail); err != nil {
			if stderrors.Is(err, service.ErrEmailInUse) {
				return nil, errors.Conflict("Email already in use", err)
			}
			return nil, errors.Internal("Failed to update email", err)
		}
		if err := uc.accountRepo.UpdateFields(ctx, actor.UID, map[string]interface{}{"email": newEmail}); err != nil {
			return nil, err
		}
	}

	if input.NewPassword != "" {
		if err := uc.identity.UpdatePassword(ctx, actor.UID, input.NewPassword); err != nil {
			return nil, errors.Internal("Failed to update password", err)
		}
	}

	return uc.accountRepo.GetByID(ctx, actor.UID)
}
