package usecase

import (
	"context"
	stderrors "errors"
	"sort"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/internal/domain/service"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/utils"
)

// UserUseCase is the admin back-office view of accounts.
type UserUseCase struct {
	accountRepo repository.AccountRepository
	identity    service.IdentityService
}

func NewUserUseCase(accountRepo repository.AccountRepository, identity service.IdentityService) *UserUseCase {
	return &UserUseCase{
		accountRepo: accountRepo,
		identity:    identity,
	}
}

// ListUsers returns one page of accounts, newest first.
func (uc *UserUseCase) ListUsers(ctx context.Context, params utils.PaginationParams) ([]*entity.Account, int64, error) {
	accounts, err := uc.accountRepo.List(ctx)
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt > accounts[j].CreatedAt
	})

	start, end := params.Window(len(accounts))
	return accounts[start:end], int64(len(accounts)), nil
}

func (uc *UserUseCase) GetUser(ctx context.Context, uid string) (*entity.Account, error) {
	return uc.accountRepo.GetByID(ctx, uid)
}

func (uc *UserUseCase) SetRole(ctx context.Context, uid string, role entity.Role) (*entity.Account, error) {
	if !role.Valid() {
		return nil, errors.BadRequest("Role must be user or admin", nil)
	}
	if _, err := uc.accountRepo.GetByID(ctx, uid); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateFields(ctx, uid, map[string]interface{}{"role": role}); err != nil {
		return nil, err
	}
	return uc.accountRepo.GetByID(ctx, uid)
}

func (uc *UserUseCase) SetTotalSpent(ctx context.Context, uid string, amount float64) (*entity.Account, error) {
	if amount < 0 {
		return nil, errors.BadRequest("Total spent cannot be negative", nil)
	}
	if _, err := uc.accountRepo.GetByID(ctx, uid); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateFields(ctx, uid, map[string]interface{}{"totalSpent": amount}); err != nil {
		return nil, err
	}
	return uc.accountRepo.GetByID(ctx, uid)
}

// SendPasswordReset emails the account owner a reset link.
func (uc *UserUseCase) SendPasswordReset(ctx context.Context, uid string) error {
	account, err := uc.accountRepo.GetByID(ctx, uid)
	if err != nil {
		return err
	}

	if err := uc.identity.SendPasswordReset(ctx, account.Email); err != nil {
		if stderrors.Is(err, service.ErrUserNotFound) {
			return errors.NotFound("Account", err)
		}
		return errors.Internal("Failed to send password reset email", err)
	}
	return nil
}
