package repository

import (
	"context"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
)

type treeAccountRepository struct {
	tree repository.Tree
}

func NewTreeAccountRepository(tree repository.Tree) repository.AccountRepository {
	return &treeAccountRepository{
		tree: tree,
	}
}

func (r *treeAccountRepository) Create(ctx context.Context, account *entity.Account) error {
	if account.UID == "" {
		return errors.BadRequest("Account uid is required", nil)
	}

	if err := r.tree.Set(ctx, repository.AccountPath(account.UID), account); err != nil {
		return errors.Internal("Failed to create account", err)
	}

	return nil
}

func (r *treeAccountRepository) GetByID(ctx context.Context, uid string) (*entity.Account, error) {
	var account entity.Account
	if err := readOne(ctx, r.tree, repository.AccountPath(uid), "Account", &account); err != nil {
		return nil, err
	}
	if account.UID == "" {
		account.UID = uid
	}
	return &account, nil
}

func (r *treeAccountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	return readChildren(ctx, r.tree, repository.UsersRoot, "accounts", func(a *entity.Account, key string) {
		if a.UID == "" {
			a.UID = key
		}
	})
}

func (r *treeAccountRepository) UpdateFields(ctx context.Context, uid string, fields map[string]interface{}) error {
	if err := r.tree.Update(ctx, prefixed(repository.AccountPath(uid), fields)); err != nil {
		return errors.Internal("Failed to update account", err)
	}
	return nil
}

func (r *treeAccountRepository) Watch(ctx context.Context, uid string, fn func(*entity.Account, error)) repository.Subscription {
	return r.tree.Watch(ctx, repository.AccountPath(uid), func(s repository.Snapshot) {
		if s.Err != nil {
			fn(nil, s.Err)
			return
		}
		if !s.Exists() {
			fn(nil, nil)
			return
		}

		var account entity.Account
		if err := s.Decode(&account); err != nil {
			fn(nil, err)
			return
		}
		if account.UID == "" {
			account.UID = uid
		}
		fn(&account, nil)
	})
}
