package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/logger"
)

const voucherAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewVoucherCode returns VOUCHER- followed by nine random base36 characters.
func NewVoucherCode() string {
	id := uuid.New()
	var b strings.Builder
	b.WriteString("VOUCHER-")
	for i := 0; i < 9; i++ {
		b.WriteByte(voucherAlphabet[int(id[i+4])%len(voucherAlphabet)])
	}
	return b.String()
}

// MysteryBoxUseCase runs the chance game. The outcome of a play is the willWin flag an
// admin set beforehand, not a roll at open time.
type MysteryBoxUseCase struct {
	tree        repository.Tree
	boxRepo     repository.MysteryBoxRepository
	accountRepo repository.AccountRepository
	orderRepo   repository.OrderRepository
	now         Clock
	newVoucher  func() string
}

func NewMysteryBoxUseCase(
	tree repository.Tree,
	boxRepo repository.MysteryBoxRepository,
	accountRepo repository.AccountRepository,
	orderRepo repository.OrderRepository,
) *MysteryBoxUseCase {
	return &MysteryBoxUseCase{
		tree:        tree,
		boxRepo:     boxRepo,
		accountRepo: accountRepo,
		orderRepo:   orderRepo,
		now:         time.Now,
		newVoucher:  NewVoucherCode,
	}
}

func (uc *MysteryBoxUseCase) GetState(ctx context.Context, actor Actor) (*entity.MysteryBoxState, error) {
	if err := actor.requireAccount(); err != nil {
		return nil, err
	}
	return uc.boxRepo.GetState(ctx, actor.UID)
}

// Candidates lists the accounts an admin may arm: those with a pending mystery box order
// and those who have played before.
func (uc *MysteryBoxUseCase) Candidates(ctx context.Context) ([]*entity.MysteryBoxCandidate, error) {
	accounts, err := uc.accountRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := uc.orderRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	waiting := make(map[string]bool)
	for _, o := range pending {
		if o.Type == entity.ItemMysteryBox {
			waiting[o.UserID] = true
		}
	}

	var candidates []*entity.MysteryBoxCandidate
	for _, a := range accounts {
		if !waiting[a.UID] && a.MysteryBoxPlays <= 0 {
			continue
		}
		state, err := uc.boxRepo.GetState(ctx, a.UID)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, &entity.MysteryBoxCandidate{
			UID:             a.UID,
			Email:           a.Email,
			MysteryBoxPlays: a.MysteryBoxPlays,
			HasPendingOrder: waiting[a.UID],
			State:           *state,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Email < candidates[j].Email
	})
	return candidates, nil
}

// SetFlag lets an admin toggle canOpen or willWin for an account.
func (uc *MysteryBoxUseCase) SetFlag(ctx context.Context, uid, field string, value bool) (*entity.MysteryBoxState, error) {
	if _, err := uc.accountRepo.GetByID(ctx, uid); err != nil {
		return nil, err
	}
	if err := uc.boxRepo.SetFlag(ctx, uid, field, value); err != nil {
		return nil, err
	}
	return uc.boxRepo.GetState(ctx, uid)
}

// Open plays the box once. Closing the box is a transaction so a play is granted at most
// once per arming; counting the play and recording a win follow as one update.
func (uc *MysteryBoxUseCase) Open(ctx context.Context, actor Actor) (*entity.MysteryBoxResult, error) {
	if err := actor.requireAccount(); err != nil {
		return nil, err
	}

	statePath := repository.MysteryBoxStatePath(actor.UID)
	var willWin bool
	err := uc.tree.Transaction(ctx, statePath, func(current json.RawMessage) (interface{}, error) {
		var record map[string]interface{}
		if err := json.Unmarshal(current, &record); err != nil {
			return nil, err
		}
		if open, _ := record["canOpen"].(bool); !open {
			return nil, errors.Conflict("Mystery box is not ready to open", nil)
		}
		willWin, _ = record["willWin"].(bool)
		record["canOpen"] = false
		return record, nil
	})
	if err != nil {
		if _, ok := err.(*errors.AppError); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to open mystery box", err)
	}

	batch := repository.Batch{
		repository.AccountFieldPath(actor.UID, "mysteryBoxPlays"): repository.Inc(1),
	}

	result := &entity.MysteryBoxResult{Won: willWin}
	if willWin {
		result.Voucher = uc.newVoucher()
		batch[repository.Join(repository.LeaderboardRoot, uc.tree.NewKey())] = &entity.LeaderboardEntry{
			Email:     actor.Email,
			ItemWon:   result.Voucher,
			Timestamp: millis(uc.now()),
		}
	}

	if err := uc.tree.Update(ctx, batch); err != nil {
		if rerr := uc.tree.Set(context.WithoutCancel(ctx), repository.Join(statePath, "canOpen"), true); rerr != nil {
			logger.Error("Mystery box for %s left closed after a failed play: %v", actor.UID, rerr)
		}
		return nil, errors.Internal("Failed to open mystery box", err)
	}

	logger.Info("Mystery box opened by %s (won=%t)", actor.UID, result.Won)
	return result, nil
}
