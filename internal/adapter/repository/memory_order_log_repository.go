package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
)

// memoryOrderLogRepository backs the audit trail when the service runs without Firestore.
type memoryOrderLogRepository struct {
	mu   sync.RWMutex
	logs []*entity.OrderLog
}

func NewMemoryOrderLogRepository() repository.OrderLogRepository {
	return &memoryOrderLogRepository{}
}

func (r *memoryOrderLogRepository) CreateLog(ctx context.Context, log *entity.OrderLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	stored := *log
	r.mu.Lock()
	r.logs = append(r.logs, &stored)
	r.mu.Unlock()

	return nil
}

func (r *memoryOrderLogRepository) ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var logs []*entity.OrderLog
	for _, log := range r.logs {
		if log.OrderID == orderID {
			copied := *log
			logs = append(logs, &copied)
		}
	}
	return logs, nil
}

func (r *memoryOrderLogRepository) ListRecent(ctx context.Context, limit int) ([]*entity.OrderLog, error) {
	r.mu.RLock()
	logs := make([]*entity.OrderLog, 0, len(r.logs))
	for _, log := range r.logs {
		copied := *log
		logs = append(logs, &copied)
	}
	r.mu.RUnlock()

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}
