package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
)

const orderLogsCollection = "order_logs"

type firestoreOrderLogRepository struct {
	client *firestore.Client
}

func NewFirestoreOrderLogRepository(client *firestore.Client) repository.OrderLogRepository {
	return &firestoreOrderLogRepository{
		client: client,
	}
}

func (r *firestoreOrderLogRepository) CreateLog(ctx context.Context, log *entity.OrderLog) error {
	// Generate ID if not provided
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	_, err := r.client.Collection(orderLogsCollection).Doc(log.ID).Set(ctx, log)
	if err != nil {
		return errors.Internal("Failed to create order log", err)
	}

	return nil
}

func (r *firestoreOrderLogRepository) ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderLog, error) {
	query := r.client.Collection(orderLogsCollection).
		Where("orderId", "==", orderID).
		OrderBy("createdAt", firestore.Asc)

	return r.collect(query.Documents(ctx))
}

func (r *firestoreOrderLogRepository) ListRecent(ctx context.Context, limit int) ([]*entity.OrderLog, error) {
	query := r.client.Collection(orderLogsCollection).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	return r.collect(query.Documents(ctx))
}

func (r *firestoreOrderLogRepository) collect(iter *firestore.DocumentIterator) ([]*entity.OrderLog, error) {
	defer iter.Stop()

	var logs []*entity.OrderLog
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate order logs", err)
		}

		var log entity.OrderLog
		if err := doc.DataTo(&log); err != nil {
			return nil, errors.Internal("Failed to parse order log data", err)
		}
		logs = append(logs, &log)
	}

	return logs, nil
}
