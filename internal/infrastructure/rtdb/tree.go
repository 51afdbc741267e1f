package rtdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"firebase.google.com/go/v4/db"
	"github.com/google/uuid"

	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/logger"
)

// Tree talks to the Firebase Realtime Database through the admin SDK. The admin SDK has no
// push listeners, so Watch polls with ETags and only delivers when the node changed.
type Tree struct {
	client       *db.Client
	pollInterval time.Duration
}

func NewTree(client *db.Client, pollInterval time.Duration) *Tree {
	return &Tree{
		client:       client,
		pollInterval: pollInterval,
	}
}

var _ repository.Tree = (*Tree)(nil)

func (t *Tree) ref(path string) *db.Ref {
	return t.client.NewRef("/" + repository.Join(path))
}

func (t *Tree) Get(ctx context.Context, path string, v interface{}) (bool, error) {
	var raw json.RawMessage
	if err := t.ref(path).Get(ctx, &raw); err != nil {
		return false, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

func (t *Tree) Set(ctx context.Context, path string, v interface{}) error {
	if v == nil {
		return t.Remove(ctx, path)
	}
	return t.ref(path).Set(ctx, v)
}

func (t *Tree) Update(ctx context.Context, batch repository.Batch) error {
	if len(batch) == 0 {
		return nil
	}

	updates := make(map[string]interface{}, len(batch))
	for path, value := range batch {
		if inc, ok := value.(repository.Increment); ok {
			value = map[string]interface{}{
				".sv": map[string]interface{}{"increment": inc.Delta},
			}
		}
		updates[repository.Join(path)] = value
	}

	return t.client.NewRef("/").Update(ctx, updates)
}

func (t *Tree) Remove(ctx context.Context, path string) error {
	return t.ref(path).Delete(ctx)
}

func (t *Tree) Push(ctx context.Context, path string, v interface{}) (string, error) {
	key := t.NewKey()
	if err := t.ref(repository.Join(path, key)).Set(ctx, v); err != nil {
		return "", err
	}
	return key, nil
}

// NewKey returns a time-ordered key so children sort by creation like push ids do.
func (t *Tree) NewKey() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Transaction retries fn against the server's compare-and-set until it wins.
func (t *Tree) Transaction(ctx context.Context, path string, fn func(current json.RawMessage) (interface{}, error)) error {
	return t.ref(path).Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		var current json.RawMessage
		if err := node.Unmarshal(&current); err != nil {
			return nil, err
		}
		if len(current) == 0 {
			current = json.RawMessage("null")
		}
		return fn(current)
	})
}

func (t *Tree) EqualTo(ctx context.Context, path, child string, value interface{}, v interface{}) error {
	return t.ref(path).OrderByChild(child).EqualTo(value).Get(ctx, v)
}

func (t *Tree) Watch(ctx context.Context, path string, fn func(repository.Snapshot)) repository.Subscription {
	ctx, cancel := context.WithCancel(ctx)
	path = repository.Join(path)

	go func() {
		ref := t.ref(path)
		etag := ""
		var raw json.RawMessage

		for {
			var err error
			changed := true
			if etag == "" {
				etag, err = ref.GetWithETag(ctx, &raw)
			} else {
				var next json.RawMessage
				var nextTag string
				changed, nextTag, err = ref.GetIfChanged(ctx, etag, &next)
				if err == nil && changed {
					etag, raw = nextTag, next
				}
			}

			if ctx.Err() != nil {
				return
			}
			if err != nil {
				logger.Warn("Watch on %s failed: %v", path, err)
				etag = ""
				fn(repository.Snapshot{Path: path, Err: err})
			} else if changed {
				fn(repository.Snapshot{Path: path, Raw: raw})
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(t.pollInterval):
			}
		}
	}()

	return repository.SubscriptionFunc(cancel)
}
