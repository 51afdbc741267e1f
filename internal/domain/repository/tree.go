package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("record not found")

// Tree is the hosted hierarchical key/value store. Paths are slash separated and relative
// to the root ("users/abc/messages").
type Tree interface {
	// Get decodes the value at path into v. It reports false, leaving v untouched, when
	// nothing is stored there.
	Get(ctx context.Context, path string, v interface{}) (bool, error)
	Set(ctx context.Context, path string, v interface{}) error
	// Update applies every entry of the batch as one atomic multi-path write.
	Update(ctx context.Context, batch Batch) error
	Remove(ctx context.Context, path string) error
	// Push stores v under a freshly generated child key of path and returns the key.
	Push(ctx context.Context, path string, v interface{}) (string, error)
	// NewKey generates a child key without writing anything.
	NewKey() string
	// EqualTo decodes the children of path whose child field equals value into v,
	// a pointer to a map keyed by child key.
	EqualTo(ctx context.Context, path, child string, value interface{}, v interface{}) error
	// Watch delivers the value at path now and after every change until the
	// subscription is cancelled or ctx is done.
	Watch(ctx context.Context, path string, fn func(Snapshot)) Subscription
	// Transaction replaces the value at path with what fn returns for the current value
	// ("null" when absent). A nil result removes the path. fn may run again when a
	// concurrent write wins, so it must not have side effects. An error from fn aborts
	// without writing and is returned unchanged.
	Transaction(ctx context.Context, path string, fn func(current json.RawMessage) (interface{}, error)) error
}

// Batch maps paths to new values. A nil value removes the path; an Increment is applied
// atomically on the server.
type Batch map[string]interface{}

// Increment adds Delta to the number stored at a path, treating a missing value as zero.
type Increment struct {
	Delta float64
}

func Inc(delta float64) Increment {
	return Increment{Delta: delta}
}

type Snapshot struct {
	Path string
	Raw  json.RawMessage
	Err  error
}

func (s Snapshot) Exists() bool {
	return s.Err == nil && len(s.Raw) > 0 && string(s.Raw) != "null"
}

func (s Snapshot) Decode(v interface{}) error {
	if s.Err != nil {
		return s.Err
	}
	if !s.Exists() {
		return ErrNotFound
	}
	return json.Unmarshal(s.Raw, v)
}

type Subscription interface {
	Cancel()
}

type SubscriptionFunc func()

func (f SubscriptionFunc) Cancel() {
	f()
}

// Join builds a tree path from segments, ignoring empty ones and stray slashes.
func Join(parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			segments = append(segments, p)
		}
	}
	return strings.Join(segments, "/")
}
