package memtree

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tokoaing/internal/domain/repository"
)

// Tree keeps the whole document tree in memory with the same write semantics as the
// hosted database: nulls delete, empty objects vanish, multi-path updates are atomic and
// watchers see every committed change asynchronously.
type Tree struct {
	mu       sync.RWMutex
	root     map[string]interface{}
	watchers map[int]*watcher
	nextID   int
}

func New() *Tree {
	return &Tree{
		root:     make(map[string]interface{}),
		watchers: make(map[int]*watcher),
	}
}

var _ repository.Tree = (*Tree)(nil)

func (t *Tree) Get(ctx context.Context, path string, v interface{}) (bool, error) {
	raw, err := t.rawAt(path)
	if err != nil {
		return false, err
	}
	if raw == "null" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

func (t *Tree) Set(ctx context.Context, path string, v interface{}) error {
	return t.Update(ctx, repository.Batch{path: v})
}

func (t *Tree) Remove(ctx context.Context, path string) error {
	return t.Update(ctx, repository.Batch{path: nil})
}

func (t *Tree) Push(ctx context.Context, path string, v interface{}) (string, error) {
	key := t.NewKey()
	if err := t.Set(ctx, repository.Join(path, key), v); err != nil {
		return "", err
	}
	return key, nil
}

func (t *Tree) NewKey() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (t *Tree) Update(ctx context.Context, batch repository.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	paths := make([]string, 0, len(batch))
	values := make(map[string]interface{}, len(batch))
	for path, value := range batch {
		p := repository.Join(path)
		if _, ok := value.(repository.Increment); !ok {
			normalized, err := normalize(value)
			if err != nil {
				return fmt.Errorf("encode %s: %w", p, err)
			}
			value = normalized
		}
		paths = append(paths, p)
		values[p] = value
	}
	if err := checkOverlap(paths); err != nil {
		return err
	}

	t.mu.Lock()
	for _, p := range paths {
		value := values[p]
		if inc, ok := value.(repository.Increment); ok {
			current, _ := lookup(t.root, split(p)).(float64)
			value = current + inc.Delta
		}
		t.root = assign(t.root, split(p), value)
	}
	t.mu.Unlock()

	t.notify()
	return nil
}

// Transaction runs fn under the write lock; fn must not call back into the tree.
func (t *Tree) Transaction(ctx context.Context, path string, fn func(current json.RawMessage) (interface{}, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := repository.Join(path)

	t.mu.Lock()
	current := json.RawMessage("null")
	if value := lookup(t.root, split(p)); value != nil {
		raw, err := json.Marshal(value)
		if err != nil {
			t.mu.Unlock()
			return fmt.Errorf("encode %s: %w", p, err)
		}
		current = raw
	}

	next, err := fn(current)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	normalized, err := normalize(next)
	if err != nil {
		t.mu.Unlock()
		return fmt.Errorf("encode %s: %w", p, err)
	}
	t.root = assign(t.root, split(p), normalized)
	t.mu.Unlock()

	t.notify()
	return nil
}

func (t *Tree) EqualTo(ctx context.Context, path, child string, value interface{}, v interface{}) error {
	want, err := normalize(value)
	if err != nil {
		return err
	}

	t.mu.RLock()
	node, _ := lookup(t.root, split(path)).(map[string]interface{})
	matches := make(map[string]interface{})
	for key, item := range node {
		fields, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if reflect.DeepEqual(fields[child], want) {
			matches[key] = item
		}
	}
	raw, err := json.Marshal(matches)
	t.mu.RUnlock()
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, v)
}

func (t *Tree) Watch(ctx context.Context, path string, fn func(repository.Snapshot)) repository.Subscription {
	w := &watcher{
		path: repository.Join(path),
		fn:   fn,
		kick: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.watchers[id] = w
	t.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.watchers, id)
			t.mu.Unlock()
			close(w.done)
		})
	}

	w.kick <- struct{}{}
	go w.run(ctx, t)
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-w.done:
		}
	}()

	return repository.SubscriptionFunc(cancel)
}

// WatcherCount reports live subscriptions, which lets tests assert nothing leaked.
func (t *Tree) WatcherCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.watchers)
}

func (t *Tree) notify() {
	t.mu.RLock()
	for _, w := range t.watchers {
		select {
		case w.kick <- struct{}{}:
		default:
		}
	}
	t.mu.RUnlock()
}

func (t *Tree) rawAt(path string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	value := lookup(t.root, split(path))
	if value == nil {
		return "null", nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

type watcher struct {
	path string
	fn   func(repository.Snapshot)
	kick chan struct{}
	done chan struct{}
	last string
}

func (w *watcher) run(ctx context.Context, t *Tree) {
	primed := false
	for {
		select {
		case <-w.done:
			return
		case <-w.kick:
		}

		raw, err := t.rawAt(w.path)
		if err != nil {
			w.deliver(repository.Snapshot{Path: w.path, Err: err})
			continue
		}
		if primed && raw == w.last {
			continue
		}
		primed = true
		w.last = raw
		w.deliver(repository.Snapshot{Path: w.path, Raw: json.RawMessage(raw)})
	}
}

func (w *watcher) deliver(s repository.Snapshot) {
	select {
	case <-w.done:
		return
	default:
	}
	w.fn(s)
}

func split(path string) []string {
	path = repository.Join(path)
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// normalize converts any Go value into the generic JSON form stored in the tree and
// strips nulls and empty objects the way the hosted database does.
func normalize(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return prune(generic), nil
}

func prune(v interface{}) interface{} {
	switch node := v.(type) {
	case map[string]interface{}:
		for key, child := range node {
			child = prune(child)
			if child == nil {
				delete(node, key)
			} else {
				node[key] = child
			}
		}
		if len(node) == 0 {
			return nil
		}
		return node
	case []interface{}:
		if len(node) == 0 {
			return nil
		}
		return node
	default:
		return v
	}
}

func lookup(node interface{}, segments []string) interface{} {
	for _, s := range segments {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil
		}
		node = m[s]
	}
	return node
}

func assign(root map[string]interface{}, segments []string, value interface{}) map[string]interface{} {
	if len(segments) == 0 {
		m, _ := value.(map[string]interface{})
		if m == nil {
			m = make(map[string]interface{})
		}
		return m
	}

	head := segments[0]
	if len(segments) == 1 {
		if value == nil {
			delete(root, head)
		} else {
			root[head] = value
		}
		return root
	}

	child, ok := root[head].(map[string]interface{})
	if !ok {
		if value == nil {
			return root
		}
		child = make(map[string]interface{})
	}
	child = assign(child, segments[1:], value)
	if len(child) == 0 {
		delete(root, head)
	} else {
		root[head] = child
	}
	return root
}

func checkOverlap(paths []string) error {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	for i, a := range sorted {
		for _, b := range sorted[i+1:] {
			if a == b || a == "" || strings.HasPrefix(b, a+"/") || strings.HasPrefix(a, b+"/") {
				return fmt.Errorf("update paths overlap: %q and %q", a, b)
			}
		}
	}
	return nil
}
