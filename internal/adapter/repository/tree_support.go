package repository

import (
	"context"
	"sort"

	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
)

// readChildren loads every child of path in key order, letting setID stamp each value with
// the key it is stored under.
func readChildren[T any](ctx context.Context, tree repository.Tree, path, resource string, setID func(*T, string)) ([]*T, error) {
	var children map[string]T
	if _, err := tree.Get(ctx, path, &children); err != nil {
		return nil, errors.Internal("Failed to list "+resource, err)
	}

	keys := make([]string, 0, len(children))
	for key := range children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	items := make([]*T, 0, len(keys))
	for _, key := range keys {
		item := children[key]
		if setID != nil {
			setID(&item, key)
		}
		items = append(items, &item)
	}

	return items, nil
}

// readOne decodes a single node, mapping a missing node to a NotFound error.
func readOne(ctx context.Context, tree repository.Tree, path, resource string, v interface{}) error {
	found, err := tree.Get(ctx, path, v)
	if err != nil {
		return errors.Internal("Failed to get "+resource, err)
	}
	if !found {
		return errors.NotFound(resource, repository.ErrNotFound)
	}
	return nil
}

// prefixed turns a field map into batch entries rooted at base.
func prefixed(base string, fields map[string]interface{}) repository.Batch {
	batch := make(repository.Batch, len(fields))
	for field, value := range fields {
		batch[repository.Join(base, field)] = value
	}
	return batch
}
