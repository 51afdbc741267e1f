package repository

import (
	"context"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
)

type treeProductRepository struct {
	tree repository.Tree
}

func NewTreeProductRepository(tree repository.Tree) repository.ProductRepository {
	return &treeProductRepository{
		tree: tree,
	}
}

func (r *treeProductRepository) Create(ctx context.Context, product *entity.Product) error {
	// Generate ID if not provided
	if product.ID == "" {
		product.ID = r.tree.NewKey()
	}

	record := *product
	record.ID = ""
	if err := r.tree.Set(ctx, repository.ProductPath(product.ID), &record); err != nil {
		return errors.Internal("Failed to create product", err)
	}

	return nil
}

func (r *treeProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var product entity.Product
	if err := readOne(ctx, r.tree, repository.ProductPath(id), "Product", &product); err != nil {
		return nil, err
	}
	product.ID = id
	return &product, nil
}

func (r *treeProductRepository) List(ctx context.Context) ([]*entity.Product, error) {
	return readChildren(ctx, r.tree, repository.ProductsRoot, "products", func(p *entity.Product, key string) {
		p.ID = key
	})
}

func (r *treeProductRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := r.tree.Update(ctx, prefixed(repository.ProductPath(id), fields)); err != nil {
		return errors.Internal("Failed to update product", err)
	}
	return nil
}

func (r *treeProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.tree.Remove(ctx, repository.ProductPath(id)); err != nil {
		return errors.Internal("Failed to delete product", err)
	}
	return nil
}
