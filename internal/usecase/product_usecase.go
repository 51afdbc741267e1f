package usecase

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/internal/domain/service"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/logger"
)

const (
	MaxImageSize       = 5 << 20
	productImageFolder = "products"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type ProductUseCase struct {
	productRepo repository.ProductRepository
	uploader    service.FileUploadService
}

// NewProductUseCase accepts a nil uploader, in which case image uploads are rejected.
func NewProductUseCase(productRepo repository.ProductRepository, uploader service.FileUploadService) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		uploader:    uploader,
	}
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	IsAvailable bool
	ImageURL    string
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	IsAvailable *bool
	ImageURL    *string
}

func (uc *ProductUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*entity.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.BadRequest("Product name is required", nil)
	}
	if input.Price < 0 {
		return nil, errors.BadRequest("Price cannot be negative", nil)
	}
	if input.Stock < 0 {
		return nil, errors.BadRequest("Stock cannot be negative", nil)
	}

	product := &entity.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		IsAvailable: input.IsAvailable,
		ImageURL:    input.ImageURL,
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	logger.Info("Product %s created", product.ID)
	return product, nil
}

func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	return uc.productRepo.GetByID(ctx, id)
}

func (uc *ProductUseCase) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	return uc.productRepo.List(ctx)
}

func (uc *ProductUseCase) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*entity.Product, error) {
	if _, err := uc.productRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.BadRequest("Product name is required", nil)
		}
		fields["name"] = name
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, errors.BadRequest("Price cannot be negative", nil)
		}
		fields["price"] = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, errors.BadRequest("Stock cannot be negative", nil)
		}
		fields["stock"] = *input.Stock
	}
	if input.IsAvailable != nil {
		fields["isAvailable"] = *input.IsAvailable
	}
	if input.ImageURL != nil {
		fields["imageUrl"] = *input.ImageURL
	}
	if len(fields) == 0 {
		return nil, errors.BadRequest("Nothing to update", nil)
	}

	if err := uc.productRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return uc.productRepo.GetByID(ctx, id)
}

func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id string) error {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	uc.deleteImage(ctx, product.ImageURL)
	return nil
}

// UploadImage sniffs the payload, stores it and points the product at the new URL. The
// previous image is removed on a best effort basis.
func (uc *ProductUseCase) UploadImage(ctx context.Context, id string, data []byte) (*entity.Product, error) {
	if uc.uploader == nil {
		return nil, errors.New(errors.CodeUnavailable, "Image storage is not configured", http.StatusServiceUnavailable, nil)
	}
	if len(data) == 0 {
		return nil, errors.BadRequest("Image is empty", nil)
	}
	if len(data) > MaxImageSize {
		return nil, errors.BadRequest("Image exceeds 5MB", nil)
	}

	mtype := mimetype.Detect(data)
	contentType := strings.SplitN(mtype.String(), ";", 2)[0]
	if !allowedImageTypes[contentType] {
		return nil, errors.BadRequest("Unsupported image type: "+contentType, nil)
	}

	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := uc.uploader.UploadFile(ctx, bytes.NewReader(data), contentType, productImageFolder)
	if err != nil {
		return nil, errors.Internal("Failed to upload image", err)
	}

	if err := uc.productRepo.UpdateFields(ctx, id, map[string]interface{}{"imageUrl": url}); err != nil {
		uc.deleteImage(ctx, url)
		return nil, err
	}

	uc.deleteImage(ctx, product.ImageURL)
	product.ImageURL = url
	return product, nil
}

func (uc *ProductUseCase) deleteImage(ctx context.Context, url string) {
	if uc.uploader == nil || url == "" {
		return
	}
	if err := uc.uploader.DeleteFile(ctx, url); err != nil {
		logger.Warn("Failed to delete image %s: %v", url, err)
	}
}
