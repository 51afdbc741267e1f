package handler

import (
	"io"

	"github.com/labstack/echo/v4"

	"tokoaing/internal/usecase"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/response"
)

type ProductHandler struct {
	productUseCase *usecase.ProductUseCase
}

func NewProductHandler(productUseCase *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{
		productUseCase: productUseCase,
	}
}

type createProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	IsAvailable bool    `json:"isAvailable"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,url"`
}

// updateProductRequest carries only the fields being changed.
type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	IsAvailable *bool    `json:"isAvailable"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,url"`
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.productUseCase.ListProducts(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, products)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.productUseCase.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	product, err := h.productUseCase.CreateProduct(c.Request().Context(), usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsAvailable: req.IsAvailable,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	product, err := h.productUseCase.UpdateProduct(c.Request().Context(), c.Param("id"), usecase.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsAvailable: req.IsAvailable,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	if err := h.productUseCase.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Product deleted successfully"})
}

// UploadImage takes a multipart "image" field.
func (h *ProductHandler) UploadImage(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, errors.BadRequest("Image file is required", err))
	}
	if fileHeader.Size > usecase.MaxImageSize {
		return response.Error(c, errors.BadRequest("Image exceeds 5MB", nil))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read image", err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, usecase.MaxImageSize+1))
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read image", err))
	}

	product, err := h.productUseCase.UploadImage(c.Request().Context(), c.Param("id"), data)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, product)
}
