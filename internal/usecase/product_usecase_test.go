package usecase

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tokoaing/pkg/errors"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) UploadFile(ctx context.Context, file io.Reader, fileType, folder string) (string, error) {
	args := m.Called(ctx, file, fileType, folder)
	return args.String(0), args.Error(1)
}

func (m *mockUploader) DeleteFile(ctx context.Context, fileURL string) error {
	return m.Called(ctx, fileURL).Error(0)
}

func (m *mockUploader) Close() error {
	return nil
}

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}

func TestUploadProductImage(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	uploader := new(mockUploader)
	uc := NewProductUseCase(s.products, uploader)
	product := s.addProduct(t, "Poster", 15000, 3)

	uploader.On("UploadFile", ctx, mock.Anything, "image/png", "products").
		Return("https://storage.googleapis.com/bucket/products/a.png", nil)

	updated, err := uc.UploadImage(ctx, product.ID, pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/bucket/products/a.png", updated.ImageURL)
	uploader.AssertExpectations(t)

	_, err = uc.UploadImage(ctx, product.ID, []byte("plain text, not an image"))
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestUploadWithoutStorage(t *testing.T) {
	s := newStore(t)
	uc := NewProductUseCase(s.products, nil)
	product := s.addProduct(t, "Poster", 15000, 3)

	_, err := uc.UploadImage(context.Background(), product.ID, bytes.Repeat(pngHeader, 2))
	require.Error(t, err)
}
