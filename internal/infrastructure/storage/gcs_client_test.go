package storage

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	name := ObjectName("/products/", "image/png")
	assert.Regexp(t, regexp.MustCompile(`^products/[0-9a-f-]{36}\.png$`), name)

	assert.Regexp(t, `\.jpg$`, ObjectName("products", "image/jpeg"))
	assert.Regexp(t, `\.bin$`, ObjectName("products", "application/x-unknown"))
	assert.NotEqual(t, ObjectName("products", "image/png"), ObjectName("products", "image/png"))
}

func TestParseObjectURL(t *testing.T) {
	url := PublicURL("toko-images", "products/abc.png")
	assert.Equal(t, "https://storage.googleapis.com/toko-images/products/abc.png", url)

	bucket, object, err := ParseObjectURL(url)
	require.NoError(t, err)
	assert.Equal(t, "toko-images", bucket)
	assert.Equal(t, "products/abc.png", object)

	for _, bad := range []string{
		"https://example.com/toko-images/a.png",
		"https://storage.googleapis.com/toko-images",
		"https://storage.googleapis.com//a.png",
	} {
		_, _, err := ParseObjectURL(bad)
		assert.Error(t, err, bad)
	}
}
