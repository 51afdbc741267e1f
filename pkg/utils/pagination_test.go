package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationParamsDefaults(t *testing.T) {
	p := NewPaginationParams(0, 500)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 0, p.Offset)
}

func TestWindowClampsToTotal(t *testing.T) {
	p := NewPaginationParams(2, 10)

	start, end := p.Window(15)
	assert.Equal(t, 10, start)
	assert.Equal(t, 15, end)

	start, end = p.Window(5)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}
