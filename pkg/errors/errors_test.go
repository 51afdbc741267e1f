package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesWrappedAppError(t *testing.T) {
	err := fmt.Errorf("confirm: %w", NotFound("Pending order", nil))

	assert.True(t, Is(err, CodeNotFound))
	assert.False(t, Is(err, CodeConflict))
	assert.False(t, Is(stderrors.New("plain"), CodeNotFound))
}

func TestAppErrorCarriesStatusAndCause(t *testing.T) {
	cause := stderrors.New("backend down")
	err := Internal("Failed to confirm order", cause)

	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "backend down")
}
