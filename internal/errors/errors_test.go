package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := DimensionMismatchf("field %s: %d != %d", "title", 3, 4)

	assert.True(t, Is(err, ErrDimensionMismatch))
	assert.False(t, Is(err, ErrValidation))

	wrapped := fmt.Errorf("score candidate: %w", err)
	assert.True(t, Is(wrapped, ErrDimensionMismatch))
}

func TestError_MessageIncludesCause(t *testing.T) {
	cause := New("disk full")
	err := Wrap(cause, CodeInternal, "write game")

	assert.Equal(t, "write game: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeEmptyInput, http.StatusUnprocessableEntity},
		{CodeDimensionMismatch, http.StatusUnprocessableEntity},
		{CodeUnavailable, http.StatusBadGateway},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeEmptyInput, CodeOf(fmt.Errorf("rank: %w", EmptyInput("no favorites"))))
	assert.Equal(t, CodeInternal, CodeOf(New("plain")))
}

func TestWithDetails_PreservesCode(t *testing.T) {
	details := map[string]string{"title": "required"}
	err := ErrValidation.WithDetails(details)

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, details, err.Details)
	assert.Nil(t, ErrValidation.Details)
}
