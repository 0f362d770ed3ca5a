package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad range"), http.StatusBadRequest},
		{"not found", NewNotFoundError("account", "a1"), http.StatusNotFound},
		{"conflict", NewConflictError("already closed"), http.StatusConflict},
		{"duplicate", fmt.Errorf("%w: name taken", ErrDuplicate), http.StatusConflict},
		{"insufficient", fmt.Errorf("%w: payment 10 > 5", ErrInsufficientFunds), http.StatusUnprocessableEntity},
		{"app error", NewAppError(http.StatusServiceUnavailable, "db down", errors.New("dial")), http.StatusServiceUnavailable},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestNewAppErrorWithoutCauseIsInternal(t *testing.T) {
	err := NewAppError(http.StatusInternalServerError, "failed to begin transaction", nil)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, "failed to begin transaction: internal error", err.Error())
}
