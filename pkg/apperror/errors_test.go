package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped unauthorized", fmt.Errorf("token: %w", ErrUnauthorized), http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"conflict", ErrConflict, http.StatusConflict},
		{"rate limited", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"app error code wins", BadRequest("insufficient points"), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, MapErrorToStatus(tc.err))
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := BadRequest("insufficient points")
	require.Equal(t, "insufficient points", err.Error())
	require.ErrorIs(t, err, ErrBadRequest)

	bare := New(http.StatusTeapot, "", nil)
	require.Equal(t, http.StatusText(http.StatusTeapot), bare.Error())
}
