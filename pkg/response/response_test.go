package response

import (
	"errors"
	"net/http"
	"testing"

	"backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperror.ErrNotFound, http.StatusNotFound},
		{"validation", apperror.Validationf("phone is required"), http.StatusBadRequest},
		{"credentials", apperror.ErrInvalidCredentials, http.StatusUnauthorized},
		{"expired token", apperror.ErrTokenExpired, http.StatusUnauthorized},
		{"duplicate", apperror.ErrDuplicateAccount, http.StatusConflict},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := FromError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.err.Error(), resp.Error)
		})
	}
}
