package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodesAndStatus(t *testing.T) {
	cause := fmt.Errorf("underlying")

	tests := []struct {
		err    *AppError
		code   string
		status int
	}{
		{NotFound("Transaction", cause), "NOT_FOUND", http.StatusNotFound},
		{BadRequest("bad", nil), "BAD_REQUEST", http.StatusBadRequest},
		{Unauthorized("no", nil), "UNAUTHORIZED", http.StatusUnauthorized},
		{Forbidden("no", nil), "FORBIDDEN", http.StatusForbidden},
		{Conflict("raced", nil), "CONFLICT", http.StatusConflict},
		{Internal("boom", cause), "INTERNAL_ERROR", http.StatusInternalServerError},
		{Unavailable("later", cause), "UNAVAILABLE", http.StatusServiceUnavailable},
		{TooManyRequests("slow down"), "TOO_MANY_REQUESTS", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.Equal(t, tt.status, tt.err.Status)
		assert.True(t, Is(tt.err, tt.code))
	}
}

func TestIsRejectsOtherErrors(t *testing.T) {
	assert.False(t, Is(fmt.Errorf("plain"), "CONFLICT"))
	assert.False(t, Is(Conflict("raced", nil), "NOT_FOUND"))
	assert.False(t, Is(nil, "CONFLICT"))
}
