package google

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func apiError(code int) error {
	return &googleapi.Error{Code: code, Message: "boom"}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unauthorised", apiError(http.StatusUnauthorized), ErrUnauthorized},
		{"forbidden", apiError(http.StatusForbidden), ErrForbidden},
		{"not found", apiError(http.StatusNotFound), ErrNotFound},
		{"rate limited", apiError(http.StatusTooManyRequests), ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, WrapError(tt.in), tt.want)
		})
	}
}

func TestWrapErrorPassesThroughOthers(t *testing.T) {
	assert.NoError(t, WrapError(nil))

	plain := errors.New("network down")
	assert.Equal(t, plain, WrapError(plain))

	server := apiError(http.StatusInternalServerError)
	assert.Equal(t, server, WrapError(server))
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(ErrRateLimited))
	assert.True(t, IsRateLimited(apiError(http.StatusTooManyRequests)))
	assert.False(t, IsRateLimited(apiError(http.StatusForbidden)))
	assert.False(t, IsRateLimited(errors.New("other")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(apiError(http.StatusNotFound)))
	assert.False(t, IsNotFound(apiError(http.StatusUnauthorized)))
}
