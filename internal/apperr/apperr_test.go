package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("email", "email is required"), http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("login required"), http.StatusUnauthorized},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"unavailable", NewUnavailable(errors.New("dial tcp: refused")), http.StatusBadGateway},
		{"upstream", NewUpstream("재고가 부족합니다"), http.StatusBadGateway},
		{"wrapped internal", Wrap(errors.New("nil pointer")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "email is required", PublicMessage(NewValidation("email", "email is required")))
	assert.Equal(t, "cannot reach server", PublicMessage(NewUnavailable(errors.New("dial tcp: refused"))))
	assert.Equal(t, "재고가 부족합니다", PublicMessage(NewUpstream("재고가 부족합니다")))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("boom")))
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	err := NewUnavailable(inner)

	assert.True(t, errors.Is(err, inner))
}

func TestAs_WrappedChain(t *testing.T) {
	err := Wrap(NewUpstream("detail"))

	ae, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, Internal, ae.Kind)
}
