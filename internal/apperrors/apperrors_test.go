package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantKind   Kind
		wantStatus int
	}{
		{"validation", Validation("bad rating"), KindValidation, http.StatusBadRequest},
		{"not_found", NotFound("question not found"), KindNotFound, http.StatusNotFound},
		{"authorization", Authorization("organizer role required"), KindAuthorization, http.StatusForbidden},
		{"store", Store("list feedback", errors.New("conn refused")), KindStore, http.StatusInternalServerError},
		{"internal", Internal("boom", nil), KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.err.Kind)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus())
			assert.Contains(t, tt.err.Error(), string(tt.wantKind))
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := Store("fetch questions", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("missing"))

	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	orig := Validation("empty text")
	assert.Same(t, orig, From(orig))

	wrapped := From(errors.New("plain"))
	require.NotNil(t, wrapped)
	assert.Equal(t, KindInternal, wrapped.Kind)
	assert.Equal(t, "internal server error", wrapped.Message)
}
