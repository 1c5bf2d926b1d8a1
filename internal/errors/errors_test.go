package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"self delete", ErrCannotDeleteSelf, http.StatusForbidden, "FORBIDDEN"},
		{"wrapped not found", fmt.Errorf("approve: %w", ErrPendingRecipeNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"invalid action", ErrInvalidAction, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"already decided", ErrAlreadyDecided, http.StatusConflict, "CONFLICT"},
		{"upstream", Upstream("ai failed", "raw", nil), http.StatusBadGateway, "UPSTREAM_FAILURE"},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"gorm duplicate", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), http.StatusConflict, "CONFLICT"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"internal hides message", Internal("load recipes", errors.New("dial tcp")), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_InternalDoesNotLeak(t *testing.T) {
	httpErr := MapErrorToHTTP(Internal("load recipes", errors.New("dial tcp 10.0.0.3:3306")))
	assert.Equal(t, "internal server error", httpErr.Message)
}

func TestUpstreamDetailsSurface(t *testing.T) {
	resp := MapErrorToHTTP(Upstream("invalid JSON from AI provider", "{not json", nil)).ToErrorResponse()
	assert.Equal(t, "{not json", resp.Details)
	assert.Equal(t, "UPSTREAM_FAILURE", resp.Code)
}

func TestAppErrorIs(t *testing.T) {
	wrapped := fmt.Errorf("decide: %w", ErrAlreadyDecided)
	assert.True(t, errors.Is(wrapped, ErrAlreadyDecided))
	assert.False(t, errors.Is(wrapped, ErrInvalidAction))
	assert.Equal(t, KindConflict, KindOf(wrapped))
}
