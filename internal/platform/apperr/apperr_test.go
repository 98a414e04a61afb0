// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/madhouse/internal/platform/apperr"
)

/*
TestConstructors_StatusMapping checks every constructor maps to the expected HTTP status.
*/
func TestConstructors_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		status int
		code   string
	}{
		{"not_found", apperr.NotFound("Account"), http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", apperr.Unauthorized("nope"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", apperr.Forbidden("nope"), http.StatusForbidden, "FORBIDDEN"},
		{"conflict", apperr.Conflict("dup"), http.StatusConflict, "CONFLICT"},
		{"bad_request", apperr.BadRequest("bad"), http.StatusBadRequest, "BAD_REQUEST"},
		{"validation", apperr.ValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

/*
TestAs_TraversesWrapping verifies AppErrors are found through fmt.Errorf wrapping.
*/
func TestAs_TraversesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("service_failed: %w", apperr.Forbidden("no"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)
	assert.True(t, apperr.IsAppError(wrapped))

	assert.Nil(t, apperr.As(errors.New("plain")))
}

/*
TestInternal_HidesCause ensures the cause never becomes the client message.
*/
func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	ae := apperr.Internal(cause)

	assert.NotContains(t, ae.Error(), "relation")
	assert.ErrorIs(t, ae, cause)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 0, apperr.StatusOf(nil))
	assert.Equal(t, http.StatusConflict, apperr.StatusOf(fmt.Errorf("create: %w", apperr.Conflict("dup"))))
	assert.Equal(t, http.StatusInternalServerError, apperr.StatusOf(errors.New("plain")))
}

func TestRateLimited_Message(t *testing.T) {
	err := apperr.RateLimited(3)
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatus)
	assert.Equal(t, "Too many requests. Try again in 3s.", err.Message)
}
