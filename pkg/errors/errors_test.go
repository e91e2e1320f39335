package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("review", "rev-123")
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "rev-123")
}

func TestInvalidState(t *testing.T) {
	err := InvalidState("ticket already assigned")
	assert.Equal(t, "INVALID_STATE", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, stderrors.Is(err, ErrInvalidState))
}

func TestCollaboratorUnavailable_WrapsBothSentinelAndCause(t *testing.T) {
	cause := stderrors.New("deadline exceeded")
	err := CollaboratorUnavailable(cause)
	assert.True(t, stderrors.Is(err, ErrCollaboratorUnavailable))
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrNotFound, "load rating summary")
	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "load rating summary")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found sentinel", ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("outer: %w", ErrNotFound), http.StatusNotFound},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"invalid state", ErrInvalidState, http.StatusConflict},
		{"conflict", ErrConflict, http.StatusConflict},
		{"collaborator", ErrCollaboratorUnavailable, http.StatusServiceUnavailable},
		{"app error wins", InvalidInput("bad rating"), http.StatusBadRequest},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError},
		{"aggregation conflict is internal", ErrAggregationConflict, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
