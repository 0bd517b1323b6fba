package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := InvalidInput("op", nil, "test message")
	assert.Equal(t, http.StatusBadRequest, err.Code)
	assert.Equal(t, "test message", err.Error())
}

func TestErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("cause error")
	err := Internal("op", cause, "test message")

	assert.Equal(t, "test message: cause error", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestUpstreamKeepsUnderlyingText(t *testing.T) {
	cause := fmt.Errorf("quota exceeded")
	err := Upstream("Summarizer.Summarize", cause)

	assert.Equal(t, http.StatusBadGateway, err.Code)
	assert.Equal(t, "Error: quota exceeded", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid input", InvalidInput("op", nil, "bad"), http.StatusBadRequest},
		{"not found", NotFound("op", nil, "missing"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", NotFound("op", nil, "missing")), http.StatusNotFound},
		{"upstream", Upstream("op", fmt.Errorf("boom")), http.StatusBadGateway},
		{"internal", Internal("op", nil, "oops"), http.StatusInternalServerError},
		{"plain error", fmt.Errorf("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusCode(tt.err))
		})
	}
}
