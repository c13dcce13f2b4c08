package embedding

import (
	"errors"
	"net/http"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
)

func TestIsRateLimitError(t *testing.T) {
	assert.True(t, isRateLimitError(&openai.Error{StatusCode: http.StatusTooManyRequests}))
	assert.False(t, isRateLimitError(&openai.Error{StatusCode: http.StatusUnauthorized}))
	assert.False(t, isRateLimitError(errors.New("connection reset")))
	assert.False(t, isRateLimitError(nil))
}

func TestToFloat32(t *testing.T) {
	got := toFloat32([]float64{0.5, -1.25, 0})
	assert.Equal(t, []float32{0.5, -1.25, 0}, got)

	assert.Empty(t, toFloat32(nil))
}
