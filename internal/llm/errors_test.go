package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	transient := errors.New("connection reset")

	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"unauthorized", &openai.Error{StatusCode: http.StatusUnauthorized}, ErrAuth},
		{"forbidden", &openai.Error{StatusCode: http.StatusForbidden}, ErrAuth},
		{"rate limited", &openai.Error{StatusCode: http.StatusTooManyRequests}, ErrQuota},
		{"server error passes through", &openai.Error{StatusCode: http.StatusInternalServerError}, nil},
		{"non-API error passes through", transient, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyError(tc.in)
			if tc.in == nil {
				assert.NoError(t, got)
				return
			}
			if tc.want != nil {
				assert.ErrorIs(t, got, tc.want)
			} else {
				assert.Equal(t, tc.in, got, "unclassified errors pass through unchanged")
			}
		})
	}
}

func TestClassifyError_AuthAndQuotaAreDistinct(t *testing.T) {
	got := ClassifyError(&openai.Error{StatusCode: http.StatusForbidden})
	assert.ErrorIs(t, got, ErrAuth)
	assert.NotErrorIs(t, got, ErrQuota)
}

func TestClassifyError_WrappedAPIError(t *testing.T) {
	wrapped := fmt.Errorf("start generation: %w", &openai.Error{StatusCode: http.StatusTooManyRequests})
	assert.ErrorIs(t, ClassifyError(wrapped), ErrQuota)
}
