package llm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
)

var (
	// ErrUnsupportedModel reports a model identifier outside the supported
	// set. Configuration error, caught before any network call.
	ErrUnsupportedModel = errors.New("unsupported model")

	// ErrAuth reports an authentication failure from the provider. The
	// current query fails but the session stays usable for a corrected retry.
	ErrAuth = errors.New("provider authentication failed")

	// ErrQuota reports exhausted provider quota. Distinct from ErrAuth and
	// never retried automatically, since retries cost money.
	ErrQuota = errors.New("provider quota exceeded")
)

// ClassifyError maps provider API errors onto the package error taxonomy.
// Anything that is not an auth or quota failure passes through unchanged and
// is treated as transient by callers that retry.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrQuota, err)
		}
	}
	return err
}
