package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRateLimit indicates the provider refused the request for rate or quota
// reasons (HTTP 429, RESOURCE_EXHAUSTED).
type ErrRateLimit struct {
	RetryAfter time.Duration

	// Quota is set when the account quota is exhausted rather than a
	// short-lived rate window. Quota errors are never retried.
	Quota bool

	Err error
}

func (e *ErrRateLimit) Error() string {
	if e.Quota {
		return fmt.Sprintf("quota exhausted: %v", e.Err)
	}
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the backend returned content that is not
// valid JSON or does not conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrMissingAPIKey is returned when a provider is built without a key.
var ErrMissingAPIKey = errors.New("API key is required")

// IsQuota reports whether err is a rate-limit or quota refusal. These are
// expected in a fallback chain and move on to the next provider.
func IsQuota(err error) bool {
	var rl *ErrRateLimit
	return errors.As(err, &rl)
}

// quotaMarkers are substrings backends use in error bodies for quota
// exhaustion when the status code alone is ambiguous.
var quotaMarkers = []string{
	"quota",
	"resource_exhausted",
	"resource exhausted",
	"rate limit",
	"rate_limit",
	"too many requests",
}

// looksLikeQuota checks an error message for quota markers.
func looksLikeQuota(msg string) bool {
	msg = strings.ToLower(msg)
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// classifyStatus maps an HTTP status and message to the typed errors.
func classifyStatus(status int, err error) error {
	switch {
	case status == 429:
		return &ErrRateLimit{Quota: strings.Contains(strings.ToLower(err.Error()), "quota"), Err: err}
	case looksLikeQuota(err.Error()):
		return &ErrRateLimit{Quota: true, Err: err}
	case status >= 500:
		return &ErrProviderUnavailable{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
