package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		msg       string
		wantRate  bool
		wantQuota bool
	}{
		{"429 rate window", 429, "slow down", true, false},
		{"429 quota", 429, "You exceeded your current quota", true, true},
		{"400 with resource exhausted", 400, "RESOURCE_EXHAUSTED", true, true},
		{"500", 500, "internal error", false, false},
		{"401", 401, "invalid api key", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyStatus(tt.status, errors.New(tt.msg))
			var rl *ErrRateLimit
			if got := errors.As(err, &rl); got != tt.wantRate {
				t.Fatalf("rate limit = %v, want %v", got, tt.wantRate)
			}
			if tt.wantRate && rl.Quota != tt.wantQuota {
				t.Fatalf("quota = %v, want %v", rl.Quota, tt.wantQuota)
			}
			if !tt.wantRate {
				var unavail *ErrProviderUnavailable
				if !errors.As(err, &unavail) {
					t.Fatalf("expected ErrProviderUnavailable, got %T", err)
				}
			}
		})
	}
}

func TestIsQuota(t *testing.T) {
	if !IsQuota(fmt.Errorf("wrapped: %w", &ErrRateLimit{Quota: true})) {
		t.Fatal("wrapped rate limit should count")
	}
	if IsQuota(&ErrProviderUnavailable{Err: errors.New("down")}) {
		t.Fatal("unavailable is not a quota error")
	}
	if IsQuota(nil) {
		t.Fatal("nil is not a quota error")
	}
}
