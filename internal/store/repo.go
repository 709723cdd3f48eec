package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	Purpose   string    // exact purpose match, LLM events only
	RequestID string    // exact request id match, LLM events only
	Category  string    // exact category match, results only
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	RequestID    string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	RateLimited  bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	LLMRequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// PurposeUsage aggregates LLM calls by purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates successful LLM calls by model, for cost estimates.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns the event with the given id, or nil if absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// AttemptRecord is a persisted quiz attempt snapshot.
type AttemptRecord struct {
	Key       string
	Data      []byte
	UpdatedAt time.Time
}

// AttemptRepo stores attempt snapshots as opaque bytes keyed by attempt key.
type AttemptRepo interface {
	// Get returns the snapshot for key, or nil if none exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put inserts or replaces the snapshot for key.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the snapshot for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all snapshots, most recently updated first.
	List(ctx context.Context) ([]AttemptRecord, error)
}

// ResultData is a submitted quiz result.
type ResultData struct {
	SessionID      string
	Category       string
	Nickname       string
	Score          float64
	TotalQuestions int
	UserAnswers    json.RawMessage
}

// ResultRecord is a stored quiz result.
type ResultRecord struct {
	ResultData
	ID        string
	Sequence  int64
	Timestamp time.Time
}

// ResultRepo stores submitted quiz results.
type ResultRepo interface {
	// Save records a result and returns its id.
	Save(ctx context.Context, data ResultData) (string, error)

	// List returns results newest first.
	List(ctx context.Context, opts QueryOpts) ([]ResultRecord, error)
}
