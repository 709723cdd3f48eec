// Package report delivers submitted attempts to result sinks.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abhisek/quizprep/internal/session"
	"github.com/abhisek/quizprep/internal/store"
)

// HTTPReporter posts each submission as JSON to a collector URL.
type HTTPReporter struct {
	url    string
	client *http.Client
}

// Option configures an HTTPReporter.
type Option func(*HTTPReporter)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *HTTPReporter) { r.client = c }
}

// NewHTTPReporter creates a reporter for url.
func NewHTTPReporter(url string, opts ...Option) *HTTPReporter {
	r := &HTTPReporter{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *HTTPReporter) Notify(ctx context.Context, s session.Submission) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("post submission: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, r.url, bytes.TrimSpace(msg))
	}
	return nil
}

// StoreReporter records submissions in the results table.
type StoreReporter struct {
	repo store.ResultRepo
}

// NewStoreReporter creates a reporter writing to repo.
func NewStoreReporter(repo store.ResultRepo) *StoreReporter {
	return &StoreReporter{repo: repo}
}

func (r *StoreReporter) Notify(ctx context.Context, s session.Submission) error {
	_, err := Save(ctx, r.repo, s)
	return err
}

// Save writes s to repo and returns the new result id.
func Save(ctx context.Context, repo store.ResultRepo, s session.Submission) (string, error) {
	answers, err := json.Marshal(s.UserAnswers)
	if err != nil {
		return "", fmt.Errorf("encode answers: %w", err)
	}
	id, err := repo.Save(ctx, store.ResultData{
		SessionID:      s.SessionID,
		Category:       s.Category,
		Nickname:       s.Nickname,
		Score:          s.Score,
		TotalQuestions: s.TotalQuestions,
		UserAnswers:    answers,
	})
	if err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	return id, nil
}

// Multi notifies every reporter in order and joins their errors. One
// failing sink does not stop the others.
type Multi []session.Notifier

func (m Multi) Notify(ctx context.Context, s session.Submission) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
