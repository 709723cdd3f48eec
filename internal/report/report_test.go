package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizprep/internal/quiz"
	"github.com/abhisek/quizprep/internal/session"
	"github.com/abhisek/quizprep/internal/store"
)

func testSubmission() session.Submission {
	return session.Submission{
		SessionID: "sess-1",
		Category:  "az-900",
		UserAnswers: map[quiz.QuestionID]quiz.Answer{
			"1": quiz.Single("A"),
			"2": quiz.Multi("B", "C"),
		},
		Score:          50,
		TotalQuestions: 4,
		Nickname:       "ana",
	}
}

func TestHTTPReporter(t *testing.T) {
	t.Run("posts json", func(t *testing.T) {
		var got map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &got))
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		err := NewHTTPReporter(server.URL).Notify(context.Background(), testSubmission())
		require.NoError(t, err)

		assert.Equal(t, "sess-1", got["sessionId"])
		assert.Equal(t, "az-900", got["category"])
		assert.Equal(t, "ana", got["nickname"])
		assert.EqualValues(t, 50, got["score"])
		assert.EqualValues(t, 4, got["totalQuestions"])
		answers := got["userAnswers"].(map[string]any)
		assert.Equal(t, "A", answers["1"])
		assert.Equal(t, []any{"B", "C"}, answers["2"])
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "collector down", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		err := NewHTTPReporter(server.URL).Notify(context.Background(), testSubmission())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 503")
		assert.Contains(t, err.Error(), "collector down")
	})

	t.Run("custom client", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		client := server.Client()
		err := NewHTTPReporter(server.URL, WithHTTPClient(client)).Notify(context.Background(), testSubmission())
		assert.NoError(t, err)
	})
}

func TestStoreReporter(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, NewStoreReporter(s.ResultRepo()).Notify(ctx, testSubmission()))

	results, err := s.ResultRepo().List(ctx, store.QueryOpts{Category: "az-900"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "sess-1", r.SessionID)
	assert.Equal(t, "ana", r.Nickname)
	assert.InDelta(t, 50, r.Score, 0.001)
	assert.Equal(t, 4, r.TotalQuestions)

	var answers map[quiz.QuestionID]quiz.Answer
	require.NoError(t, json.Unmarshal(r.UserAnswers, &answers))
	assert.True(t, answers["2"].Equal(quiz.Multi("B", "C")))
}

func TestMulti(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	ok := session.NotifierFunc(func(context.Context, session.Submission) error {
		calls++
		return nil
	})
	failing := session.NotifierFunc(func(context.Context, session.Submission) error {
		calls++
		return boom
	})

	err := Multi{failing, ok}.Notify(context.Background(), testSubmission())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)

	assert.NoError(t, Multi{}.Notify(context.Background(), testSubmission()))
}
