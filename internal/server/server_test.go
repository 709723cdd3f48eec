package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizprep/internal/llm"
	"github.com/abhisek/quizprep/internal/quiz"
	"github.com/abhisek/quizprep/internal/quizgen"
	"github.com/abhisek/quizprep/internal/scoring"
	"github.com/abhisek/quizprep/internal/session"
	"github.com/abhisek/quizprep/internal/store"
)

var quiet = log.New(io.Discard, "", 0)

type stubGenerator struct {
	name string
	qs   []quiz.GeneratedQuestion
	err  error
	last quizgen.GenerateInput
}

func (g *stubGenerator) Name() string { return g.name }

func (g *stubGenerator) Generate(_ context.Context, in quizgen.GenerateInput) ([]quiz.GeneratedQuestion, error) {
	g.last = in
	return g.qs, g.err
}

func newTestServer(t *testing.T, gens ...quizgen.Generator) (*httptest.Server, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	srv := New(Options{
		Pipeline: &quizgen.Pipeline{
			Orchestrator: quizgen.NewOrchestrator(gens, quizgen.WithLogger(quiet)),
			Logger:       quiet,
		},
		Results:           s.ResultRepo(),
		DefaultCount:      10,
		DefaultDifficulty: "medium",
		CORSOrigins:       []string{"http://localhost:3000"},
		Logger:            quiet,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, s
}

func post(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestGenerate(t *testing.T) {
	gen := &stubGenerator{name: "gemini", qs: []quiz.GeneratedQuestion{
		{Question: "Mass?", Options: []string{"720 kg", "60 kg"}, Answer: "720kg", Explanation: "It is 720 kg."},
		{Question: "Animal?", Options: []string{"Zebra", "Horse"}, Answer: "Giraffe"},
	}}
	ts, _ := newTestServer(t, gen)

	resp, body := post(t, ts.URL+"/api/generate", `{"content":"some document","provider":"auto"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var res quizgen.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "gemini", res.Provider)
	require.Len(t, res.Questions, 2)
	assert.Equal(t, "720 kg", res.Questions[0].Answer)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 1, res.Warnings[0].Index)

	assert.Equal(t, 10, gen.last.Count, "default count applied")
	assert.Equal(t, "medium", gen.last.Difficulty)
}

func TestGenerateErrors(t *testing.T) {
	quota := &stubGenerator{name: "gemini", err: &llm.ErrRateLimit{Quota: true, Err: errors.New("quota")}}
	ts, _ := newTestServer(t, quota)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad json", `{"content":`, http.StatusBadRequest},
		{"empty content", `{"content":"  "}`, http.StatusBadRequest},
		{"unknown provider", `{"content":"doc","provider":"skynet"}`, http.StatusBadRequest},
		{"unconfigured provider", `{"content":"doc","provider":"openai"}`, http.StatusBadRequest},
		{"specific quota", `{"content":"doc","provider":"gemini"}`, http.StatusTooManyRequests},
		{"chain exhausted", `{"content":"doc","provider":"auto"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, ts.URL+"/api/generate", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))

			var e errResp
			require.NoError(t, json.Unmarshal(body, &e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestScore(t *testing.T) {
	ts, _ := newTestServer(t)

	body := `{
		"questions": [
			{"id": 1, "type": "mcq", "question": "a", "options": ["2","3"], "answer": "2"},
			{"id": 2, "type": "mcq", "question": "b", "options": ["4","5"], "answer": "4"},
			{"id": 3, "type": "mcq", "question": "c", "options": ["6","7"], "answer": "6"}
		],
		"answers": {"1": "2", "2": "5"}
	}`
	resp, data := post(t, ts.URL+"/api/score", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var rep scoring.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, 1, rep.Correct)
	assert.Equal(t, 1, rep.Wrong)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 70.0, rep.Threshold)

	resp, _ = post(t, ts.URL+"/api/score", `{"questions":[{"id":1,"type":"mcq","options":["a"]}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResults(t *testing.T) {
	ts, s := newTestServer(t)

	sub := session.Submission{
		SessionID:      "sess-9",
		Category:       "ai-900",
		UserAnswers:    map[quiz.QuestionID]quiz.Answer{"1": quiz.Single("A")},
		Score:          100,
		TotalQuestions: 1,
	}
	payload, err := json.Marshal(sub)
	require.NoError(t, err)

	resp, body := post(t, ts.URL+"/api/results", string(payload))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created map[string]string
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created["id"])

	stored, err := s.ResultRepo().List(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, created["id"], stored[0].ID)

	listResp, err := http.Get(ts.URL + "/api/results?category=ai-900")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var views []resultView
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "sess-9", views[0].SessionID)
	assert.JSONEq(t, `{"1":"A"}`, string(views[0].UserAnswers))

	resp, _ = post(t, ts.URL+"/api/results", `{"category":"ai-900"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	badLimit, err := http.Get(ts.URL + "/api/results?limit=zero")
	require.NoError(t, err)
	badLimit.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badLimit.StatusCode)
}

func TestCORSAndHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/generate", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	health, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestForwardFailureDoesNotFailSubmit(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	defer s.Close()

	forwarded := 0
	srv := New(Options{
		Results: s.ResultRepo(),
		Forward: session.NotifierFunc(func(context.Context, session.Submission) error {
			forwarded++
			return errors.New("collector down")
		}),
		Logger: quiet,
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, body := post(t, ts.URL+"/api/results", `{"sessionId":"s","category":"c","userAnswers":{},"score":0,"totalQuestions":3}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, 1, forwarded)

	genResp, _ := post(t, ts.URL+"/api/generate", `{"content":"doc"}`)
	assert.Equal(t, http.StatusServiceUnavailable, genResp.StatusCode)
}
