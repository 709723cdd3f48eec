package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"attempts", "llm_request_events", "results", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.AttemptRepo().Put(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.AttemptRepo().Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("data = %s", got)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestAttemptRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.AttemptRepo()
	ctx := context.Background()

	got, err := repo.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing key, got %s", got)
	}

	if err := repo.Put(ctx, "quizprep:az-900:exam:1", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.Put(ctx, "quizprep:az-900:exam:1", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := repo.Put(ctx, "quizprep:az-900:practice:1", []byte(`{"v":3}`)); err != nil {
		t.Fatalf("put second: %v", err)
	}

	got, err = repo.Get(ctx, "quizprep:az-900:exam:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Fatalf("expected overwritten value, got %s", got)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(all))
	}

	if err := repo.Delete(ctx, "quizprep:az-900:exam:1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "quizprep:az-900:exam:1"); err != nil {
		t.Fatalf("delete twice: %v", err)
	}
	got, _ = repo.Get(ctx, "quizprep:az-900:exam:1")
	if got != nil {
		t.Fatalf("expected nil after delete, got %s", got)
	}
}

func TestEventRepo_AppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "quiz-gen", RequestID: "r1", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, RateLimited: true, ErrorMessage: "quota exhausted"},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "quiz-gen", RequestID: "r1", InputTokens: 120, OutputTokens: 80, LatencyMs: 400, Success: true, ResponseBody: `{"questions":[]}`},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "other", RequestID: "r2", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].Purpose != "other" || all[2].Provider != "gemini" {
		t.Fatalf("expected newest first, got %+v", all)
	}
	if !all[2].RateLimited || all[2].Success {
		t.Fatalf("flags not round-tripped: %+v", all[2])
	}

	byReq, err := repo.QueryLLMEvents(ctx, QueryOpts{RequestID: "r1"})
	if err != nil {
		t.Fatalf("query by request: %v", err)
	}
	if len(byReq) != 2 {
		t.Fatalf("expected 2 events for r1, got %d", len(byReq))
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Purpose: "quiz-gen"})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Provider != "openai" {
		t.Fatalf("unexpected limited result: %+v", limited)
	}

	e, err := repo.GetLLMEvent(ctx, limited[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.ResponseBody != `{"questions":[]}` {
		t.Fatalf("unexpected event: %+v", e)
	}
	if time.Since(e.Timestamp) > time.Minute {
		t.Fatalf("timestamp not recent: %v", e.Timestamp)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing event")
	}
}

func TestEventRepo_Usage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "quiz-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 100},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "quiz-gen", InputTokens: 200, OutputTokens: 100, LatencyMs: 300, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "quiz-gen", InputTokens: 50, OutputTokens: 25, LatencyMs: 200, Success: true},
	} {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 1 {
		t.Fatalf("expected 1 purpose, got %d", len(byPurpose))
	}
	u := byPurpose[0]
	if u.Calls != 3 || u.Failures != 1 || u.InputTokens != 350 || u.OutputTokens != 175 || u.AvgLatencyMs != 200 {
		t.Fatalf("unexpected purpose usage: %+v", u)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 1 || byModel[0].Model != "gpt-4o-mini" || byModel[0].Calls != 2 || byModel[0].InputTokens != 250 {
		t.Fatalf("unexpected model usage: %+v", byModel)
	}
}

func TestResultRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()

	id1, err := repo.Save(ctx, ResultData{
		SessionID:      "s1",
		Category:       "az-900",
		Nickname:       "ana",
		Score:          80,
		TotalQuestions: 10,
		UserAnswers:    json.RawMessage(`{"1":"A"}`),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	id2, err := repo.Save(ctx, ResultData{SessionID: "s2", Category: "ai-900", Score: 50, TotalQuestions: 4})
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if id1 == "" || id1 == id2 {
		t.Fatalf("expected distinct ids, got %q and %q", id1, id2)
	}

	all, err := repo.List(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != id2 {
		t.Fatalf("expected newest first, got %+v", all)
	}
	if string(all[0].UserAnswers) != `{}` {
		t.Fatalf("empty answers should be stored as {}, got %s", all[0].UserAnswers)
	}

	az, err := repo.List(ctx, QueryOpts{Category: "az-900"})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(az) != 1 || az[0].Nickname != "ana" || az[0].Score != 80 {
		t.Fatalf("unexpected category result: %+v", az)
	}
	if string(az[0].UserAnswers) != `{"1":"A"}` {
		t.Fatalf("answers = %s", az[0].UserAnswers)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("QUIZPREP_DB", filepath.Join(dir, "explicit", "q.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if p != filepath.Join(dir, "explicit", "q.db") {
		t.Fatalf("path = %q", p)
	}

	t.Setenv("QUIZPREP_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if p != filepath.Join(dir, "quizprep", "quizprep.db") {
		t.Fatalf("path = %q", p)
	}
}
