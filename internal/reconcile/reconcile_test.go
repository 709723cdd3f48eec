package reconcile

import (
	"testing"

	"github.com/abhisek/quizprep/internal/quiz"
)

func TestFindMatch(t *testing.T) {
	tests := []struct {
		name     string
		options  []string
		answer   string
		want     string
		wantTier Tier
		wantOK   bool
	}{
		{"exact", []string{"Paris", "London"}, "London", "London", TierExact, true},
		{"case insensitive", []string{"Option A", "Option B"}, "option a", "Option A", TierCaseInsensitive, true},
		{"normalized spacing", []string{"720 kg", "60 kg"}, "720kg", "720 kg", TierNormalized, true},
		{"normalized punctuation", []string{"Hello, world!", "Bye"}, "hello world", "Hello, world!", TierNormalized, true},
		{"keeps percent", []string{"50%", "50"}, "50 %", "50%", TierNormalized, true},
		{"answer contains option", []string{"Mitochondria", "Nucleus"}, "The answer is mitochondria", "Mitochondria", TierSubstring, true},
		{"option contains answer", []string{"Paris, France", "Berlin, Germany"}, "Berlin", "Berlin, Germany", TierSubstring, true},
		{"normalized substring", []string{"3.5 m/s", "7 m/s"}, "Answer: 3.5m/s!", "3.5 m/s", TierNormalizedSubstring, true},
		{"no match", []string{"Zebra"}, "Giraffe", "", TierNone, false},
		{"empty answer", []string{"A"}, "", "", TierNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, tier, ok := FindMatch(tt.options, tt.answer)
			if ok != tt.wantOK || got != tt.want || tier != tt.wantTier {
				t.Errorf("FindMatch() = (%q, %s, %v), want (%q, %s, %v)", got, tier, ok, tt.want, tt.wantTier, tt.wantOK)
			}
		})
	}
}

func TestRescue(t *testing.T) {
	opts := []string{"Correct", "Wrong"}

	if got, ok := Rescue(opts, "The answer is Correct because of X."); !ok || got != "Correct" {
		t.Fatalf("expected rescue to Correct, got (%q, %v)", got, ok)
	}
	if _, ok := Rescue(opts, "Correct is right and Wrong is wrong."); ok {
		t.Fatal("expected ambiguous explanation to yield no rescue")
	}
	if _, ok := Rescue(opts, "Nothing relevant here."); ok {
		t.Fatal("expected no rescue")
	}
	if _, ok := Rescue(opts, ""); ok {
		t.Fatal("expected no rescue for empty explanation")
	}
}

func TestResolve_FallsBackToRescue(t *testing.T) {
	got, tier, ok := Resolve([]string{"Correct", "Wrong"}, "Invalid", "...answer is Correct...")
	if !ok || got != "Correct" || tier != TierRescue {
		t.Fatalf("Resolve() = (%q, %s, %v)", got, tier, ok)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"720 kg":        "720kg",
		"  A-B. 10%! ":  "a-b.10%",
		"Hello, World?": "helloworld",
		"(x) [y] {z}":   "xyz",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReconcile(t *testing.T) {
	q := quiz.GeneratedQuestion{
		Question: "Mass of the cargo?",
		Options:  []string{"720 kg", "60 kg"},
		Answer:   "720kg",
	}
	got, w := Reconcile(0, q)
	if w != nil {
		t.Fatalf("unexpected warning: %v", w)
	}
	if got.Answer != "720 kg" {
		t.Fatalf("answer = %q, want %q", got.Answer, "720 kg")
	}
	if q.Answer != "720kg" {
		t.Fatal("input question was modified")
	}

	rescued, w := Reconcile(1, quiz.GeneratedQuestion{
		Options:     []string{"Correct", "Wrong"},
		Answer:      "Invalid",
		Explanation: "The answer is Correct because of X.",
	})
	if w != nil || rescued.Answer != "Correct" {
		t.Fatalf("expected rescue to Correct, got (%q, %v)", rescued.Answer, w)
	}

	kept, w := Reconcile(4, quiz.GeneratedQuestion{
		Question: "Largest land animal?",
		Options:  []string{"Zebra"},
		Answer:   "Giraffe",
	})
	if w == nil {
		t.Fatal("expected a warning for an unresolvable answer")
	}
	if kept.Answer != "Giraffe" {
		t.Fatalf("unresolved answer should be kept, got %q", kept.Answer)
	}
	if w.Index != 4 || w.Answer != "Giraffe" || w.Question != "Largest land animal?" {
		t.Fatalf("unexpected warning: %+v", w)
	}

	_, w = Reconcile(0, quiz.GeneratedQuestion{Options: []string{"A", "B"}})
	if w == nil || w.Message != "answer is empty" {
		t.Fatalf("expected empty-answer warning, got %+v", w)
	}
}
