package cmd

import (
	"bytes"
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizprep/internal/quiz"
	"github.com/abhisek/quizprep/internal/session"
)

func takeQuestions() []quiz.Question {
	return []quiz.Question{
		{ID: "1", Type: quiz.TypeMCQ, Question: "Largest ocean?", Options: []string{"Atlantic", "Pacific"}, Answer: quiz.Single("Pacific")},
		{ID: "2", Type: quiz.TypeMultiSelect, Question: "Primes?", Options: []string{"2", "4", "5"}, Answer: quiz.Multi("2", "5")},
		{ID: "3", Type: quiz.TypeCaseTable, Question: "Statements", Rows: []quiz.CaseStatement{
			{Text: "Water is wet", Answer: quiz.Yes},
			{Text: "Fire is cold", Answer: quiz.No},
		}},
	}
}

func newTaker(t *testing.T, mode session.Mode) (*taker, *bytes.Buffer) {
	t.Helper()
	e, err := session.New(context.Background(), session.Options{
		Mode:      mode,
		Questions: takeQuestions(),
		TimeLimit: time.Hour,
		Debounce:  time.Hour,
		Logger:    log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)
	t.Cleanup(e.Dispose)

	var out bytes.Buffer
	return &taker{engine: e, out: &out}, &out
}

func TestParseAnswer(t *testing.T) {
	qs := takeQuestions()

	a, err := parseAnswer(&qs[0], quiz.Answer{}, "b")
	require.NoError(t, err)
	assert.Equal(t, quiz.Single("Pacific"), a)

	a, err = parseAnswer(&qs[0], quiz.Answer{}, "Atlantic")
	require.NoError(t, err)
	assert.Equal(t, quiz.Single("Atlantic"), a)

	a, err = parseAnswer(&qs[1], quiz.Answer{}, "A, C")
	require.NoError(t, err)
	assert.Equal(t, quiz.Multi("2", "5"), a)

	a, err = parseAnswer(&qs[2], quiz.Answer{}, "1=y")
	require.NoError(t, err)
	a, err = parseAnswer(&qs[2], a, "2=No")
	require.NoError(t, err)
	assert.Equal(t, quiz.Map(map[string]string{"Water is wet": quiz.Yes, "Fire is cold": quiz.No}), a)

	_, err = parseAnswer(&qs[2], quiz.Answer{}, "3=yes")
	assert.Error(t, err)
	_, err = parseAnswer(&qs[2], quiz.Answer{}, "yes")
	assert.Error(t, err)
	_, err = parseAnswer(&qs[0], quiz.Answer{}, "  ")
	assert.Error(t, err)
}

func TestTakerExamFlow(t *testing.T) {
	tk, out := newTaker(t, session.ModeExam)
	ctx := context.Background()

	assert.False(t, tk.handle(ctx, "a B"))
	assert.False(t, tk.handle(ctx, "n"))
	assert.False(t, tk.handle(ctx, "a A,C"))
	assert.False(t, tk.handle(ctx, "m"))
	assert.False(t, tk.handle(ctx, "g 3"))
	assert.False(t, tk.handle(ctx, "a 1=yes; 2=yes"))

	st := tk.engine.State()
	assert.Equal(t, 2, st.CurrentIndex)
	assert.Len(t, st.Answers, 3)
	assert.True(t, st.Marked["2"])

	// No feedback before an exam is submitted.
	assert.NotContains(t, out.String(), "Correct")

	assert.True(t, tk.handle(ctx, "s"))
	assert.Contains(t, out.String(), "2 / 3")
	assert.True(t, tk.engine.State().Submitted)
}

func TestTakerPracticeContinuesAfterSubmit(t *testing.T) {
	tk, out := newTaker(t, session.ModePractice)
	ctx := context.Background()

	assert.False(t, tk.handle(ctx, "a A"))
	assert.Contains(t, out.String(), "Wrong")

	assert.False(t, tk.handle(ctx, "s"))
	assert.False(t, tk.handle(ctx, "a B"))
	assert.Equal(t, quiz.Single("Pacific"), tk.engine.State().Answers["1"])

	assert.False(t, tk.handle(ctx, "x"))
	assert.NotContains(t, tk.engine.State().Answers, quiz.QuestionID("1"))
}

func TestTakerQuitAndHelp(t *testing.T) {
	tk, out := newTaker(t, session.ModePractice)
	ctx := context.Background()

	assert.False(t, tk.handle(ctx, "zzz"))
	assert.Contains(t, out.String(), "Commands:")
	assert.False(t, tk.handle(ctx, "g x"))
	assert.Contains(t, out.String(), "invalid question number")
	assert.True(t, tk.handle(ctx, "q"))
}

func TestTakerRunEndsOnClosedInput(t *testing.T) {
	tk, out := newTaker(t, session.ModePractice)

	err := tk.run(context.Background(), strings.NewReader("a B\nl\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "progress saved")
	assert.Equal(t, quiz.Single("Pacific"), tk.engine.State().Answers["1"])
}
