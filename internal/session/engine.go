package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizprep/internal/quiz"
	"github.com/abhisek/quizprep/internal/scoring"
)

const (
	// DefaultTimeLimit is the exam countdown when Options.TimeLimit is zero.
	DefaultTimeLimit = 60 * time.Minute

	// DefaultDebounce is the persistence write window.
	DefaultDebounce = 2 * time.Second

	// DefaultTickInterval is the countdown resolution.
	DefaultTickInterval = time.Second
)

// Options configures an Engine.
type Options struct {
	Category  string
	Mode      Mode
	Questions []quiz.Question

	// TimeLimit is the full exam time. Rounded down to whole seconds.
	TimeLimit time.Duration

	// Store persists snapshots. Nil keeps state in memory only.
	Store *PersistenceStore

	// Notifier receives the submission. Optional.
	Notifier Notifier

	Debounce      time.Duration
	TickInterval  time.Duration
	PassThreshold float64

	// SessionID identifies the attempt to the notifier. A random uuid is
	// used when empty.
	SessionID string
	Nickname  string

	Logger *log.Logger
}

// Engine is the state machine of one quiz attempt. It is safe for
// concurrent use.
type Engine struct {
	category  string
	mode      Mode
	questions []quiz.Question
	index     map[quiz.QuestionID]int
	key       string
	fullTime  int
	threshold float64
	sessionID string
	nickname  string

	store        *PersistenceStore
	notifier     Notifier
	debounce     time.Duration
	tickInterval time.Duration
	logger       *log.Logger

	// saveMu orders snapshot writes so an older state never overwrites a
	// newer one.
	saveMu sync.Mutex

	mu        sync.Mutex
	state     State
	dirty     bool
	saveTimer *time.Timer
	stopTick  chan struct{}
	started   bool
	disposed  bool

	autoSubmitted chan SubmissionOutcome
}

// New creates an engine for opts.Questions and rehydrates it from the store
// when a snapshot exists for the same category, mode and first question.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if len(opts.Questions) == 0 {
		return nil, errors.New("session: question list is empty")
	}
	if err := quiz.Validate(opts.Questions); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if opts.Mode == "" {
		opts.Mode = ModePractice
	}
	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("session: unknown mode %q", opts.Mode)
	}
	if opts.TimeLimit <= 0 {
		opts.TimeLimit = DefaultTimeLimit
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.PassThreshold <= 0 {
		opts.PassThreshold = scoring.DefaultPassThreshold
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Store == nil {
		opts.Store = NewPersistenceStore(NewMemoryBackend(), opts.Logger)
	}

	e := &Engine{
		category:      opts.Category,
		mode:          opts.Mode,
		questions:     append([]quiz.Question(nil), opts.Questions...),
		index:         make(map[quiz.QuestionID]int, len(opts.Questions)),
		fullTime:      max(int(opts.TimeLimit/time.Second), 1),
		threshold:     opts.PassThreshold,
		sessionID:     opts.SessionID,
		nickname:      opts.Nickname,
		store:         opts.Store,
		notifier:      opts.Notifier,
		debounce:      opts.Debounce,
		tickInterval:  opts.TickInterval,
		logger:        opts.Logger,
		autoSubmitted: make(chan SubmissionOutcome, 1),
	}
	for i, q := range e.questions {
		e.index[q.ID] = i
	}
	e.key = Key(e.category, e.mode, e.questions[0].ID)
	e.state = newState(e.fullTime)

	if st := e.store.Load(ctx, e.key, len(e.questions), e.fullTime); st != nil {
		e.state = e.restrict(*st)
	}
	return e, nil
}

// restrict drops answers and marks for ids outside the question list.
func (e *Engine) restrict(st State) State {
	for id := range st.Answers {
		if _, ok := e.index[id]; !ok {
			delete(st.Answers, id)
		}
	}
	for id := range st.Marked {
		if _, ok := e.index[id]; !ok {
			delete(st.Marked, id)
		}
	}
	if e.mode == ModePractice {
		st.TimeRemaining = e.fullTime
	}
	return st
}

// Start begins the exam countdown. It does nothing in practice mode, after
// submission or when already running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.started = true
	e.startCountdownLocked()
}

func (e *Engine) startCountdownLocked() {
	if e.mode != ModeExam || e.state.Submitted || e.state.TimeRemaining <= 0 || e.stopTick != nil {
		return
	}
	stop := make(chan struct{})
	e.stopTick = stop

	go func() {
		t := time.NewTicker(e.tickInterval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				e.tick(stop)
			}
		}
	}()
}

func (e *Engine) stopCountdownLocked() {
	if e.stopTick != nil {
		close(e.stopTick)
		e.stopTick = nil
	}
}

// tick advances the countdown by one second. stop identifies the countdown
// that fired; ticks from a stopped countdown are ignored.
func (e *Engine) tick(stop chan struct{}) {
	e.mu.Lock()
	if stop != e.stopTick || e.mode != ModeExam || e.state.Submitted || e.state.TimeRemaining <= 0 {
		e.mu.Unlock()
		return
	}
	e.state.TimeRemaining--
	if e.state.TimeRemaining > 0 {
		e.scheduleSaveLocked()
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	out := e.Submit(context.Background())
	if !out.AlreadySubmitted {
		select {
		case e.autoSubmitted <- out:
		default:
		}
	}
}

// AutoSubmitted delivers the outcome when the countdown forces submission.
func (e *Engine) AutoSubmitted() <-chan SubmissionOutcome {
	return e.autoSubmitted
}

// Next moves to the next question. It stops at the last one.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.CurrentIndex < len(e.questions)-1 {
		e.state.CurrentIndex++
		e.scheduleSaveLocked()
	}
}

// Prev moves to the previous question. It stops at the first one.
func (e *Engine) Prev() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.CurrentIndex > 0 {
		e.state.CurrentIndex--
		e.scheduleSaveLocked()
	}
}

// Goto jumps to index i when it is in range.
func (e *Engine) Goto(i int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i >= 0 && i < len(e.questions) && i != e.state.CurrentIndex {
		e.state.CurrentIndex = i
		e.scheduleSaveLocked()
	}
}

// Answer records a for question id, replacing any earlier answer. A zero
// Answer removes it. Unknown ids are ignored, as is any answer after an
// exam has been submitted.
func (e *Engine) Answer(id quiz.QuestionID, a quiz.Answer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || (e.state.Submitted && e.mode == ModeExam) {
		return
	}
	if _, ok := e.index[id]; !ok {
		return
	}
	if a.IsZero() {
		delete(e.state.Answers, id)
	} else {
		e.state.Answers[id] = a.Clone()
	}
	e.scheduleSaveLocked()
}

// ToggleMark flags or unflags question id for review.
func (e *Engine) ToggleMark(id quiz.QuestionID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	if _, ok := e.index[id]; !ok {
		return
	}
	if e.state.Marked[id] {
		delete(e.state.Marked, id)
	} else {
		e.state.Marked[id] = true
	}
	e.scheduleSaveLocked()
}

// Submit ends the attempt. The state is written before Submit returns and
// the notifier, if any, is called once. Later calls report
// AlreadySubmitted and change nothing.
func (e *Engine) Submit(ctx context.Context) SubmissionOutcome {
	e.mu.Lock()
	answers := e.state.Clone().Answers
	report := scoring.Score(e.questions, answers, e.threshold)
	if e.state.Submitted {
		e.mu.Unlock()
		return SubmissionOutcome{AlreadySubmitted: true, Report: report, Answers: answers}
	}
	e.state.Submitted = true
	e.dirty = true
	e.cancelSaveLocked()
	e.stopCountdownLocked()
	e.mu.Unlock()

	e.flush(ctx)

	out := SubmissionOutcome{Report: report, Answers: answers}
	if e.notifier != nil {
		err := e.notifier.Notify(ctx, Submission{
			SessionID:      e.sessionID,
			Category:       e.category,
			UserAnswers:    answers,
			Score:          report.Percentage,
			TotalQuestions: report.Total,
			Nickname:       e.nickname,
		})
		if err != nil {
			e.logger.Printf("warning: report submission %s: %v", e.sessionID, err)
			out.NotifyErr = err
		}
	}
	return out
}

// Clear erases the stored snapshot and resets the attempt. A running exam
// countdown restarts from the full time.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	e.cancelSaveLocked()
	e.stopCountdownLocked()
	e.state = newState(e.fullTime)
	e.dirty = false
	e.mu.Unlock()

	// Wait out a write that may be in flight so it cannot resurrect the
	// cleared snapshot.
	e.saveMu.Lock()
	err := e.store.Clear(ctx, e.key)
	e.saveMu.Unlock()

	e.mu.Lock()
	if e.started && !e.disposed {
		e.startCountdownLocked()
	}
	e.mu.Unlock()
	return err
}

// Dispose writes any pending state and stops the countdown and the
// debounce timer. It is safe to call more than once.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	e.cancelSaveLocked()
	e.stopCountdownLocked()
	e.mu.Unlock()

	e.flush(context.Background())
}

// Flush writes the current state now if it changed since the last write.
func (e *Engine) Flush(ctx context.Context) {
	e.mu.Lock()
	e.cancelSaveLocked()
	e.mu.Unlock()
	e.flush(ctx)
}

func (e *Engine) scheduleSaveLocked() {
	e.dirty = true
	if e.disposed || e.saveTimer != nil {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(e.debounce, func() {
		e.mu.Lock()
		if e.saveTimer != t {
			e.mu.Unlock()
			return
		}
		e.saveTimer = nil
		e.mu.Unlock()
		e.flush(context.Background())
	})
	e.saveTimer = t
}

func (e *Engine) cancelSaveLocked() {
	if e.saveTimer != nil {
		e.saveTimer.Stop()
		e.saveTimer = nil
	}
}

func (e *Engine) flush(ctx context.Context) {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	if !e.dirty {
		e.mu.Unlock()
		return
	}
	st := e.state.Clone()
	e.dirty = false
	e.mu.Unlock()

	e.store.Save(ctx, e.key, st)
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Current returns the question at the current index and the index.
func (e *Engine) Current() (quiz.Question, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.questions[e.state.CurrentIndex], e.state.CurrentIndex
}

// Questions returns the question list.
func (e *Engine) Questions() []quiz.Question {
	return append([]quiz.Question(nil), e.questions...)
}

// Feedback reports whether the answer to id is correct. ok is false when
// there is no answer yet, or during an exam that has not been submitted.
func (e *Engine) Feedback(id quiz.QuestionID) (correct, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, known := e.index[id]
	if !known {
		return false, false
	}
	if e.mode == ModeExam && !e.state.Submitted {
		return false, false
	}
	a, answered := e.state.Answers[id]
	if !answered || !scoring.IsAttempted(a) {
		return false, false
	}
	return scoring.IsCorrect(&e.questions[i], a), true
}

// Report scores the current answers.
func (e *Engine) Report() scoring.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return scoring.Score(e.questions, e.state.Answers, e.threshold)
}

func (e *Engine) Mode() Mode        { return e.mode }
func (e *Engine) Key() string       { return e.key }
func (e *Engine) SessionID() string { return e.sessionID }
func (e *Engine) Category() string  { return e.category }
