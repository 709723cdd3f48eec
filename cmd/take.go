package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abhisek/quizprep/internal/quiz"
	"github.com/abhisek/quizprep/internal/report"
	"github.com/abhisek/quizprep/internal/session"
	"github.com/abhisek/quizprep/internal/ui/components"
	"github.com/abhisek/quizprep/internal/ui/theme"
	"github.com/spf13/cobra"
)

var takeCmd = &cobra.Command{
	Use:   "take <questions.json>",
	Short: "Take a quiz in the terminal",
	Long: "Take runs a practice or exam attempt over a question file. Progress is saved " +
		"as you go and resumed the next time the same file is taken in the same mode.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		modeName, _ := cmd.Flags().GetString("mode")
		nickname, _ := cmd.Flags().GetString("nickname")

		questions, err := quiz.LoadFile(args[0])
		if err != nil {
			return err
		}

		cfg, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		timeLimit := cfg.Session.ExamDuration
		if cmd.Flags().Changed("time-limit") {
			timeLimit, _ = cmd.Flags().GetDuration("time-limit")
		}

		logger := newLogger()
		notifier := report.Multi{report.NewStoreReporter(s.ResultRepo())}
		if cfg.Server.ReportURL != "" {
			notifier = append(notifier, report.NewHTTPReporter(cfg.Server.ReportURL))
		}

		ctx := cmdContext(cmd)
		e, err := session.New(ctx, session.Options{
			Category:      category,
			Mode:          session.Mode(modeName),
			Questions:     questions,
			TimeLimit:     timeLimit,
			Store:         session.NewPersistenceStore(s.AttemptRepo(), logger),
			Notifier:      notifier,
			Debounce:      cfg.Session.Debounce,
			PassThreshold: cfg.Session.PassThreshold,
			Nickname:      nickname,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		defer e.Dispose()

		t := &taker{engine: e, out: cmd.OutOrStdout()}
		return t.run(ctx, cmd.InOrStdin())
	},
}

// taker drives an engine from line commands.
type taker struct {
	engine *session.Engine
	out    io.Writer
}

const takeHelp = `Commands:
  n / p         next / previous question
  g <number>    go to question
  a <answer>    answer: a letter (B), letters (A,C) or slot=value pairs (1=Yes; 2=No)
  x             clear the current answer
  m             mark or unmark for review
  l             list questions
  s             submit
  r             restart (erase saved progress)
  q             save and quit`

func (t *taker) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	t.engine.Start()
	fmt.Fprintln(t.out, theme.Hint.Render(takeHelp))
	t.render()

	for {
		fmt.Fprint(t.out, "\n> ")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out := <-t.engine.AutoSubmitted():
			fmt.Fprintln(t.out, theme.Incorrect.Render("\nTime is up."))
			t.finish(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(t.out, "\n(input closed, progress saved)")
				return nil
			}
			if done := t.handle(ctx, line); done {
				return nil
			}
		}
	}
}

// handle applies one command and reports whether the session is over.
func (t *taker) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	q, _ := t.engine.Current()

	switch strings.ToLower(cmd) {
	case "":
		return false
	case "n":
		t.engine.Next()
	case "p":
		t.engine.Prev()
	case "g":
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintf(t.out, "invalid question number %q\n", arg)
			return false
		}
		t.engine.Goto(n - 1)
	case "a":
		prev := t.engine.State().Answers[q.ID]
		a, err := parseAnswer(&q, prev, arg)
		if err != nil {
			fmt.Fprintln(t.out, err)
			return false
		}
		t.engine.Answer(q.ID, a)
	case "x":
		t.engine.Answer(q.ID, quiz.Answer{})
	case "m":
		t.engine.ToggleMark(q.ID)
	case "l":
		t.list()
		return false
	case "s":
		out := t.engine.Submit(ctx)
		t.finish(out)
		return t.engine.Mode() == session.ModeExam
	case "r":
		if err := t.engine.Clear(ctx); err != nil {
			fmt.Fprintln(t.out, err)
		}
	case "q":
		t.engine.Flush(ctx)
		fmt.Fprintln(t.out, "Progress saved.")
		return true
	default:
		fmt.Fprintln(t.out, theme.Hint.Render(takeHelp))
		return false
	}
	t.render()
	return false
}

func (t *taker) render() {
	q, i := t.engine.Current()
	st := t.engine.State()
	total := len(t.engine.Questions())

	header := fmt.Sprintf("Question %d/%d", i+1, total)
	if st.Marked[q.ID] {
		header += "  " + theme.Marked.Render("[marked]")
	}
	if t.engine.Mode() == session.ModeExam && !st.Submitted {
		header += "  " + theme.Hint.Render(formatSeconds(st.TimeRemaining)+" left")
	}
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, theme.Title.Render(header))
	if q.Scenario != "" {
		fmt.Fprintln(t.out, theme.Body.Render(q.Scenario))
	}
	fmt.Fprintln(t.out, theme.Body.Render(q.Question))
	if q.Sentence != "" {
		fmt.Fprintln(t.out, theme.Body.Render(q.Sentence))
	}

	for j, opt := range q.Options {
		fmt.Fprintf(t.out, "  %c) %s\n", 'A'+j, opt)
	}
	for j, slot := range answerSlots(&q) {
		fmt.Fprintf(t.out, "  %d. %s\n", j+1, slot)
		for k, opt := range slotOptions(&q, j) {
			fmt.Fprintf(t.out, "       %c) %s\n", 'A'+k, opt)
		}
	}

	if a, ok := st.Answers[q.ID]; ok {
		fmt.Fprintf(t.out, "\n%s%s\n", theme.Label.Render("Your answer"), a.String())
	}
	if correct, ok := t.engine.Feedback(q.ID); ok {
		if correct {
			fmt.Fprintln(t.out, theme.Correct.Render("✓ Correct"))
		} else {
			fmt.Fprintf(t.out, "%s  %s\n", theme.Incorrect.Render("✗ Wrong."), theme.Hint.Render("Answer: "+q.Canonical().String()))
		}
		if q.Explanation != "" {
			fmt.Fprintln(t.out, theme.Hint.Render(q.Explanation))
		}
	}
}

func (t *taker) list() {
	st := t.engine.State()
	for i, q := range t.engine.Questions() {
		status := theme.Skipped.Render("·")
		if _, ok := st.Answers[q.ID]; ok {
			status = theme.Correct.Render("●")
		}
		if st.Marked[q.ID] {
			status += theme.Marked.Render("?")
		}
		fmt.Fprintf(t.out, "%3d %s %s\n", i+1, status, q.Summary())
	}
}

func (t *taker) finish(out session.SubmissionOutcome) {
	if out.AlreadySubmitted {
		fmt.Fprintln(t.out, theme.Hint.Render("Already submitted."))
	}
	fmt.Fprintln(t.out, components.ReportView(out.Report, t.engine.Questions(), 60))
	if out.NotifyErr != nil {
		fmt.Fprintf(t.out, "%s %v\n", theme.Incorrect.Render("Result not reported:"), out.NotifyErr)
	}
}

// answerSlots lists the keys of a map-shaped answer in display order.
func answerSlots(q *quiz.Question) []string {
	if q.ExpectedKind() != quiz.KindMap {
		return nil
	}
	switch q.Type {
	case quiz.TypeDragDrop:
		return q.Zones
	case quiz.TypeCaseTable:
		out := make([]string, len(q.Rows))
		for i, r := range q.Rows {
			out[i] = r.Text
		}
		return out
	case quiz.TypeHotspotBoxMapping:
		out := make([]string, len(q.Boxes))
		for i, b := range q.Boxes {
			out[i] = b.Label
		}
		return out
	default:
		return q.Statements
	}
}

// slotOptions lists the choices for slot i, or nil for yes/no slots.
func slotOptions(q *quiz.Question, i int) []string {
	switch q.Type {
	case quiz.TypeDragDrop:
		return q.Items
	case quiz.TypeHotspotBoxMapping:
		return q.Boxes[i].Options
	default:
		return nil
	}
}

// parseAnswer turns typed input into an answer of the kind q expects. Map
// answers are merged into prev so slots can be filled one at a time.
func parseAnswer(q *quiz.Question, prev quiz.Answer, input string) (quiz.Answer, error) {
	if strings.TrimSpace(input) == "" {
		return quiz.Answer{}, fmt.Errorf("empty answer")
	}

	switch q.ExpectedKind() {
	case quiz.KindMulti:
		var values []string
		for part := range strings.SplitSeq(input, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, pickOption(q.Options, part))
			}
		}
		return quiz.Multi(values...), nil

	case quiz.KindMap:
		slots := answerSlots(q)
		entries := make(map[string]string, len(slots))
		if prev.Kind == quiz.KindMap {
			for k, v := range prev.Entries {
				entries[k] = v
			}
		}
		for pair := range strings.SplitSeq(input, ";") {
			if strings.TrimSpace(pair) == "" {
				continue
			}
			slot, value, ok := strings.Cut(pair, "=")
			if !ok {
				return quiz.Answer{}, fmt.Errorf("expected slot=value, got %q", strings.TrimSpace(pair))
			}
			n, err := strconv.Atoi(strings.TrimSpace(slot))
			if err != nil || n < 1 || n > len(slots) {
				return quiz.Answer{}, fmt.Errorf("slot must be a number from 1 to %d", len(slots))
			}
			value = strings.TrimSpace(value)
			if opts := slotOptions(q, n-1); opts != nil {
				value = pickOption(opts, value)
			} else {
				value = yesNo(value)
			}
			entries[slots[n-1]] = value
		}
		return quiz.Map(entries), nil

	default:
		return quiz.Single(pickOption(q.Options, strings.TrimSpace(input))), nil
	}
}

// pickOption maps a single letter to the option at that position. Any other
// input is taken as the option text itself.
func pickOption(options []string, input string) string {
	if len(input) == 1 {
		i := int(strings.ToUpper(input)[0]) - 'A'
		if i >= 0 && i < len(options) {
			return options[i]
		}
	}
	return input
}

func yesNo(v string) string {
	switch strings.ToLower(v) {
	case "y", "yes":
		return quiz.Yes
	case "n", "no":
		return quiz.No
	}
	return v
}

func init() {
	takeCmd.Flags().StringP("category", "c", "", "Question bank category, part of the saved attempt key")
	takeCmd.Flags().StringP("mode", "m", string(session.ModePractice), "Attempt mode: practice or exam")
	takeCmd.Flags().Duration("time-limit", 0, "Exam time limit (default from config)")
	takeCmd.Flags().String("nickname", "", "Name attached to the reported result")
}
