package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizprep/internal/quiz"
	"github.com/abhisek/quizprep/internal/session"
	"github.com/abhisek/quizprep/internal/ui/components"
	"github.com/abhisek/quizprep/internal/ui/theme"
	"github.com/spf13/cobra"
)

var attemptCmd = &cobra.Command{
	Use:   "attempt",
	Short: "Inspect or clear saved quiz attempts",
}

var attemptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.AttemptRepo().List(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("list attempts: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No saved attempts.")
			return nil
		}

		fmt.Printf("%-48s  %-19s  %-8s  %-6s  %s\n", "Key", "Updated", "Answers", "Marked", "Status")
		fmt.Println(strings.Repeat("─", 100))
		for _, rec := range records {
			st, err := session.DecodeState(rec.Data)
			if err != nil {
				fmt.Printf("%-48s  %-19s  (corrupt: %v)\n", truncate(rec.Key, 48),
					rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"), err)
				continue
			}
			fmt.Printf("%-48s  %-19s  %-8d  %-6d  %s\n",
				truncate(rec.Key, 48),
				rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
				len(st.Answers),
				len(st.MarkedIDs()),
				attemptStatus(st),
			)
		}
		return nil
	},
}

var attemptShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a saved attempt",
	Long: "Show prints the saved state of one attempt. With --questions the attempt is " +
		"reloaded against the question file and its current score is shown.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmdContext(cmd)
		category, mode, firstID, questionsPath, err := attemptFlags(cmd)
		if err != nil {
			return err
		}

		if questionsPath == "" {
			key := session.Key(category, mode, firstID)
			data, err := s.AttemptRepo().Get(ctx, key)
			if err != nil {
				return fmt.Errorf("load attempt: %w", err)
			}
			if data == nil {
				return fmt.Errorf("no saved attempt under %s", key)
			}
			st, err := session.DecodeState(data)
			if err != nil {
				return fmt.Errorf("decode attempt: %w", err)
			}
			printState(key, st)
			return nil
		}

		questions, err := quiz.LoadFile(questionsPath)
		if err != nil {
			return err
		}
		e, err := session.New(ctx, session.Options{
			Category:      category,
			Mode:          mode,
			Questions:     questions,
			TimeLimit:     cfg.Session.ExamDuration,
			Store:         session.NewPersistenceStore(s.AttemptRepo(), newLogger()),
			PassThreshold: cfg.Session.PassThreshold,
			Logger:        newLogger(),
		})
		if err != nil {
			return err
		}
		defer e.Dispose()

		printState(e.Key(), e.State())
		fmt.Println()
		fmt.Println(components.ReportView(e.Report(), e.Questions(), 60))
		return nil
	},
}

var attemptClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete a saved attempt",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		category, mode, firstID, questionsPath, err := attemptFlags(cmd)
		if err != nil {
			return err
		}
		if questionsPath != "" {
			questions, err := quiz.LoadFile(questionsPath)
			if err != nil {
				return err
			}
			firstID = questions[0].ID
		}

		key := session.Key(category, mode, firstID)
		ps := session.NewPersistenceStore(s.AttemptRepo(), newLogger())
		if err := ps.Clear(cmdContext(cmd), key); err != nil {
			return err
		}
		fmt.Printf("Cleared %s\n", key)
		return nil
	},
}

// attemptFlags reads the flags that identify one attempt.
func attemptFlags(cmd *cobra.Command) (string, session.Mode, quiz.QuestionID, string, error) {
	category, _ := cmd.Flags().GetString("category")
	modeName, _ := cmd.Flags().GetString("mode")
	firstID, _ := cmd.Flags().GetString("first-id")
	questionsPath, _ := cmd.Flags().GetString("questions")

	mode := session.Mode(modeName)
	if !mode.Valid() {
		return "", "", "", "", fmt.Errorf("unknown mode %q (want practice or exam)", modeName)
	}
	if firstID == "" && questionsPath == "" {
		return "", "", "", "", fmt.Errorf("one of --first-id or --questions is required")
	}
	return category, mode, quiz.QuestionID(firstID), questionsPath, nil
}

func attemptStatus(st session.State) string {
	if st.Submitted {
		return theme.Correct.Render("submitted")
	}
	return theme.Hint.Render("in progress")
}

func printState(key string, st session.State) {
	fmt.Printf("%s%s\n", theme.Label.Render("Key"), key)
	fmt.Printf("%s%d\n", theme.Label.Render("Question"), st.CurrentIndex+1)
	fmt.Printf("%s%d\n", theme.Label.Render("Answered"), len(st.Answers))
	fmt.Printf("%s%s\n", theme.Label.Render("Time left"), formatSeconds(st.TimeRemaining))
	fmt.Printf("%s%s\n", theme.Label.Render("Status"), attemptStatus(st))

	if ids := st.MarkedIDs(); len(ids) > 0 {
		marked := make([]string, len(ids))
		for i, id := range ids {
			marked[i] = string(id)
		}
		fmt.Printf("%s%s\n", theme.Label.Render("Marked"), theme.Marked.Render(strings.Join(marked, ", ")))
	}
}

func formatSeconds(s int) string {
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

func init() {
	for _, c := range []*cobra.Command{attemptShowCmd, attemptClearCmd} {
		c.Flags().StringP("category", "c", "", "Question bank category")
		c.Flags().StringP("mode", "m", string(session.ModePractice), "Attempt mode: practice or exam")
		c.Flags().String("first-id", "", "Id of the first question in the bank")
		c.Flags().StringP("questions", "q", "", "Question file; its first id is used and the attempt is scored")
	}

	attemptCmd.AddCommand(attemptListCmd)
	attemptCmd.AddCommand(attemptShowCmd)
	attemptCmd.AddCommand(attemptClearCmd)
}
