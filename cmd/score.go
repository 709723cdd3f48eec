package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/abhisek/quizprep/internal/quiz"
	"github.com/abhisek/quizprep/internal/scoring"
	"github.com/abhisek/quizprep/internal/ui/components"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <questions.json> <answers.json>",
	Short: "Score a set of answers against a question file",
	Long: "Score reads a JSON array of questions and a JSON object mapping question id " +
		"to answer, and prints the report.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		asJSON, _ := cmd.Flags().GetBool("json")

		questions, err := quiz.LoadFile(args[0])
		if err != nil {
			return err
		}
		answers, err := loadAnswers(args[1])
		if err != nil {
			return err
		}

		if threshold <= 0 {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			threshold = cfg.Session.PassThreshold
		}

		report := scoring.Score(questions, answers, threshold)
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Fprintln(cmd.OutOrStdout(), components.ReportView(report, questions, 60))
		return nil
	},
}

func loadAnswers(path string) (map[quiz.QuestionID]quiz.Answer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	answers := make(map[quiz.QuestionID]quiz.Answer)
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	return answers, nil
}

func init() {
	scoreCmd.Flags().Float64P("threshold", "t", 0, "Passing percentage (default from config)")
	scoreCmd.Flags().Bool("json", false, "Print the report as JSON")
}
