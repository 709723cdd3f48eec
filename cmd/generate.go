package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/abhisek/quizprep/internal/config"
	"github.com/abhisek/quizprep/internal/quizgen"
	"github.com/abhisek/quizprep/internal/sampler"
	"github.com/abhisek/quizprep/internal/store"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Generate practice questions from a text document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		count, _ := cmd.Flags().GetInt("count")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		apiKey, _ := cmd.Flags().GetString("api-key")
		out, _ := cmd.Flags().GetString("out")
		raw, _ := cmd.Flags().GetBool("raw")

		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}

		cfg, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if cmd.Flags().Changed("drop-unresolved") {
			cfg.Generation.DropUnresolved, _ = cmd.Flags().GetBool("drop-unresolved")
		}
		if count <= 0 {
			count = cfg.Generation.Count
		}
		if difficulty == "" {
			difficulty = cfg.Generation.Difficulty
		}

		ctx := cmdContext(cmd)
		logger := newLogger()

		pipeline, err := buildPipeline(ctx, cfg, s.EventRepo(), logger, apiKey != "")
		if err != nil {
			return err
		}

		res, err := pipeline.Run(ctx, quizgen.Request{
			Content:    string(content),
			Provider:   provider,
			APIKey:     apiKey,
			Count:      count,
			Difficulty: difficulty,
		})
		if err != nil {
			return err
		}

		for _, w := range res.Warnings {
			logger.Printf("warning: question %d: %s", w.Index+1, w.Message)
		}
		logger.Printf("info: %d questions from %s", len(res.Questions), res.Provider)

		var payload any = res
		if !raw {
			qs, err := res.QuizQuestions()
			if err != nil {
				return err
			}
			payload = qs
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode questions: %w", err)
		}
		data = append(data, '\n')

		if out == "" || out == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write questions: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d questions to %s\n", len(res.Questions), out)
		return nil
	},
}

// buildPipeline wires sampler, provider chain and orchestrator from cfg.
// With allowEmpty a missing provider chain is only a warning, since callers
// may still bring their own key.
func buildPipeline(ctx context.Context, cfg config.Config, eventRepo store.EventRepo, logger *log.Logger, allowEmpty bool) (*quizgen.Pipeline, error) {
	genCfg := cfg.GeneratorConfig()

	chain, err := quizgen.NewChain(ctx, cfg.LLM, genCfg, eventRepo)
	if err != nil {
		if !allowEmpty {
			return nil, err
		}
		logger.Printf("warning: %v", err)
		chain = nil
	}

	orch := quizgen.NewOrchestrator(chain,
		quizgen.WithFactory(quizgen.NewLLMFactory(cfg.LLM, genCfg, eventRepo)),
		quizgen.WithLogger(logger),
	)

	return &quizgen.Pipeline{
		Sampler:        sampler.New(cfg.SamplerConfig(), nil),
		Orchestrator:   orch,
		DropUnresolved: cfg.Generation.DropUnresolved,
		Logger:         logger,
	}, nil
}

func init() {
	generateCmd.Flags().StringP("provider", "p", quizgen.ProviderAuto, "Provider name, or auto to walk the fallback chain")
	generateCmd.Flags().IntP("count", "n", 0, "Number of questions (default from config)")
	generateCmd.Flags().StringP("difficulty", "d", "", "Difficulty hint, e.g. easy, medium, hard")
	generateCmd.Flags().String("api-key", "", "API key for the chosen provider")
	generateCmd.Flags().StringP("out", "o", "", "Write questions to this file instead of stdout")
	generateCmd.Flags().Bool("drop-unresolved", false, "Drop questions whose answer matches no option")
	generateCmd.Flags().Bool("raw", false, "Print provider, generated questions and warnings instead of the quiz format")
}
