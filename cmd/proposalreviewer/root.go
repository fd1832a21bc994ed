package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"ProposalReviewer/internal/app"
	"ProposalReviewer/internal/config"
	"ProposalReviewer/internal/domain"
	"ProposalReviewer/internal/extract"
	"ProposalReviewer/internal/infrastructure/llm"
	"ProposalReviewer/internal/logging"
	"ProposalReviewer/internal/usecase"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "proposalreviewer",
		Short:         "Rubric-based proposal review backed by an LLM",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newReviewCommand())
	root.AddCommand(newGenerateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

			application, err := app.New(cfg, logger)
			if err != nil {
				logger.Error("startup failed", "error", err)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := application.Run(ctx); err != nil {
				logger.Error("application stopped", "error", err)
				return err
			}
			return nil
		},
	}
}

func newReviewCommand() *cobra.Command {
	var (
		rubricPath        string
		submissionContext string
	)

	cmd := &cobra.Command{
		Use:   "review [files...]",
		Short: "Review local documents against a rubric file, JSON to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

			rubric, err := os.ReadFile(rubricPath)
			if err != nil {
				return fmt.Errorf("read rubric: %w", err)
			}

			uploads := make([]domain.RawUpload, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read document: %w", err)
				}
				uploads = append(uploads, domain.RawUpload{Filename: filepath.Base(path), Data: data})
			}

			reviews := usecase.NewReviewService(usecase.ReviewDeps{
				Extractor: extract.DefaultService(logger.With("component", "extract")),
				Completer: llm.NewClient(cfg.LLM),
				Logger:    logger.With("component", "review"),
			})

			outcome, err := reviews.ReviewBatch(cmd.Context(), string(rubric), submissionContext, uploads)
			if err != nil {
				printOutcomeErrors(outcome)
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(outcome)
		},
	}

	cmd.Flags().StringVar(&rubricPath, "rubric", "", "path to a rubric text file (required)")
	cmd.Flags().StringVar(&submissionContext, "context", "", "optional submission context")
	_ = cmd.MarkFlagRequired("rubric")
	return cmd
}

func newGenerateCommand() *cobra.Command {
	var (
		topic  string
		count  int
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic proposals for testing rubrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

			generator := usecase.NewGenerator(llm.NewClient(cfg.LLM), logger.With("component", "generate"))
			proposals, err := generator.Generate(cmd.Context(), topic, count)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			for i, proposal := range proposals {
				path := filepath.Join(outDir, fmt.Sprintf("proposal-%d.txt", i+1))
				if err := os.WriteFile(path, []byte(proposal.Body), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				logger.Info("proposal written", "path", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "proposal topic (required)")
	cmd.Flags().IntVar(&count, "count", 3, "number of proposals to generate")
	cmd.Flags().StringVar(&outDir, "out", "proposals", "output directory")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func printOutcomeErrors(outcome domain.BatchReviewOutcome) {
	for _, failure := range outcome.Errors {
		fmt.Fprintf(os.Stderr, "%s: %s\n", failure.Filename, failure.Message)
	}
}
