package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/assist"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/document"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/schemas"
)

var (
	reviewInputFile string
	reviewJSON      bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Proofread a resume document with the writing assistant",
	Long:  "Loads a resume document JSON file and proofreads its summary, experience summaries and project descriptions concurrently.",
	RunE:  runReview,
}

func init() {
	reviewCmd.Flags().StringVarP(&reviewInputFile, "in", "i", "", "Path to the document JSON file, or - for stdin (required)")
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "Print the review as JSON instead of a summary box")

	if err := reviewCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	document.SetLogger(logger)

	data, err := readInput(cmd, reviewInputFile)
	if err != nil {
		return err
	}
	if err := schemas.ValidateDocumentJSON(data); err != nil {
		return fmt.Errorf("invalid document %s: %w", reviewInputFile, err)
	}
	doc, err := document.Load(data, nil)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.AITimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.AITimeout)
		defer cancel()
	}

	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		return err
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	service := assist.NewService(client,
		assist.WithTier(cfg.Tier()),
		assist.WithLogger(logger.With().Str("component", "assist").Logger()),
		assist.WithConcurrency(cfg.AIConcurrency),
	)
	review, err := service.ReviewDocument(ctx, &doc)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	if reviewJSON {
		return printJSON(cmd, review)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintDocumentReview(review)
	return nil
}
