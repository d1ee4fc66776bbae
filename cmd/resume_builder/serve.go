package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/assist"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/document"
	"github.com/jonathan/resume-builder/internal/format"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/metrics"
	"github.com/jonathan/resume-builder/internal/repository"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
)

var (
	servePort       int
	serveConfigFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing document sessions, previews and the writing-assistant endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides RESUME_BUILDER_PORT)")
	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "Optional JSON config file layered over the environment")
	rootCmd.AddCommand(serveCmd)
}

// loadServeConfig resolves env, then the optional file, then flags.
func loadServeConfig() (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if serveConfigFile != "" {
		fileCfg, err := config.LoadConfig(serveConfigFile)
		if err != nil {
			return nil, err
		}
		merged := fileCfg.MergeWithDefaults(*cfg)
		cfg = &merged
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	format.SetLogger(logger)
	document.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		return err
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	service := assist.NewService(client,
		assist.WithTier(cfg.Tier()),
		assist.WithLogger(logger.With().Str("component", "assist").Logger()),
		assist.WithObserver(collector.RecordAICall),
		assist.WithConcurrency(cfg.AIConcurrency),
	)

	rlCfg, err := ratelimit.LoadConfig(config.EnvPrefix)
	if err != nil {
		return err
	}
	limiter := ratelimit.NewLimiter(rlCfg)

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxSessions:    cfg.MaxSessions,
		ThemeColor:     cfg.ThemeColor,
		AITimeout:      cfg.AITimeout,
		ShutdownGrace:  cfg.ShutdownGrace,
	}, server.Deps{
		Logger:      logger,
		Assistant:   service,
		Repository:  repository.NewMemoryRepository(),
		Metrics:     collector,
		Gatherer:    reg,
		RateLimiter: limiter,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info().
		Int("port", cfg.Port).
		Str("provider", cfg.LLMProvider).
		Str("model", client.GetModel(cfg.Tier())).
		Msg("starting resume builder")
	return srv.Start(ctx)
}
