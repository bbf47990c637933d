package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ryosukesatoh/doc-digest/internal/config"
	"github.com/ryosukesatoh/doc-digest/internal/logging"
	"github.com/ryosukesatoh/doc-digest/internal/metrics"
	"github.com/ryosukesatoh/doc-digest/internal/publisher"
	"github.com/ryosukesatoh/doc-digest/internal/retention"
	"github.com/ryosukesatoh/doc-digest/internal/runner"
	"github.com/ryosukesatoh/doc-digest/internal/summarizer"
	"github.com/ryosukesatoh/doc-digest/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	file := flag.String("file", "", "summarize a local file once and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	// The sentence model is loaded once and shared by every request.
	model, err := summarizer.NewPunktModel()
	if err != nil {
		logger.Error("Failed to load sentence model", "error", err)
		os.Exit(1)
	}
	sel := summarizer.NewSelector(model, cfg.TopK)

	artifacts, pubs := buildPublishers(cfg, *file != "")
	m := metrics.New()
	r := runner.New(sel, artifacts, pubs, m, logger)

	// Single-run mode: summarize one file and exit
	if *file != "" {
		if err := runOnce(context.Background(), r, *file); err != nil {
			logger.Error("Summarization failed", "file", *file, "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := web.New(cfg.Server.Addr, r, sel.TopK(), cfg.Server.MaxUploadBytes(), m, logger)
	if err := srv.Start(); err != nil {
		logger.Error("Failed to start web server", "error", err)
		os.Exit(1)
	}

	var sched *retention.Scheduler
	if cfg.Retention.Enabled() {
		sweeper := retention.NewSweeper(cfg.OutputDir, cfg.Retention.MaxAge, logger)
		sweeper.OnSweep(m.AddArtifactsRemoved)
		sched = retention.NewScheduler(sweeper, cfg.Retention.Schedule)
		if err := sched.Start(ctx); err != nil {
			logger.Error("Failed to schedule retention sweep", "error", err)
			os.Exit(1)
		}
		logger.Info("Scheduled retention sweep",
			"schedule", cfg.Retention.Schedule,
			"maxAge", cfg.Retention.MaxAge.String())
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received signal, shutting down", "signal", sig.String())

	// Graceful shutdown
	cancel()
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Web server shutdown error", "error", err)
	}

	logger.Info("Shutdown complete")
}

// loadConfig falls back to the defaults when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// buildPublishers returns the artifact writer (nil unless "file" is
// configured) and the remaining publishers. In one-shot mode the summary
// is always printed to stdout.
func buildPublishers(cfg *config.Config, oneShot bool) (*publisher.FilePublisher, []publisher.Publisher) {
	var artifacts *publisher.FilePublisher
	if cfg.Publisher.Has("file") {
		artifacts = publisher.NewFilePublisher(cfg.OutputDir)
	}

	var pubs []publisher.Publisher
	if oneShot || cfg.Publisher.Has("stdout") {
		pubs = append(pubs, publisher.NewStdoutPublisher())
	}
	if cfg.Publisher.Has("email") {
		e := cfg.Publisher.Email
		pubs = append(pubs, publisher.NewEmailPublisher(e.SMTPHost, e.SMTPPort, e.Username, e.Password, e.From, e.To))
	}
	if cfg.Publisher.Has("discord") {
		pubs = append(pubs, publisher.NewDiscordPublisher(cfg.Publisher.Discord.WebhookURL))
	}
	return artifacts, pubs
}

func runOnce(ctx context.Context, r *runner.Runner, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	res, err := r.Run(ctx, filepath.Base(path), data, 0)
	var perr *runner.PersistenceError
	if errors.As(err, &perr) && res != nil {
		// The summary was printed; only saving it failed.
		slog.Warn("Summary generated, but failed to save to file", "error", err)
		return nil
	}
	return err
}
