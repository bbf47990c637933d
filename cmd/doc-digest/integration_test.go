package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ryosukesatoh/doc-digest/internal/config"
	"github.com/ryosukesatoh/doc-digest/internal/publisher"
	"github.com/ryosukesatoh/doc-digest/internal/runner"
	"github.com/ryosukesatoh/doc-digest/internal/summarizer"
)

func TestOneShotIntegration(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "medias")
	cfgFile, err := createTempConfig(t, `
top_k: 2
output_dir: "`+outDir+`"
publisher:
  types: ["file"]
`)
	if err != nil {
		t.Fatalf("Failed to create temp config: %v", err)
	}
	defer cfgFile.cleanup()

	cfg, err := loadConfig(cfgFile.path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	model, err := summarizer.NewPunktModel()
	if err != nil {
		t.Fatalf("Failed to load sentence model: %v", err)
	}
	artifacts, pubs := buildPublishers(cfg, true)
	if artifacts == nil {
		t.Fatal("Expected file publisher to be configured")
	}
	r := runner.New(summarizer.NewSelector(model, cfg.TopK), artifacts, pubs, nil, nil)

	input := filepath.Join(t.TempDir(), "notes.txt")
	text := "The quick brown fox jumps over the lazy dog near the river. Short one. " +
		"This sentence has a medium length."
	if err := os.WriteFile(input, []byte(text), 0o644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}

	if err := runOnce(context.Background(), r, input); err != nil {
		t.Fatalf("runOnce failed: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(outDir, publisher.ArtifactPrefix+"notes_*.txt"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 artifact, got %d", len(matches))
	}
	got, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	want := "The quick brown fox jumps over the lazy dog near the river. This sentence has a medium length."
	if string(got) != want {
		t.Errorf("Expected artifact %q, got %q", want, string(got))
	}
}

func TestRunOnceMissingFile(t *testing.T) {
	model, err := summarizer.NewPunktModel()
	if err != nil {
		t.Fatalf("Failed to load sentence model: %v", err)
	}
	r := runner.New(summarizer.NewSelector(model, 3), nil, nil, nil, nil)

	err = runOnce(context.Background(), r, filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil || !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("Expected read error, got %v", err)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults, got error: %v", err)
	}
	if cfg.TopK != config.Default().TopK {
		t.Errorf("Expected default top_k %d, got %d", config.Default().TopK, cfg.TopK)
	}
}

func TestBuildPublishers(t *testing.T) {
	cfg := config.Default()
	cfg.Publisher.Types = []string{"stdout", "discord", "email"}
	cfg.Publisher.Discord.WebhookURL = "https://example.com/hook"

	artifacts, pubs := buildPublishers(cfg, false)
	if artifacts != nil {
		t.Error("Expected no file publisher when \"file\" is not configured")
	}
	if len(pubs) != 3 {
		t.Fatalf("Expected 3 publishers, got %d", len(pubs))
	}
	if _, ok := pubs[0].(*publisher.StdoutPublisher); !ok {
		t.Errorf("Expected stdout publisher first, got %T", pubs[0])
	}

	cfg.Publisher.Types = []string{"file"}
	artifacts, pubs = buildPublishers(cfg, true)
	if artifacts == nil || artifacts.Dir() != cfg.OutputDir {
		t.Errorf("Expected file publisher for %s", cfg.OutputDir)
	}
	if len(pubs) != 1 {
		t.Errorf("Expected stdout publisher in one-shot mode, got %d publishers", len(pubs))
	}
}

type tempConfig struct {
	path    string
	cleanup func()
}

func createTempConfig(t *testing.T, content string) (*tempConfig, error) {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "integration_test_*.yaml")
	if err != nil {
		return nil, err
	}

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		os.Remove(tmpfile.Name())
		return nil, err
	}
	tmpfile.Close()

	return &tempConfig{
		path: tmpfile.Name(),
		cleanup: func() {
			os.Remove(tmpfile.Name())
		},
	}, nil
}
