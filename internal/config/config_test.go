package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), "config_test_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}
	tmpfile.Close()
	return tmpfile.Name()
}

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t, `
top_k: 5
output_dir: /var/lib/doc-digest
server:
  addr: "127.0.0.1:9000"
  max_upload_mb: 20
retention:
  schedule: "*/30 * * * *"
  max_age: 72h
publisher:
  types: [file, stdout]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TopK != 5 {
		t.Errorf("Expected top_k 5, got %d", cfg.TopK)
	}
	if cfg.OutputDir != "/var/lib/doc-digest" {
		t.Errorf("Expected output_dir '/var/lib/doc-digest', got '%s'", cfg.OutputDir)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Expected addr '127.0.0.1:9000', got '%s'", cfg.Server.Addr)
	}
	if cfg.Server.MaxUploadBytes() != 20*1024*1024 {
		t.Errorf("Expected 20MB upload limit, got %d", cfg.Server.MaxUploadBytes())
	}
	if cfg.Retention.MaxAge != 72*time.Hour {
		t.Errorf("Expected max_age 72h, got %v", cfg.Retention.MaxAge)
	}
	if !cfg.Retention.Enabled() {
		t.Error("Expected retention to be enabled")
	}
	if !cfg.Publisher.Has("stdout") || cfg.Publisher.Has("email") {
		t.Errorf("Unexpected publisher types %v", cfg.Publisher.Types)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TopK != 3 {
		t.Errorf("Expected default top_k 3, got %d", cfg.TopK)
	}
	if cfg.OutputDir != "medias" {
		t.Errorf("Expected default output_dir 'medias', got '%s'", cfg.OutputDir)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default addr ':8080', got '%s'", cfg.Server.Addr)
	}
	if cfg.Server.MaxUploadMB != 10 {
		t.Errorf("Expected default max_upload_mb 10, got %d", cfg.Server.MaxUploadMB)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Expected default log info/json, got %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Retention.Enabled() {
		t.Error("Expected retention to be disabled by default")
	}
	if len(cfg.Publisher.Types) != 1 || cfg.Publisher.Types[0] != "file" {
		t.Errorf("Expected default publisher [file], got %v", cfg.Publisher.Types)
	}
	if cfg.Publisher.Email.SMTPPort != 587 {
		t.Errorf("Expected default SMTP port 587, got %d", cfg.Publisher.Email.SMTPPort)
	}

	def := Default()
	if def.TopK != cfg.TopK || def.OutputDir != cfg.OutputDir {
		t.Errorf("Default() disagrees with loaded defaults: %+v", def)
	}
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("DOC_DIGEST_WEBHOOK", "https://discord.example/webhook")
	cfg, err := Load(writeTempConfig(t, `
publisher:
  types: [discord]
  discord:
    webhook_url: ${DOC_DIGEST_WEBHOOK}
`))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Publisher.Discord.WebhookURL != "https://discord.example/webhook" {
		t.Errorf("Expected expanded webhook URL, got %q", cfg.Publisher.Discord.WebhookURL)
	}
}

func TestUnsetEnvVarKept(t *testing.T) {
	if got := expandEnvVars("dir: ${DOC_DIGEST_SURELY_UNSET}"); got != "dir: ${DOC_DIGEST_SURELY_UNSET}" {
		t.Errorf("Expected unset variable to be kept, got %q", got)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{"negative top_k", "top_k: -1\n", "top_k must be positive"},
		{"bad log format", "log:\n  format: xml\n", "unsupported log format"},
		{"bad log level", "log:\n  level: loud\n", "unsupported log level"},
		{"bad publisher", "publisher:\n  types: [fax]\n", "unsupported publisher type"},
		{"discord without webhook", "publisher:\n  types: [discord]\n", "webhook_url is required"},
		{"email without host", "publisher:\n  types: [email]\n", "smtp_host is required"},
		{"email without to", "publisher:\n  types: [email]\n  email:\n    smtp_host: smtp.example.com\n", "email.to is required"},
		{"bad schedule", "retention:\n  max_age: 1h\n  schedule: nonsense\n", "invalid retention.schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tt.config))
			if err == nil {
				t.Fatalf("Expected error containing %q, got none", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil || !strings.Contains(err.Error(), "failed to read") {
		t.Fatalf("Expected read error, got %v", err)
	}
}
