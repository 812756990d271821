package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sdorra/adguard-rewrite-sync/internal/adguard"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

const validConfig = `
servers:
  - url: http://localhost:3000
    username: admin
    password: secret
rewrites:
  - domain: x.com
    answer: 1.2.3.4
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.State != StatePresent {
		t.Errorf("Expected default state %q, got %q", StatePresent, cfg.State)
	}
	if cfg.SyncInterval != 0 {
		t.Errorf("Expected default interval 0, got %v", cfg.SyncInterval)
	}
	if cfg.DryRun {
		t.Error("Expected dryRun disabled by default")
	}
	if cfg.Log.Level != "info" || cfg.Log.Env != "prod" {
		t.Errorf("Unexpected log defaults %+v", cfg.Log)
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("Unexpected metrics addr default %q", cfg.Metrics.Addr)
	}
	expected := []adguard.Rewrite{{Domain: "x.com", Answer: "1.2.3.4"}}
	if len(cfg.Rewrites) != 1 || !cfg.Rewrites[0].Equal(expected[0]) {
		t.Errorf("Expected rewrites %+v, got %+v", expected, cfg.Rewrites)
	}
}

func TestLoadFullConfig(t *testing.T) {
	content := `
syncInterval: 5m
state: absent
dryRun: true
servers:
  - url: http://h1
    username: a
    password: p
  - url: http://h2
    username: b
    password: q
rewrites:
  - domain: x.com
    answer: 1.2.3.4
log:
  level: debug
  env: dev
metrics:
  enabled: true
  addr: ":9191"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.SyncInterval != 5*time.Minute {
		t.Errorf("Expected interval 5m, got %v", cfg.SyncInterval)
	}
	if cfg.State != StateAbsent {
		t.Errorf("Expected state absent, got %q", cfg.State)
	}
	if !cfg.DryRun {
		t.Error("Expected dryRun enabled")
	}
	if len(cfg.Servers) != 2 {
		t.Fatalf("Expected 2 servers, got %d", len(cfg.Servers))
	}
	if cfg.Servers[1].URL != "http://h2" || cfg.Servers[1].Username != "b" || cfg.Servers[1].Password != "q" {
		t.Errorf("Unexpected second server %+v", cfg.Servers[1])
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != ":9191" {
		t.Errorf("Unexpected metrics config %+v", cfg.Metrics)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ADGUARD_SYNC_STATE", "absent")
	t.Setenv("ADGUARD_SYNC_INTERVAL", "30s")
	t.Setenv("ADGUARD_SYNC_DRYRUN", "true")
	t.Setenv("ADGUARD_SYNC_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.State != StateAbsent {
		t.Errorf("Expected state overridden to absent, got %q", cfg.State)
	}
	if cfg.SyncInterval != 30*time.Second {
		t.Errorf("Expected interval 30s, got %v", cfg.SyncInterval)
	}
	if !cfg.DryRun {
		t.Error("Expected dryRun overridden to true")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %q", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "invalid state",
			content: `
state: gone
servers:
  - url: http://h1
    username: a
    password: p
`,
			wantErr: "state must be",
		},
		{
			name:    "no servers",
			content: `rewrites: []`,
			wantErr: "at least one server",
		},
		{
			name: "server missing url",
			content: `
servers:
  - username: a
    password: p
`,
			wantErr: "url is required",
		},
		{
			name: "server missing username",
			content: `
servers:
  - url: http://h1
    password: p
`,
			wantErr: "username is required",
		},
		{
			name: "server missing password",
			content: `
servers:
  - url: http://h1
    username: a
`,
			wantErr: "password is required",
		},
		{
			name: "rewrite missing answer",
			content: `
servers:
  - url: http://h1
    username: a
    password: p
rewrites:
  - domain: x.com
`,
			wantErr: "answer is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err)
			}
		})
	}
}

func TestServerRedaction(t *testing.T) {
	s := Server{URL: "http://h1", Username: "admin", Password: "supersecret"}

	if got := s.String(); strings.Contains(got, "supersecret") {
		t.Errorf("String leaks password: %q", got)
	}

	v := s.LogValue()
	for _, attr := range v.Group() {
		if strings.Contains(attr.Value.String(), "supersecret") {
			t.Errorf("LogValue leaks password in attr %q", attr.Key)
		}
	}
}
