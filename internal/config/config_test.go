package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mwhost/server/internal/netdata"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[server]
name = "weekly"

[session]
release_mode = "enabled"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Name != "weekly" {
		t.Fatalf("name = %q", cfg.Server.Name)
	}
	if cfg.Server.TickRate != 100*time.Millisecond || cfg.Journal.Driver != "sqlite" || cfg.Session.HintCost != 10 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Session.Release() != netdata.PermissionEnabled {
		t.Fatalf("release = %v", cfg.Session.Release())
	}
	if cfg.Session.Collect() != netdata.PermissionAuto {
		t.Fatalf("collect = %v", cfg.Session.Collect())
	}
	if cfg.Session.Remaining() != netdata.PermissionGoal {
		t.Fatalf("remaining = %v", cfg.Session.Remaining())
	}
	if cfg.Server.StartTime == 0 {
		t.Fatalf("start time not stamped")
	}
}

func TestLoadDurations(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[journal]
driver = "none"
flush_interval = "250ms"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Journal.FlushInterval != 250*time.Millisecond {
		t.Fatalf("flush_interval = %v", cfg.Journal.FlushInterval)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"driver", "[journal]\ndriver = \"mysql\"\n", "journal driver"},
		{"format", "[logging]\nformat = \"xml\"\n", "log format"},
		{"hint cost", "[session]\nhint_cost = 101\n", "hint_cost"},
		{"syntax", "[server\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := defaults()
	t.Setenv("MWSERVER_JOURNAL_DSN", "postgres://example/db")
	cfg.ApplyEnv()
	if cfg.Journal.DSN != "postgres://example/db" {
		t.Fatalf("dsn = %q", cfg.Journal.DSN)
	}
}
