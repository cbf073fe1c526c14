package persist

import (
	"testing"
	"time"

	"github.com/mwhost/server/internal/config"
)

func TestPoolConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.JournalConfig
		wantMax  int32
		wantMin  int32
		wantApp  string
		wantLife time.Duration
	}{
		{
			name:     "settings applied",
			cfg:      config.JournalConfig{DSN: "postgres://mw@localhost:5432/mw", MaxOpenConns: 8, MaxIdleConns: 2, ConnMaxLifetime: time.Minute},
			wantMax:  8,
			wantMin:  2,
			wantApp:  "mwserver",
			wantLife: time.Minute,
		},
		{
			name:     "idle clamped to max",
			cfg:      config.JournalConfig{DSN: "postgres://mw@localhost:5432/mw", MaxOpenConns: 3, MaxIdleConns: 10, ConnMaxLifetime: time.Hour},
			wantMax:  3,
			wantMin:  3,
			wantApp:  "mwserver",
			wantLife: time.Hour,
		},
		{
			name:     "dsn application name kept",
			cfg:      config.JournalConfig{DSN: "postgres://mw@localhost:5432/mw?application_name=ops", MaxOpenConns: 4, ConnMaxLifetime: time.Hour},
			wantMax:  4,
			wantMin:  0,
			wantApp:  "ops",
			wantLife: time.Hour,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc, err := poolConfig(tt.cfg)
			if err != nil {
				t.Fatalf("poolConfig: %v", err)
			}
			if pc.MaxConns != tt.wantMax || pc.MinConns != tt.wantMin {
				t.Fatalf("conns = %d/%d, want %d/%d", pc.MaxConns, pc.MinConns, tt.wantMax, tt.wantMin)
			}
			if got := pc.ConnConfig.RuntimeParams["application_name"]; got != tt.wantApp {
				t.Fatalf("application_name = %q, want %q", got, tt.wantApp)
			}
			if pc.MaxConnLifetime != tt.wantLife {
				t.Fatalf("lifetime = %v, want %v", pc.MaxConnLifetime, tt.wantLife)
			}
		})
	}
}

func TestPoolConfigBadDSN(t *testing.T) {
	if _, err := poolConfig(config.JournalConfig{DSN: "postgres://%zz"}); err == nil {
		t.Fatal("expected parse error")
	}
}
