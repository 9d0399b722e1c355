package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seatlens/seatlens/pkg/errs"
)

func TestParseClick(t *testing.T) {
	tests := []struct {
		in      string
		x, y    float64
		wantErr bool
	}{
		{"0.5,0.65", 0.5, 0.65, false},
		{"0, 1", 0, 1, false},
		{" 0.25 , 0.75 ", 0.25, 0.75, false},
		{"0.5", 0, 0, true},
		{"0.5,0.6,0.7", 0, 0, true},
		{"a,b", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		p, err := parseClick(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseClick(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errs.Is(err, errs.ErrCodeInvalidClick) {
				t.Errorf("parseClick(%q) code = %v", tt.in, errs.GetCode(err))
			}
			continue
		}
		if p.X != tt.x || p.Y != tt.y {
			t.Errorf("parseClick(%q) = (%v, %v), want (%v, %v)", tt.in, p.X, p.Y, tt.x, tt.y)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// No config file anywhere near a fresh temp dir.
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.VenuesDir != "venues" {
		t.Errorf("venues_dir = %q", cfg.VenuesDir)
	}
	if time.Duration(cfg.Cache.TTL) != 45*time.Minute {
		t.Errorf("ttl = %v", time.Duration(cfg.Cache.TTL))
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seatlens.toml")
	content := `
venues_dir = "configs/venues"

[server]
addr = ":9000"

[render]
url = "http://gpu:8000"
timeout = "90s"
attempts = 5

[cache]
max_entries = 64
ttl = "10m"
redis_url = "redis://localhost:6379/0"
dir = "/var/cache/seatlens"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Render.URL != "http://gpu:8000" || cfg.Render.Attempts != 5 {
		t.Errorf("render = %+v", cfg.Render)
	}
	if time.Duration(cfg.Render.Timeout) != 90*time.Second {
		t.Errorf("timeout = %v", time.Duration(cfg.Render.Timeout))
	}
	if cfg.Cache.MaxEntries != 64 || cfg.Cache.RedisURL == "" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Dir != "/var/cache/seatlens" {
		t.Errorf("cache dir = %q", cfg.Cache.Dir)
	}
	// Unset keys keep their defaults.
	if cfg.Cache.MaxBytes == 0 {
		t.Error("max_bytes lost its default")
	}
}

func TestFrameDir(t *testing.T) {
	cfg := defaultConfig()
	cfg.Cache.Dir = "/tmp/frames"
	dir, err := cfg.frameDir()
	if err != nil {
		t.Fatalf("frameDir() error = %v", err)
	}
	if dir != "/tmp/frames" {
		t.Errorf("frameDir() = %q, want configured dir", dir)
	}

	cfg.Cache.Dir = ""
	dir, err = cfg.frameDir()
	if err != nil {
		t.Fatalf("frameDir() error = %v", err)
	}
	if filepath.Base(filepath.Dir(dir)) != "seatlens" || filepath.Base(dir) != "renders" {
		t.Errorf("frameDir() = %q, want <user cache>/seatlens/renders", dir)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seatlens.toml")
	if err := os.WriteFile(path, []byte("venue_dir = \"typo\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(path); err == nil {
		t.Fatal("loadConfig() accepted an unknown key")
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("loadConfig() ignored a missing explicit path")
	}
}
