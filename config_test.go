package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]string{"-env", filepath.Join(t.TempDir(), "missing.env")})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Role != "host" || cfg.Addr != ":8080" || cfg.Level != 1 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.PushRate != StatePushRate || cfg.SnapshotRate != SnapshotRate {
		t.Errorf("rates should default to the protocol rates, got %d/%d", cfg.PushRate, cfg.SnapshotRate)
	}
	if cfg.PublicURL != "http://localhost:8080" {
		t.Errorf("unexpected public url %q", cfg.PublicURL)
	}
}

func TestLoadConfigEnvThenFlags(t *testing.T) {
	t.Setenv("GOBLIN_ROLE", "solo")
	t.Setenv("GOBLIN_LEVEL", "2")
	t.Setenv("GOBLIN_FPS", "30")

	cfg, err := LoadConfig([]string{"-env", "nope.env", "-fps", "120", "-addr", "0.0.0.0:9000"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Role != "solo" || cfg.Level != 2 {
		t.Errorf("environment not applied: %+v", cfg)
	}
	if cfg.FrameRate != 120 {
		t.Errorf("flag should override environment, fps %d", cfg.FrameRate)
	}
	if cfg.PublicURL != "http://0.0.0.0:9000" {
		t.Errorf("unexpected public url %q", cfg.PublicURL)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("GOBLIN_PUBLIC_URL=http://lan-box:8080\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("GOBLIN_PUBLIC_URL") })

	cfg, err := LoadConfig([]string{"-env", path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PublicURL != "http://lan-box:8080" {
		t.Errorf("env file not loaded, public url %q", cfg.PublicURL)
	}
	if cfg.EnvFile != path {
		t.Errorf("expected env file %q, got %q", path, cfg.EnvFile)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string][]string{
		"unknown role":   {"-role", "spectator"},
		"client no host": {"-role", "client"},
		"level too high": {"-level", "99"},
		"zero rate":      {"-push-rate", "0"},
		"bad flag":       {"-bogus"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			args = append([]string{"-env", "nope.env"}, args...)
			if _, err := LoadConfig(args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadConfigClient(t *testing.T) {
	cfg, err := LoadConfig([]string{"-env", "nope.env", "-role", "client", "-host", "ws://10.0.0.2:8080", "-ticket", "abc"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HostURL != "ws://10.0.0.2:8080" || cfg.Ticket != "abc" {
		t.Errorf("unexpected client config %+v", cfg)
	}
}
