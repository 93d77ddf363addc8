package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("missing file changed defaults: %+v", cfg)
	}
}

func TestLoad_OverridesOnlyNamedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	data := "server_url: ws://sim.example:9000/ws\nreconnect_max: 30s\ndanger_threshold: 0.6\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "ws://sim.example:9000/ws" {
		t.Fatalf("server_url not applied: %s", cfg.ServerURL)
	}
	if cfg.DangerThreshold != 0.6 {
		t.Fatalf("danger_threshold not applied: %g", cfg.DangerThreshold)
	}
	_, maxD, ping := cfg.Durations()
	if maxD != 30*time.Second {
		t.Fatalf("reconnect_max not applied: %v", maxD)
	}
	if ping != 20*time.Second {
		t.Fatalf("unnamed field lost its default: %v", ping)
	}
	if cfg.TileW != Default().TileW {
		t.Fatalf("unnamed tile_w lost its default: %g", cfg.TileW)
	}
}

func TestLoad_BadDurationRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	if err := os.WriteFile(path, []byte("reconnect_min: soon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("unparseable duration accepted")
	}
}
