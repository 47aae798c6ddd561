package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadTOMLFillsFromDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[Server]
Address = ":9999"
Store = "postgres"
DSN = "postgres://localhost/gridwalk?sslmode=disable"

[World]
ViewRadius = 25
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := ReadTOML(path)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}

	if cfg.Server.Address != ":9999" || cfg.Server.Store != "postgres" {
		t.Fatalf("file values not applied: %+v", cfg.Server)
	}
	if cfg.World.ViewRadius != 25 {
		t.Fatalf("expected ViewRadius 25, got %d", cfg.World.ViewRadius)
	}
	// Fields absent from the file keep their defaults.
	if cfg.World.Speed != Default().World.Speed {
		t.Fatalf("default speed lost: %v", cfg.World.Speed)
	}
	if cfg.Client.ServerURL != Default().Client.ServerURL {
		t.Fatalf("default client URL lost: %v", cfg.Client.ServerURL)
	}
}

func TestReadTOMLMissingFile(t *testing.T) {
	if _, err := ReadTOML(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestReadTOMLRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("= not toml ="), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	if _, err := ReadTOML(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}
