package airride

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigMatchesSpecPaths(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ServicesDir != "/etc/airride/services" {
		t.Errorf("ServicesDir = %q", cfg.ServicesDir)
	}
	if cfg.LogDir != "/var/log/airride" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.SocketPath != "/run/airride.sock" {
		t.Errorf("SocketPath = %q", cfg.SocketPath)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigOverlaysPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airride.yaml")
	content := "services_dir: /custom/services\nhistory_db: /var/lib/airride/history.db\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ServicesDir != "/custom/services" {
		t.Errorf("ServicesDir = %q", cfg.ServicesDir)
	}
	if cfg.HistoryDB != "/var/lib/airride/history.db" {
		t.Errorf("HistoryDB = %q", cfg.HistoryDB)
	}
	// Unset fields in the file should keep their defaults.
	if cfg.LogDir != "/var/log/airride" {
		t.Errorf("LogDir = %q, should keep default", cfg.LogDir)
	}
}

func TestLoadConfigMalformedFileReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airride.yaml")
	if err := os.WriteFile(path, []byte("not: valid: yaml: [["), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for malformed yaml")
	}
}
