package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		t.Logf("Version: %s", version)
	}
}

func TestLoadArgs_Defaults(t *testing.T) {
	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.SourcesDir != "./sources" {
		t.Errorf("Expected sources dir './sources', got '%s'", cfg.SourcesDir)
	}
	if cfg.ProxyMaxAge != 300 {
		t.Errorf("Expected proxy max age 300, got %d", cfg.ProxyMaxAge)
	}
	if cfg.ProxyStaleWhileRevalidate != 86400 {
		t.Errorf("Expected stale-while-revalidate 86400, got %d", cfg.ProxyStaleWhileRevalidate)
	}
	if cfg.Version == "" {
		t.Error("Expected version to be set")
	}
}

func TestLoadArgs_Flags(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--port", "9090",
		"--db-path", "/tmp/dir.db",
		"--proxy-allowed-host", "docs.google.com",
		"--proxy-allowed-host", "example.com",
		"--base-url", "https://directory.example.com/",
		"--debug",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.DBPath != "/tmp/dir.db" {
		t.Errorf("Expected db path '/tmp/dir.db', got '%s'", cfg.DBPath)
	}
	if len(cfg.ProxyAllowedHosts) != 2 || cfg.ProxyAllowedHosts[0] != "docs.google.com" {
		t.Errorf("Expected two allowed hosts, got %v", cfg.ProxyAllowedHosts)
	}
	if cfg.BaseUrl != "https://directory.example.com/" {
		t.Errorf("Expected base url to be set, got '%s'", cfg.BaseUrl)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestLoadArgs_Invalid(t *testing.T) {
	if _, err := LoadArgs([]string{"--worker-count", "0"}); err == nil {
		t.Error("Expected error for zero workers")
	}
	if _, err := LoadArgs([]string{"--base-url", "directory.example.com"}); err == nil {
		t.Error("Expected error for relative base url")
	}
	if _, err := LoadArgs([]string{"--unknown-flag"}); err == nil {
		t.Error("Expected error for unknown flag")
	}
}
