package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/sheet-dir/app/directory"
	"github.com/lysyi3m/sheet-dir/app/sheet"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "nouns.yml", `
url: "https://docs.google.com/spreadsheets/d/e/abc/pub?output=csv"
proxy_url: "https://directory.example.com/proxy"

columns:
  description: ["Description", "Desc"]

settings:
  enabled: true
  refresh_interval: 600
  timeout: 15
  default_sort: "az"
  logo_path: "/img/%s.webp"
  extract_descriptions: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 config, got %d", configCache.GetConfigCount())
	}

	config, err := configCache.GetConfig("nouns")
	if err != nil {
		t.Fatal(err)
	}

	if config.Name != "nouns" {
		t.Errorf("Expected name 'nouns', got '%s'", config.Name)
	}
	if config.Format != sheet.FormatCSV {
		t.Errorf("Expected default format csv, got '%s'", config.Format)
	}
	if config.ProxyURL != "https://directory.example.com/proxy" {
		t.Errorf("Expected proxy URL, got '%s'", config.ProxyURL)
	}
	if config.RefreshInterval() != 600*time.Second {
		t.Errorf("Expected refresh interval 600s, got %v", config.RefreshInterval())
	}
	if config.Timeout() != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", config.Timeout())
	}
	if config.SortMode() != directory.SortTitle {
		t.Errorf("Expected sort 'az', got '%s'", config.SortMode())
	}
	if !config.Settings.ExtractDescriptions {
		t.Error("Expected extract_descriptions to be enabled")
	}

	candidates := config.Candidates()
	if got := candidates[directory.FieldDescription]; len(got) != 2 || got[1] != "Desc" {
		t.Errorf("Expected overridden description candidates, got %v", got)
	}
	if got := candidates[directory.FieldTitle]; len(got) == 0 {
		t.Error("Expected default title candidates to be kept")
	}
	if got := config.NormalizeOptions().LogoPath; got != "/img/%s.webp" {
		t.Errorf("Expected logo path '/img/%%s.webp', got '%s'", got)
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "minimal.yml", `
url: "https://example.com/sheet.csv"
settings:
  enabled: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("minimal")
	if err != nil {
		t.Fatal(err)
	}

	if config.Settings.RefreshInterval != 300 {
		t.Errorf("Expected default refresh interval 300, got %d", config.Settings.RefreshInterval)
	}
	if config.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", config.Settings.Timeout)
	}
	if config.SortMode() != directory.SortSource {
		t.Errorf("Expected default sort 'source', got '%s'", config.SortMode())
	}
	if config.Settings.LogoPath != directory.DefaultLogoPath {
		t.Errorf("Expected default logo path, got '%s'", config.Settings.LogoPath)
	}
}

func TestConfigCacheValidation(t *testing.T) {
	cases := map[string]string{
		"missing url":    "settings:\n  enabled: true\n",
		"bad format":     "url: \"https://x\"\nformat: xlsx\n",
		"bad sort":       "url: \"https://x\"\nsettings:\n  default_sort: newest\n",
		"bad logo path":  "url: \"https://x\"\nsettings:\n  logo_path: /logos/static.png\n",
		"unknown column": "url: \"https://x\"\ncolumns:\n  author: [\"Author\"]\n",
		"empty column":   "url: \"https://x\"\ncolumns:\n  title: []\n",
		"negative":       "url: \"https://x\"\nsettings:\n  timeout: -1\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeConfig(t, tempDir, "bad.yml", content)

			err := NewConfigCache(tempDir).Run()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), "bad.yml") {
				t.Errorf("Expected error to name the file, got: %v", err)
			}
		})
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "missing"))
	if err := configCache.Run(); err != nil {
		t.Errorf("Expected no error for missing directory, got: %v", err)
	}
	if _, err := configCache.GetConfig("anything"); err == nil {
		t.Error("Expected error for unknown source")
	}
}

func TestConfigCacheEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "on.yml", "url: \"https://a\"\nsettings:\n  enabled: true\n")
	writeConfig(t, tempDir, "off.yml", "url: \"https://b\"\nsettings:\n  enabled: false\n")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 1 || enabled["on"] == nil {
		t.Errorf("Expected only 'on' to be enabled, got %v", enabled)
	}
	if len(configCache.GetConfigs()) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(configCache.GetConfigs()))
	}
}
