package source

import (
	"time"

	"github.com/lysyi3m/sheet-dir/app/directory"
	"github.com/lysyi3m/sheet-dir/app/sheet"
)

type Config struct {
	Name     string              // Derived from filename (without .yml extension)
	URL      string              `yaml:"url"`
	Format   sheet.Format        `yaml:"format"`
	ProxyURL string              `yaml:"proxy_url"`
	Columns  map[string][]string `yaml:"columns"` // logical field -> candidate headers
	Settings Settings            `yaml:"settings"`
}

type Settings struct {
	Enabled             bool   `yaml:"enabled"`
	RefreshInterval     int    `yaml:"refresh_interval"` // seconds
	Timeout             int    `yaml:"timeout"`          // seconds
	DefaultSort         string `yaml:"default_sort"`
	LogoPath            string `yaml:"logo_path"`
	ExtractDescriptions bool   `yaml:"extract_descriptions"`
}

func (c *Config) Candidates() directory.Candidates {
	overrides := make(directory.Candidates, len(c.Columns))
	for field, names := range c.Columns {
		overrides[directory.Field(field)] = names
	}
	return directory.DefaultCandidates().Merge(overrides)
}

func (c *Config) NormalizeOptions() directory.NormalizeOptions {
	return directory.NormalizeOptions{LogoPath: c.Settings.LogoPath}
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Settings.RefreshInterval) * time.Second
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Settings.Timeout) * time.Second
}

func (c *Config) SortMode() directory.SortMode {
	mode, ok := directory.ParseSortMode(c.Settings.DefaultSort)
	if !ok {
		return directory.SortSource
	}
	return mode
}
