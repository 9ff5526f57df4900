package api

import (
	"time"

	"github.com/lysyi3m/sheet-dir/app/database"
	"github.com/lysyi3m/sheet-dir/app/directory"
	"github.com/lysyi3m/sheet-dir/app/fetch"
	"github.com/lysyi3m/sheet-dir/app/source"
	"github.com/lysyi3m/sheet-dir/app/state"
	"github.com/lysyi3m/sheet-dir/app/tasks"
)

type ProxyOptions struct {
	MaxAge               int // s-maxage, seconds
	StaleWhileRevalidate int // seconds
	AllowedHosts         []string
	Timeout              time.Duration
}

type Handler struct {
	configCache *source.ConfigCache
	store       *state.Store
	sourceRepo  database.SourceRepository
	scheduler   tasks.TaskSchedulerInterface
	deps        *tasks.Dependencies
	fetcher     *fetch.Fetcher
	baseURL     string
	proxy       ProxyOptions
}

type DirectoryResponse struct {
	Name         string             `json:"name"`
	State        state.Status       `json:"state"`
	Error        string             `json:"error,omitempty"`
	Stale        bool               `json:"stale"`
	InFlight     bool               `json:"in_flight"`
	LoadedAt     *time.Time         `json:"loaded_at,omitempty"`
	TagMode      directory.TagMode  `json:"tag_mode"`
	Tags         []string           `json:"tags"`
	SelectedTags []string           `json:"selected_tags"`
	Query        string             `json:"query"`
	Sort         directory.SortMode `json:"sort"`
	Total        int                `json:"total"`
	Count        int                `json:"count"`
	Entries      []directory.Entry  `json:"entries"`
}

type TagsResponse struct {
	Name    string            `json:"name"`
	State   state.Status      `json:"state"`
	TagMode directory.TagMode `json:"tag_mode"`
	Tags    []string          `json:"tags"`
}

type DirectorySummary struct {
	Name         string       `json:"name"`
	URL          string       `json:"url"`
	Format       string       `json:"format"`
	Enabled      bool         `json:"enabled"`
	State        state.Status `json:"state"`
	Error        string       `json:"error,omitempty"`
	Stale        bool         `json:"stale"`
	InFlight     bool         `json:"in_flight"`
	EntryCount   int          `json:"entry_count"`
	TagCount     int          `json:"tag_count"`
	LastLoadedAt *time.Time   `json:"last_loaded_at,omitempty"`
	NextLoadAt   *time.Time   `json:"next_load_at,omitempty"`
}
