package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/sheet-dir/app/database"
	"github.com/lysyi3m/sheet-dir/app/directory"
	"github.com/lysyi3m/sheet-dir/app/fetch"
	"github.com/lysyi3m/sheet-dir/app/source"
	"github.com/lysyi3m/sheet-dir/app/state"
	"github.com/lysyi3m/sheet-dir/app/tasks"
)

func NewHandler(configCache *source.ConfigCache, sourceRepo database.SourceRepository,
	scheduler tasks.TaskSchedulerInterface, deps *tasks.Dependencies, baseURL string, proxy ProxyOptions) *Handler {
	return &Handler{
		configCache: configCache,
		store:       deps.Loader.Store(),
		sourceRepo:  sourceRepo,
		scheduler:   scheduler,
		deps:        deps,
		fetcher:     deps.Fetcher,
		baseURL:     strings.TrimRight(baseURL, "/"),
		proxy:       proxy,
	}
}

func (h *Handler) ListDirectories(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	directories := make([]DirectorySummary, 0, len(names))
	for _, name := range names {
		sourceConfig := configs[name]
		snapshot := h.snapshot(name)

		summary := DirectorySummary{
			Name:       name,
			URL:        sourceConfig.URL,
			Format:     string(sourceConfig.Format),
			Enabled:    sourceConfig.Settings.Enabled,
			State:      snapshot.Status,
			Error:      snapshot.Error,
			Stale:      snapshot.Collection.Stale,
			InFlight:   snapshot.InFlight,
			EntryCount: len(snapshot.Collection.Entries),
			TagCount:   len(snapshot.Collection.Tags),
		}

		if src, err := h.sourceRepo.GetSource(name); err == nil && src != nil {
			summary.LastLoadedAt = src.LastLoadedAt
			summary.NextLoadAt = src.NextLoadAt
		} else if err != nil {
			slog.Warn("Database error", "operation", "get_source", "source", name, "error", err)
		}

		directories = append(directories, summary)
	}

	c.JSON(http.StatusOK, gin.H{
		"directories": directories,
		"total":       len(directories),
	})
}

func (h *Handler) GetDirectory(c *gin.Context) {
	name := c.Param("name")

	sourceConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Directory not found"})
		return
	}

	sortMode := sourceConfig.SortMode()
	if raw := c.Query("sort"); raw != "" {
		parsed, ok := directory.ParseSortMode(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid sort mode %q", raw)})
			return
		}
		sortMode = parsed
	}

	snapshot := h.snapshot(name)
	collection := snapshot.Collection

	filterState := directory.FilterState{
		SelectedTags: selectedTags(c),
		Query:        c.Query("q"),
		TagMode:      collection.TagMode,
		Sort:         sortMode,
	}

	etag := directoryETag(snapshot, filterState)
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}

	entries := directory.Filter(collection.Entries, filterState)
	if entries == nil {
		entries = []directory.Entry{}
	}
	for i := range entries {
		entries[i].Image = h.absoluteURL(entries[i].Image)
	}

	response := DirectoryResponse{
		Name:         name,
		State:        snapshot.Status,
		Error:        snapshot.Error,
		Stale:        collection.Stale,
		InFlight:     snapshot.InFlight,
		TagMode:      collection.TagMode,
		Tags:         nonNil(collection.Tags),
		SelectedTags: nonNil(filterState.SelectedTags),
		Query:        filterState.Query,
		Sort:         sortMode,
		Total:        len(collection.Entries),
		Count:        len(entries),
		Entries:      entries,
	}
	if !collection.LoadedAt.IsZero() {
		loadedAt := collection.LoadedAt
		response.LoadedAt = &loadedAt
	}

	c.Header("ETag", etag)
	c.Header("X-Directory-Entries", strconv.Itoa(len(entries)))
	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetDirectoryTags(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Directory not found"})
		return
	}

	snapshot := h.snapshot(name)

	c.JSON(http.StatusOK, TagsResponse{
		Name:    name,
		State:   snapshot.Status,
		TagMode: snapshot.Collection.TagMode,
		Tags:    nonNil(snapshot.Collection.Tags),
	})
}

// Proxy fetches url server-side and forwards status and body verbatim with a
// shared cache directive.
func (h *Handler) Proxy(c *gin.Context) {
	target := c.Query("url")
	if target == "" {
		c.String(http.StatusBadRequest, "Missing url")
		return
	}

	targetURL, err := url.Parse(target)
	if err != nil || (targetURL.Scheme != "http" && targetURL.Scheme != "https") || targetURL.Host == "" {
		c.String(http.StatusBadRequest, "Invalid url")
		return
	}

	if !h.hostAllowed(targetURL.Hostname()) {
		c.String(http.StatusForbidden, "Host not allowed")
		return
	}

	ctx := c.Request.Context()
	if h.proxy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.proxy.Timeout)
		defer cancel()
	}

	resp, err := h.fetcher.Get(ctx, target)
	if err != nil {
		slog.Warn("Proxy fetch failed", "url", target, "error", err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("Proxy read failed", "url", target, "error", err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}

	c.Header("Cache-Control", fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d", h.proxy.MaxAge, h.proxy.StaleWhileRevalidate))
	c.Data(resp.StatusCode, contentType, body)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	}

	loaded := 0
	for _, name := range h.store.Names() {
		if snapshot, ok := h.store.Get(name); ok && snapshot.Status == state.StatusLoaded {
			loaded++
		}
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()
	health["loaded_directories"] = loaded

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIGetDirectoryDetails(c *gin.Context) {
	name := c.Param("name")

	sourceConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Directory configuration not found"})
		return
	}

	details := map[string]interface{}{
		"name":                 name,
		"url":                  sourceConfig.URL,
		"format":               sourceConfig.Format,
		"proxy_url":            sourceConfig.ProxyURL,
		"enabled":              sourceConfig.Settings.Enabled,
		"refresh_interval":     sourceConfig.RefreshInterval().String(),
		"timeout":              sourceConfig.Timeout().String(),
		"default_sort":         sourceConfig.SortMode(),
		"extract_descriptions": sourceConfig.Settings.ExtractDescriptions,
	}

	src, err := h.sourceRepo.GetSource(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if src != nil {
		details["database"] = map[string]interface{}{
			"last_status":    src.LastStatus,
			"last_error":     src.LastError,
			"entry_count":    src.EntryCount,
			"fingerprint":    src.Fingerprint,
			"last_loaded_at": src.LastLoadedAt,
			"next_load_at":   src.NextLoadAt,
			"created_at":     src.CreatedAt,
			"updated_at":     src.UpdatedAt,
		}

		if loads, err := h.sourceRepo.GetRecentLoads(name, 10); err == nil {
			history := make([]map[string]interface{}, 0, len(loads))
			for _, load := range loads {
				history = append(history, map[string]interface{}{
					"status":      load.Status,
					"error":       load.Error,
					"entry_count": load.EntryCount,
					"duration":    load.Duration.String(),
					"created_at":  load.CreatedAt,
				})
			}
			details["loads"] = history
		}
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APIReloadDirectory(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Directory configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Directory configuration not found"})
		return
	}

	sourceConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncSourceConfigTask(name, sourceConfig, h.sourceRepo)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	queued := []gin.H{{"id": syncTask.ID, "type": syncTask.Type}}

	if sourceConfig.Settings.Enabled {
		loadTask := tasks.NewLoadDirectoryTask(name, sourceConfig, h.deps)
		if err := h.scheduler.EnqueueTask(loadTask); err != nil {
			slog.Error("Error enqueueing load task", "source", name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to enqueue load task",
				"details": err.Error(),
			})
			return
		}
		queued = append(queued, gin.H{"id": loadTask.ID, "type": loadTask.Type})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded and tasks enqueued successfully",
		"directory": gin.H{
			"name":    name,
			"url":     sourceConfig.URL,
			"enabled": sourceConfig.Settings.Enabled,
		},
		"tasks": queued,
	})
}

func (h *Handler) snapshot(name string) state.Snapshot {
	snapshot, ok := h.store.Get(name)
	if !ok {
		return state.Snapshot{Status: state.StatusLoading, Collection: state.EmptyCollection()}
	}
	return snapshot
}

// absoluteURL prefixes root-relative paths, such as derived logo paths, with
// the public base URL when one is configured.
func (h *Handler) absoluteURL(path string) string {
	if h.baseURL == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return path
	}
	return h.baseURL + path
}

func (h *Handler) hostAllowed(host string) bool {
	if len(h.proxy.AllowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	return slices.ContainsFunc(h.proxy.AllowedHosts, func(allowed string) bool {
		return strings.EqualFold(strings.TrimSpace(allowed), host)
	})
}

// selectedTags accepts repeated tag parameters as well as comma or semicolon
// lists. Each toggle parameter then adds or removes one tag, and clear drops
// the whole selection, so a client can echo selected_tags back unchanged.
func selectedTags(c *gin.Context) []string {
	if clear, _ := strconv.ParseBool(c.Query("clear")); clear {
		return nil
	}

	var tags []string
	for _, value := range c.QueryArray("tag") {
		tags = append(tags, directory.SplitList(value)...)
	}
	for _, tag := range c.QueryArray("toggle") {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		tags = directory.ToggleTag(tags, strings.TrimSpace(tag))
	}
	return tags
}

func directoryETag(snapshot state.Snapshot, filterState directory.FilterState) string {
	parts := []string{
		string(snapshot.Status),
		snapshot.Error,
		snapshot.Collection.Fingerprint,
		strconv.FormatUint(snapshot.Seq, 10),
		strconv.FormatBool(snapshot.Collection.Stale),
		strconv.FormatBool(snapshot.InFlight),
		strings.Join(filterState.SelectedTags, ","),
		filterState.Query,
		string(filterState.Sort),
	}
	return `"` + fetch.Fingerprint([]byte(strings.Join(parts, "\x00"))) + `"`
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
