package cfg

import (
	"fmt"
	"net/url"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./sheet-dir.db" description:"Path to the sqlite database file"`

	// Application configuration
	SourcesDir        string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing directory source configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL used to make derived logo paths absolute (e.g., https://directory.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for source loading"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for operator endpoints (optional)"`

	// Proxy configuration
	ProxyMaxAge               int      `long:"proxy-max-age" env:"PROXY_MAX_AGE" default:"300" description:"Shared cache lifetime (s-maxage) of proxied responses in seconds"`
	ProxyStaleWhileRevalidate int      `long:"proxy-stale-while-revalidate" env:"PROXY_STALE_WHILE_REVALIDATE" default:"86400" description:"How long a stale proxied response may be served while revalidating, in seconds"`
	ProxyAllowedHosts         []string `long:"proxy-allowed-host" env:"PROXY_ALLOWED_HOSTS" env-delim:"," description:"Hosts the proxy may fetch from (repeatable; empty allows any)"`
	ProxyTimeout              int      `long:"proxy-timeout" env:"PROXY_TIMEOUT" default:"30" description:"Upstream timeout of the proxy in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Sheet Dir/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:                    raw.DBPath,
		SourcesDir:                raw.SourcesDir,
		Port:                      raw.Port,
		BaseUrl:                   raw.BaseUrl,
		WorkerCount:               raw.WorkerCount,
		SchedulerInterval:         raw.SchedulerInterval,
		APIAccessKey:              raw.APIAccessKey,
		ProxyMaxAge:               raw.ProxyMaxAge,
		ProxyStaleWhileRevalidate: raw.ProxyStaleWhileRevalidate,
		ProxyAllowedHosts:         raw.ProxyAllowedHosts,
		ProxyTimeout:              raw.ProxyTimeout,
		UserAgent:                 raw.UserAgent,
		Timezone:                  raw.Timezone,
		Debug:                     raw.Debug,
		Version:                   GetVersion(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func (c *Cfg) validate() error {
	if c.WorkerCount < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	if c.SchedulerInterval < 1 {
		return fmt.Errorf("scheduler interval must be at least 1 second")
	}
	if c.BaseUrl != "" {
		u, err := url.Parse(c.BaseUrl)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("base url must be an absolute http(s) URL, got %q", c.BaseUrl)
		}
	}
	if c.ProxyMaxAge < 0 || c.ProxyStaleWhileRevalidate < 0 || c.ProxyTimeout < 0 {
		return fmt.Errorf("proxy durations must be non-negative")
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
