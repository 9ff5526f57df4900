package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	SourcesDir        string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Proxy configuration
	ProxyMaxAge               int
	ProxyStaleWhileRevalidate int
	ProxyAllowedHosts         []string
	ProxyTimeout              int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
