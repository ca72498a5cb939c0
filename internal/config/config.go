// Package config loads the pagebuilder site configuration.
package config

// Config is the site configuration file.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Docs       DocsConfig       `yaml:"docs"`
	Versioning VersioningConfig `yaml:"versioning"`
	Components ComponentsConfig `yaml:"components"`
	Build      BuildConfig      `yaml:"build"`
	Serve      ServeConfig      `yaml:"serve"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Notify     NotifyConfig     `yaml:"notify"`
}

// SiteConfig describes the site as a whole.
type SiteConfig struct {
	Title   string `yaml:"title"`
	BaseURL string `yaml:"base_url"`
	// Dir is the site root; content and sidebar paths are relative to it.
	// A relative Dir is resolved against the config file's directory.
	Dir  string `yaml:"dir"`
	Lang string `yaml:"lang,omitempty"`
}

// DocsConfig configures the docs content plugin.
type DocsConfig struct {
	Path          string `yaml:"path"`
	RouteBasePath string `yaml:"route_base_path"`
	SidebarPath   string `yaml:"sidebar_path"`
	TagsBasePath  string `yaml:"tags_base_path,omitempty"`

	EditURL    string `yaml:"edit_url,omitempty"`
	Repository string `yaml:"repository,omitempty"`
	Branch     string `yaml:"branch,omitempty"`
	Forge      string `yaml:"forge,omitempty"`

	IncludeDrafts        bool `yaml:"include_drafts,omitempty"`
	ShowLastUpdateAuthor bool `yaml:"show_last_update_author,omitempty"`
	ShowLastUpdateTime   bool `yaml:"show_last_update_time,omitempty"`

	TOCMinHeadingLevel int `yaml:"toc_min_heading_level,omitempty"`
	TOCMaxHeadingLevel int `yaml:"toc_max_heading_level,omitempty"`
}

// VersioningConfig lists the released versions of the docs.
type VersioningConfig struct {
	// Versions are released version names, newest first. When empty they are
	// read from versions.json in the site directory.
	Versions       []string                   `yaml:"versions,omitempty"`
	LastVersion    string                     `yaml:"last_version,omitempty"`
	IncludeCurrent *bool                      `yaml:"include_current,omitempty"`
	Overrides      map[string]VersionOverride `yaml:"overrides,omitempty"`
}

// VersionOverride changes the label or URL path of one version.
type VersionOverride struct {
	Label string  `yaml:"label,omitempty"`
	Path  *string `yaml:"path,omitempty"`
}

// ComponentsConfig selects the components available to MDX bodies.
type ComponentsConfig struct {
	// Enabled names the built-in components to register; empty means all.
	Enabled        []string `yaml:"enabled,omitempty"`
	HighlightStyle string   `yaml:"highlight_style,omitempty"`
}

// BuildConfig controls a build run.
type BuildConfig struct {
	Concurrency   int           `yaml:"concurrency,omitempty"`
	OnPageError   PageErrorMode `yaml:"on_page_error,omitempty"`
	OnBrokenLinks LinkMode      `yaml:"on_broken_links,omitempty"`
	OutputDir     string        `yaml:"output_dir"`
	Clean         *bool         `yaml:"clean,omitempty"`
	// ManifestCBOR also writes routes.cbor.zst next to routes.json.
	ManifestCBOR bool `yaml:"manifest_cbor,omitempty"`
	// HistoryDB is the SQLite build history file. Empty disables history.
	HistoryDB string `yaml:"history_db,omitempty"`
}

// ServeConfig configures the development server.
type ServeConfig struct {
	Addr     string `yaml:"addr"`
	Debounce string `yaml:"debounce,omitempty"`
	// RefreshInterval rebuilds periodically (e.g. "10m") in addition to file watching.
	RefreshInterval string `yaml:"refresh_interval,omitempty"`
}

// MonitoringConfig represents monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Logging MonitoringLogging `yaml:"logging"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
	// Textfile receives the metrics after each one-shot build.
	Textfile string `yaml:"textfile,omitempty"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// NotifyConfig publishes build summaries to NATS.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
	// MaxRetries and Backoff (fixed, linear, exponential) control publish retries.
	MaxRetries *int        `yaml:"max_retries,omitempty"`
	Backoff    BackoffMode `yaml:"backoff,omitempty"`
}

// IncludeCurrentVersion reports whether the current (unreleased) docs are built.
func (v VersioningConfig) IncludeCurrentVersion() bool {
	return v.IncludeCurrent == nil || *v.IncludeCurrent
}

// CleanOutput reports whether the output directory is emptied before writing.
func (b BuildConfig) CleanOutput() bool {
	return b.Clean == nil || *b.Clean
}
