package config

import (
	"fmt"
	"runtime"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier runs the domain appliers in order.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the appliers for every configuration domain.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&SiteDefaultApplier{},
			&DocsDefaultApplier{},
			&ComponentsDefaultApplier{},
			&BuildDefaultApplier{},
			&ServeDefaultApplier{},
			&MonitoringDefaultApplier{},
			&NotifyDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

// GetApplierByDomain returns a specific domain applier.
func (c *CompositeDefaultApplier) GetApplierByDomain(domain string) DefaultApplier {
	for _, applier := range c.appliers {
		if applier.Domain() == domain {
			return applier
		}
	}
	return nil
}

// SiteDefaultApplier handles site defaults.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Documentation"
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = "/"
	}
	if cfg.Site.Dir == "" {
		cfg.Site.Dir = "."
	}
	if cfg.Site.Lang == "" {
		cfg.Site.Lang = "en"
	}
	return nil
}

// DocsDefaultApplier handles docs plugin defaults.
type DocsDefaultApplier struct{}

func (d *DocsDefaultApplier) Domain() string { return "docs" }

func (d *DocsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Docs.Path == "" {
		cfg.Docs.Path = "docs"
	}
	if cfg.Docs.RouteBasePath == "" {
		cfg.Docs.RouteBasePath = "docs"
	}
	if cfg.Docs.SidebarPath == "" {
		cfg.Docs.SidebarPath = "sidebars.jsonc"
	}
	if cfg.Docs.TagsBasePath == "" {
		cfg.Docs.TagsBasePath = "tags"
	}
	if cfg.Docs.Branch == "" {
		cfg.Docs.Branch = "main"
	}
	if cfg.Docs.TOCMinHeadingLevel == 0 {
		cfg.Docs.TOCMinHeadingLevel = 2
	}
	if cfg.Docs.TOCMaxHeadingLevel == 0 {
		cfg.Docs.TOCMaxHeadingLevel = 3
	}
	return nil
}

// ComponentsDefaultApplier handles component defaults.
type ComponentsDefaultApplier struct{}

func (c *ComponentsDefaultApplier) Domain() string { return "components" }

func (c *ComponentsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Components.HighlightStyle == "" {
		cfg.Components.HighlightStyle = "github"
	}
	return nil
}

// BuildDefaultApplier handles build defaults.
type BuildDefaultApplier struct{}

func (b *BuildDefaultApplier) Domain() string { return "build" }

func (b *BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.Concurrency <= 0 {
		cfg.Build.Concurrency = runtime.NumCPU()
	}
	if cfg.Build.OnPageError == "" {
		cfg.Build.OnPageError = PageErrorFail
	}
	if cfg.Build.OnBrokenLinks == "" {
		cfg.Build.OnBrokenLinks = LinkWarn
	}
	if cfg.Build.OutputDir == "" {
		cfg.Build.OutputDir = "build"
	}
	return nil
}

// ServeDefaultApplier handles dev server defaults.
type ServeDefaultApplier struct{}

func (s *ServeDefaultApplier) Domain() string { return "serve" }

func (s *ServeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = "127.0.0.1:3000"
	}
	if cfg.Serve.Debounce == "" {
		cfg.Serve.Debounce = "300ms"
	}
	return nil
}

// MonitoringDefaultApplier handles monitoring defaults.
type MonitoringDefaultApplier struct{}

func (m *MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (m *MonitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Monitoring.Metrics.Path == "" {
		cfg.Monitoring.Metrics.Path = "/metrics"
	}
	if cfg.Monitoring.Logging.Level == "" {
		cfg.Monitoring.Logging.Level = LogLevelInfo
	}
	if cfg.Monitoring.Logging.Format == "" {
		cfg.Monitoring.Logging.Format = LogFormatText
	}
	return nil
}

// NotifyDefaultApplier handles notification defaults.
type NotifyDefaultApplier struct{}

func (n *NotifyDefaultApplier) Domain() string { return "notify" }

func (n *NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notify.NATSURL != "" && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "pagebuilder.builds"
	}
	return nil
}
