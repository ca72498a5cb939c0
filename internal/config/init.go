package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Site: SiteConfig{
			Title:   "My Documentation",
			BaseURL: "/",
			Dir:     ".",
		},
		Docs: DocsConfig{
			Path:          "docs",
			RouteBasePath: "docs",
			SidebarPath:   "sidebars.jsonc",
			Repository:    "https://github.com/example/docs",
			Branch:        "main",
		},
		Components: ComponentsConfig{
			Enabled: []string{"Callout", "Tabs", "TabItem", "Details", "Badge", "Kbd"},
		},
		Build: BuildConfig{
			OnPageError:   PageErrorFail,
			OnBrokenLinks: LinkWarn,
			OutputDir:     "build",
			HistoryDB:     ".pagebuilder/history.db",
		},
		Serve: ServeConfig{
			Addr:     "127.0.0.1:3000",
			Debounce: "300ms",
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
