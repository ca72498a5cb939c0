package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation"
)

// ValidateConfig checks the defaulted configuration and reports every problem at once.
func ValidateConfig(cfg *Config) error {
	chain := foundation.NewValidatorChain[*Config](
		validateSite,
		validateDocs,
		validateVersioning,
		validateBuild,
		validateServe,
		validateNotify,
	)
	return chain.Validate(cfg).ToError()
}

func invalid(field, code, format string, args ...any) foundation.ValidationResult {
	return foundation.Invalid(foundation.NewValidationError(field, code, fmt.Sprintf(format, args...)))
}

func validateSite(cfg *Config) foundation.ValidationResult {
	base := cfg.Site.BaseURL
	if strings.HasPrefix(base, "/") {
		return foundation.Valid()
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("site.base_url", "format", "must start with / or be an absolute http(s) URL, got %q", base)
	}
	return foundation.Valid()
}

func validateDocs(cfg *Config) foundation.ValidationResult {
	res := foundation.Valid()
	if strings.Contains(cfg.Docs.Path, "..") {
		res = res.Combine(invalid("docs.path", "format", "must stay inside the site directory"))
	}
	if strings.Contains(cfg.Docs.RouteBasePath, "..") {
		res = res.Combine(invalid("docs.route_base_path", "format", "must not contain '..'"))
	}
	minLevel, maxLevel := cfg.Docs.TOCMinHeadingLevel, cfg.Docs.TOCMaxHeadingLevel
	if minLevel < 2 || maxLevel > 6 || minLevel > maxLevel {
		res = res.Combine(invalid("docs.toc_max_heading_level", "range",
			"heading levels must satisfy 2 <= min <= max <= 6, got %d..%d", minLevel, maxLevel))
	}
	if cfg.Docs.EditURL != "" {
		if u, err := url.Parse(cfg.Docs.EditURL); err != nil || u.Scheme == "" {
			res = res.Combine(invalid("docs.edit_url", "format", "must be an absolute URL"))
		}
	}
	return res
}

func validateVersioning(cfg *Config) foundation.ValidationResult {
	v := cfg.Versioning
	res := foundation.Valid()
	seen := map[string]bool{}
	for _, name := range v.Versions {
		switch {
		case strings.TrimSpace(name) == "":
			res = res.Combine(invalid("versioning.versions", "required", "version names cannot be empty"))
		case name == "current":
			res = res.Combine(invalid("versioning.versions", "reserved", "\"current\" is reserved for the unreleased docs"))
		case seen[name]:
			res = res.Combine(invalid("versioning.versions", "duplicate", "duplicate version %q", name))
		}
		seen[name] = true
	}
	if v.LastVersion != "" && v.LastVersion != "current" && len(v.Versions) > 0 && !seen[v.LastVersion] {
		res = res.Combine(invalid("versioning.last_version", "unknown", "version %q is not listed in versioning.versions", v.LastVersion))
	}
	if !v.IncludeCurrentVersion() && len(v.Versions) == 0 {
		res = res.Combine(invalid("versioning.include_current", "empty", "no versions left to build"))
	}
	return res
}

func validateBuild(cfg *Config) foundation.ValidationResult {
	res := foundation.NewValidatorChain[*Config](
		func(c *Config) foundation.ValidationResult {
			return foundation.OneOf("build.on_page_error", []PageErrorMode{PageErrorFail, PageErrorSkip})(c.Build.OnPageError)
		},
		func(c *Config) foundation.ValidationResult {
			return foundation.OneOf("build.on_broken_links", []LinkMode{LinkIgnore, LinkWarn, LinkThrow})(c.Build.OnBrokenLinks)
		},
	).Validate(cfg)
	if cfg.Build.OutputDir == "/" {
		res = res.Combine(invalid("build.output_dir", "format", "refusing to write into /"))
	}
	return res
}

func validateServe(cfg *Config) foundation.ValidationResult {
	res := foundation.Valid()
	if d, err := time.ParseDuration(cfg.Serve.Debounce); err != nil || d < 0 {
		res = res.Combine(invalid("serve.debounce", "format", "must be a non-negative duration, got %q", cfg.Serve.Debounce))
	}
	if cfg.Serve.RefreshInterval != "" {
		if d, err := time.ParseDuration(cfg.Serve.RefreshInterval); err != nil || d < time.Second {
			res = res.Combine(invalid("serve.refresh_interval", "format", "must be a duration of at least 1s, got %q", cfg.Serve.RefreshInterval))
		}
	}
	return res
}

// DebounceDuration is the parsed serve.debounce value.
func (s ServeConfig) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(s.Debounce)
	return d
}

// RefreshDuration is the parsed serve.refresh_interval value, zero when unset.
func (s ServeConfig) RefreshDuration() time.Duration {
	if s.RefreshInterval == "" {
		return 0
	}
	d, _ := time.ParseDuration(s.RefreshInterval)
	return d
}

func validateNotify(cfg *Config) foundation.ValidationResult {
	res := foundation.Valid()
	if raw := cfg.Notify.Backoff; raw != "" {
		if _, err := backoffNormalizer.Parse(string(raw)); err != nil {
			res = res.Combine(invalid("notify.backoff", "enum", "%v", err))
		}
	}
	if r := cfg.Notify.MaxRetries; r != nil && *r < 0 {
		res = res.Combine(invalid("notify.max_retries", "range", "must not be negative, got %d", *r))
	}
	return res
}
