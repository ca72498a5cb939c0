package config

import "git.home.luguber.info/inful/pagebuilder/internal/foundation/normalization"

// PageErrorMode decides what a failing page does to the build.
type PageErrorMode string

const (
	PageErrorFail PageErrorMode = "fail"
	PageErrorSkip PageErrorMode = "skip"
)

var pageErrorNormalizer = normalization.NewNormalizer(map[string]PageErrorMode{
	"fail": PageErrorFail,
	"skip": PageErrorSkip,
}, "")

// NormalizePageErrorMode returns the canonical mode or "" when raw is unknown.
func NormalizePageErrorMode(raw string) PageErrorMode {
	return pageErrorNormalizer.Normalize(raw)
}

// LinkMode decides how broken internal links are reported.
type LinkMode string

const (
	LinkIgnore LinkMode = "ignore"
	LinkWarn   LinkMode = "warn"
	LinkThrow  LinkMode = "throw"
)

var linkModeNormalizer = normalization.NewNormalizer(map[string]LinkMode{
	"ignore": LinkIgnore,
	"warn":   LinkWarn,
	"throw":  LinkThrow,
}, "")

// NormalizeLinkMode returns the canonical mode or "" when raw is unknown.
func NormalizeLinkMode(raw string) LinkMode {
	return linkModeNormalizer.Normalize(raw)
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// BackoffMode selects how notification retry delays grow.
type BackoffMode string

const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffLinear      BackoffMode = "linear"
	BackoffExponential BackoffMode = "exponential"
)

var backoffNormalizer = normalization.NewNormalizer(map[string]BackoffMode{
	"fixed":       BackoffFixed,
	"constant":    BackoffFixed,
	"linear":      BackoffLinear,
	"exponential": BackoffExponential,
}, "")

// NormalizeBackoffMode returns the canonical mode or "" when raw is unknown.
func NormalizeBackoffMode(raw string) BackoffMode {
	return backoffNormalizer.Normalize(raw)
}
