package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPage       = "page"
	KeyPermalink  = "permalink"
	KeyVersion    = "version"
	KeyComponent  = "component"
	KeySidebar    = "sidebar"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyHref       = "href"
	KeyURL        = "url"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr        { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Page(path string) slog.Attr         { return slog.String(KeyPage, path) }
func Permalink(p string) slog.Attr       { return slog.String(KeyPermalink, p) }
func Version(v string) slog.Attr         { return slog.String(KeyVersion, v) }
func Component(name string) slog.Attr    { return slog.String(KeyComponent, name) }
func Sidebar(name string) slog.Attr      { return slog.String(KeySidebar, name) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr              { return slog.Int(KeyCount, n) }
func Href(h string) slog.Attr            { return slog.String(KeyHref, h) }
func URL(u string) slog.Attr             { return slog.String(KeyURL, u) }
func Method(m string) slog.Attr          { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr          { return slog.Int(KeyStatus, code) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
