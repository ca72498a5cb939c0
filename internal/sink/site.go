// Package sink writes a frozen route registry to disk: one index.html per
// route, route manifests and a build history row.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/routes"
)

// ErrUnsafePermalink is returned for permalinks that would escape the output directory.
var ErrUnsafePermalink = errors.New("permalink escapes output directory")

// SiteWriter writes rendered pages below an output directory.
type SiteWriter struct {
	outputDir string
	baseURL   string
	clean     bool
	cbor      bool
}

// SiteOptions configure a SiteWriter.
type SiteOptions struct {
	// BaseURL is stripped from permalinks before they become paths. Defaults to "/".
	BaseURL string
	// Clean replaces the output directory wholesale through a staging directory.
	// Without it files are written over the existing tree.
	Clean bool
	// CBOR also writes routes.cbor.zst.
	CBOR bool
}

// NewSiteWriter creates a writer for outputDir.
func NewSiteWriter(outputDir string, opts SiteOptions) *SiteWriter {
	if opts.BaseURL == "" {
		opts.BaseURL = "/"
	}
	return &SiteWriter{outputDir: outputDir, baseURL: opts.BaseURL, clean: opts.Clean, cbor: opts.CBOR}
}

// OutputDir returns the final output directory.
func (w *SiteWriter) OutputDir() string { return w.outputDir }

// Write publishes every page of reg and the manifests. With Clean the tree is
// assembled in "<output>_stage" and promoted only when every write succeeded;
// a failed write leaves the previous output untouched.
func (w *SiteWriter) Write(ctx context.Context, reg *routes.Registry, m *Manifest) error {
	root := w.outputDir
	if w.clean {
		root = w.outputDir + "_stage"
		if err := os.RemoveAll(root); err != nil {
			return fmt.Errorf("reset staging directory: %w", err)
		}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := w.writeTree(ctx, root, reg, m); err != nil {
		if w.clean {
			w.abort(root)
		}
		return err
	}
	if !w.clean {
		return nil
	}
	return w.promote(root)
}

func (w *SiteWriter) writeTree(ctx context.Context, root string, reg *routes.Registry, m *Manifest) error {
	for _, p := range reg.Pages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := w.PagePath(p.Permalink())
		if err != nil {
			return err
		}
		target := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create page directory: %w", err)
		}
		if err := os.WriteFile(target, p.HTML(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
	}
	if m == nil {
		return nil
	}
	if err := m.WriteJSON(filepath.Join(root, ManifestJSON)); err != nil {
		return err
	}
	if w.cbor {
		if err := m.WriteCBOR(filepath.Join(root, ManifestCBOR)); err != nil {
			return err
		}
	}
	return nil
}

// PagePath maps a permalink to its index.html path relative to the output directory.
func (w *SiteWriter) PagePath(permalink string) (string, error) {
	rel := strings.TrimPrefix(permalink, strings.TrimSuffix(w.baseURL, "/"))
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return "index.html", nil
	}
	clean := path.Clean(rel)
	if clean != rel || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePermalink, permalink)
	}
	return filepath.Join(filepath.FromSlash(clean), "index.html"), nil
}

// promote swaps the staging directory into place, keeping the previous
// output as "<output>.prev" until the swap succeeded.
func (w *SiteWriter) promote(stage string) error {
	prev := w.outputDir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return fmt.Errorf("remove previous backup: %w", err)
	}
	if _, err := os.Stat(w.outputDir); err == nil {
		if err := os.Rename(w.outputDir, prev); err != nil {
			return fmt.Errorf("backup existing output: %w", err)
		}
	}
	if err := os.Rename(stage, w.outputDir); err != nil {
		return fmt.Errorf("promote staging: %w", err)
	}
	if err := os.RemoveAll(prev); err != nil {
		slog.Warn("Failed to remove previous output", logfields.Path(prev), logfields.Error(err))
	}
	slog.Debug("Promoted staging directory", logfields.Path(w.outputDir))
	return nil
}

func (w *SiteWriter) abort(stage string) {
	if err := os.RemoveAll(stage); err != nil {
		slog.Warn("Failed to remove staging directory after abort", logfields.Path(stage), logfields.Error(err))
	}
}
