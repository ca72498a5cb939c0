// Package server serves the pages of the latest successful build over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/pipeline"
	"git.home.luguber.info/inful/pagebuilder/internal/routes"
	"git.home.luguber.info/inful/pagebuilder/internal/server/middleware"
	"git.home.luguber.info/inful/pagebuilder/internal/sink"
)

// Internal endpoint paths.
const (
	HealthPath = "/healthz"
	StatusPath = "/_pagebuilder/status"
	RoutesPath = "/_pagebuilder/routes"
)

// Options configure a Server.
type Options struct {
	Addr string
	// Metrics is mounted at MetricsPath when non-nil.
	Metrics     http.Handler
	MetricsPath string
	Logger      *slog.Logger
}

type snapshot struct {
	registry *routes.Registry
	manifest *sink.Manifest
	report   *pipeline.BuildReport
	err      error
}

// Server is the development server. Pages come from the registry of the most
// recent successful build; a failed build leaves them in place and shows up on
// the status endpoint.
type Server struct {
	echo    *echo.Echo
	addr    string
	logger  *slog.Logger
	adapter *ferrors.HTTPErrorAdapter
	started time.Time

	current atomic.Pointer[snapshot]
}

// New builds a server with its routes registered.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		echo:    echo.New(),
		addr:    opts.Addr,
		logger:  logger,
		adapter: ferrors.NewHTTPErrorAdapter(logger),
		started: time.Now(),
	}
	s.current.Store(&snapshot{})

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Recover(logger))

	e.GET(HealthPath, s.health)
	e.GET(StatusPath, s.status)
	e.GET(RoutesPath, s.routes)
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		e.GET(path, echo.WrapHandler(opts.Metrics))
	}
	e.GET("/*", s.page)
	return s
}

// Publish installs the outcome of a build. The registry is swapped atomically
// on success; on failure only the report and error are replaced.
func (s *Server) Publish(res *pipeline.Result, err error) {
	prev := s.current.Load()
	next := &snapshot{registry: prev.registry, manifest: prev.manifest, err: err}
	if res != nil {
		next.report = res.Report
		if err == nil && res.Registry != nil {
			next.registry = res.Registry
			buildID := ""
			if res.Report != nil {
				buildID = res.Report.BuildID
			}
			next.manifest = sink.NewManifest(buildID, res.Registry, time.Now())
		}
	}
	s.current.Store(next)
}

// ServeHTTP lets the server be driven without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving pages", logfields.URL("http://"+s.addr))
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return ferrors.WrapError(err, ferrors.CategoryRuntime, "dev server failed").
				WithContext("addr", s.addr).
				Build()
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown stops the listener and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) page(c echo.Context) error {
	snap := s.current.Load()
	if snap.registry == nil {
		if snap.err != nil {
			return snap.err
		}
		return ferrors.NewError(ferrors.CategoryRuntime, "no build available yet").
			Retryable().
			Build()
	}
	p, ok := snap.registry.Lookup(c.Request().URL.Path)
	if !ok && strings.HasSuffix(c.Request().URL.Path, "/index.html") {
		p, ok = snap.registry.Lookup(strings.TrimSuffix(c.Request().URL.Path, "index.html"))
	}
	if !ok {
		return ferrors.NewError(ferrors.CategoryNotFound, "page not found").
			WithContext("path", c.Request().URL.Path).
			Build()
	}
	return c.HTMLBlob(http.StatusOK, p.HTML())
}

func (s *Server) routes(c echo.Context) error {
	snap := s.current.Load()
	if snap.manifest == nil {
		return ferrors.NewError(ferrors.CategoryRuntime, "no build available yet").
			Retryable().
			Build()
	}
	return c.JSON(http.StatusOK, snap.manifest)
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, ferrors.HTTPErrorResponse{Error: msg})
		return
	}

	status := s.adapter.StatusCodeFor(err)
	s.logger.Log(c.Request().Context(), s.adapter.LogLevelFor(err), "HTTP request failed",
		logfields.Path(c.Request().URL.Path),
		logfields.Status(status),
		logfields.Error(err))
	_ = c.JSON(status, s.adapter.FormatErrorResponse(err))
}
