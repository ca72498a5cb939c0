package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"git.home.luguber.info/inful/pagebuilder/internal/compiler"
	"git.home.luguber.info/inful/pagebuilder/internal/components"
	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pagebuilder/internal/metadata"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/pipeline"
	"git.home.luguber.info/inful/pagebuilder/internal/routes"
	"git.home.luguber.info/inful/pagebuilder/internal/sink"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func result(t *testing.T, buildID string, permalinks ...string) *pipeline.Result {
	t.Helper()
	reg, err := components.NewDefaultRegistry(nil)
	require.NoError(t, err)
	c := compiler.New(reg, compiler.Options{})
	a := page.NewAssembler(page.Options{SiteTitle: "Docs"})

	var pages []*page.CompiledPage
	for _, pl := range permalinks {
		src := "Body of " + pl + ".\n"
		body, err := c.Compile(context.Background(), compiler.Input{Path: pl, Source: []byte(src)})
		require.NoError(t, err)
		p, err := a.Assemble(context.Background(), page.Input{
			Metadata:    &metadata.PageMetadata{ID: pl, Title: "T " + pl, Permalink: pl, Source: "@site/docs" + pl + ".md", Version: "current"},
			Body:        body,
			Frontmatter: frontmatter.New(map[string]any{"title": "T " + pl}, nil),
			Source:      []byte(src),
		})
		require.NoError(t, err)
		pages = append(pages, p)
	}
	r, err := routes.Build(pages)
	require.NoError(t, err)
	return &pipeline.Result{
		Registry: r,
		Report:   &pipeline.BuildReport{BuildID: buildID, Outcome: pipeline.OutcomeSuccess, Routes: r.Len(), Digest: r.Digest()},
	}
}

func newServer(opts Options) *Server {
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(opts)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestServer_BeforeFirstBuild(t *testing.T) {
	s := newServer(Options{})

	rec := get(t, s, "/docs/intro")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[ferrors.HTTPErrorResponse](t, rec)
	require.Equal(t, "runtime", body.Code)
	require.True(t, body.Retryable)

	require.Equal(t, http.StatusServiceUnavailable, get(t, s, RoutesPath).Code)

	health := decode[HealthResponse](t, get(t, s, HealthPath))
	require.Equal(t, "starting", health.Status)

	status := decode[StatusResponse](t, get(t, s, StatusPath))
	require.Equal(t, "pending", status.Status)
}

func TestServer_ServesPublishedRegistry(t *testing.T) {
	s := newServer(Options{})
	res := result(t, "b-1", "/docs/intro", "/docs/next/")
	s.Publish(res, nil)

	for _, path := range []string{"/docs/intro", "/docs/intro/", "/docs/intro/index.html", "/docs/next"} {
		rec := get(t, s, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Contains(t, rec.Header().Get("Content-Type"), "text/html", path)
	}
	require.Contains(t, get(t, s, "/docs/intro").Body.String(), "Body of /docs/intro.")

	rec := get(t, s, "/docs/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not_found", decode[ferrors.HTTPErrorResponse](t, rec).Code)

	m := decode[sink.Manifest](t, get(t, s, RoutesPath))
	require.Equal(t, "b-1", m.BuildID)
	require.Equal(t, res.Registry.Digest(), m.Digest)
	require.Len(t, m.Routes, 2)

	status := decode[StatusResponse](t, get(t, s, StatusPath))
	require.Equal(t, "success", status.Status)
	require.Equal(t, res.Registry.Digest(), status.Serving)
	require.Equal(t, "b-1", status.LastBuild.BuildID)

	health := decode[HealthResponse](t, get(t, s, HealthPath))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, 2, health.Routes)
}

func TestServer_FailedBuildKeepsServingPreviousPages(t *testing.T) {
	s := newServer(Options{})
	good := result(t, "b-1", "/docs/intro")
	s.Publish(good, nil)

	buildErr := ferrors.ContentError("1 page failed").Build()
	s.Publish(&pipeline.Result{Report: &pipeline.BuildReport{BuildID: "b-2", Outcome: pipeline.OutcomeFailed}}, buildErr)

	require.Equal(t, http.StatusOK, get(t, s, "/docs/intro").Code)

	status := decode[StatusResponse](t, get(t, s, StatusPath))
	require.Equal(t, "failed", status.Status)
	require.Equal(t, good.Registry.Digest(), status.Serving)
	require.Equal(t, "b-2", status.LastBuild.BuildID)
	require.Contains(t, status.LastError, "1 page failed")

	require.Equal(t, "b-1", decode[sink.Manifest](t, get(t, s, RoutesPath)).BuildID)
}

func TestServer_FailedFirstBuildReportsError(t *testing.T) {
	s := newServer(Options{})
	s.Publish(nil, ferrors.CompileError("component not registered").WithContext("component", "Callout").Build())

	rec := get(t, s, "/docs/intro")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[ferrors.HTTPErrorResponse](t, rec)
	require.Equal(t, "compile", body.Code)
	require.Equal(t, "Callout", body.Details["component"])
}

func TestServer_MetricsHandler(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pagebuilder_routes 3\n")
	})
	s := newServer(Options{Metrics: metrics, MetricsPath: "/internal/metrics"})

	rec := get(t, s, "/internal/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pagebuilder_routes 3\n", rec.Body.String())
}
