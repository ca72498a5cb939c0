package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"git.home.luguber.info/inful/pagebuilder/internal/pipeline"
	"git.home.luguber.info/inful/pagebuilder/internal/version"
)

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Routes    int       `json:"routes"`
}

// StatusResponse describes the latest build.
type StatusResponse struct {
	Status string `json:"status"`
	// Serving is the digest of the registry currently served.
	Serving   string                       `json:"serving,omitempty"`
	LastBuild *pipeline.ReportSerializable `json:"last_build,omitempty"`
	LastError string                       `json:"last_error,omitempty"`
}

func (s *Server) health(c echo.Context) error {
	snap := s.current.Load()
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(s.started).Seconds(),
	}
	if snap.registry != nil {
		resp.Routes = snap.registry.Len()
	} else {
		resp.Status = "starting"
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) status(c echo.Context) error {
	snap := s.current.Load()
	resp := StatusResponse{Status: "pending"}
	if snap.registry != nil {
		resp.Serving = snap.registry.Digest()
	}
	if snap.report != nil {
		resp.LastBuild = snap.report.Serializable()
		resp.Status = resp.LastBuild.Outcome
	}
	if snap.err != nil {
		resp.LastError = snap.err.Error()
		if snap.report == nil {
			resp.Status = string(pipeline.OutcomeFailed)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
