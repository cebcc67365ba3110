// Package health reports service liveness plus the reachability of the two
// external collaborators the pipeline depends on.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/server/respond"
)

const probeTimeout = 3 * time.Second

// Probe checks one collaborator. A nil error means reachable.
type Probe func(ctx context.Context) error

// Service aggregates collaborator probes into a status report.
type Service struct {
	ModelProbe   Probe
	StorageProbe Probe
}

// ServiceStatus reports each collaborator separately.
type ServiceStatus struct {
	ModelService string `json:"model_service"`
	Storage      string `json:"storage"`
}

// Report is the health endpoint payload.
type Report struct {
	Status        string        `json:"status"`
	ServiceStatus ServiceStatus `json:"service_status"`
}

// Status runs the probes. A missing probe reports "ok": the collaborator is
// either not configured or has nothing to check.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{
		Status: "ok",
		ServiceStatus: ServiceStatus{
			ModelService: runProbe(ctx, s.ModelProbe),
			Storage:      runProbe(ctx, s.StorageProbe),
		},
	}
	if report.ServiceStatus.ModelService != "ok" || report.ServiceStatus.Storage != "ok" {
		report.Status = "degraded"
	}
	return report
}

// RegisterRoutes attaches the public health route.
func (s *Service) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, s.Status(c.Request.Context()))
	})
}

func runProbe(ctx context.Context, probe Probe) string {
	if probe == nil {
		return "ok"
	}
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := probe(probeCtx); err != nil {
		return "unreachable"
	}
	return "ok"
}
