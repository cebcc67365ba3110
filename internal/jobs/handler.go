package jobs

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/analyze", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	var posting JobPosting
	if err := c.ShouldBindJSON(&posting); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	result, err := h.Svc.Analyze(c.Request.Context(), posting)
	if err != nil {
		respond.Fault(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}
