package analytics

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/generated"
	"resume-tailor/internal/shared/fault"
	"resume-tailor/internal/shared/server/middleware"
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

// RegisterRoutes attaches analytics routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analytics/keywords", h.keywords)
	rg.GET("/analytics/success-rate", h.successRate)
	rg.POST("/analytics/feedback", h.submitFeedback)
}

func (h *Handler) keywords(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	report, err := h.Svc.Keywords(c.Request.Context(), userID)
	if err != nil {
		respond.Fault(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, report)
}

func (h *Handler) successRate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	report, err := h.Svc.SuccessRate(c.Request.Context(), userID)
	if err != nil {
		respond.Fault(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, report)
}

type feedbackRequest struct {
	ResumeID     string `json:"resume_id"`
	GotInterview bool   `json:"got_interview"`
	Rating       int    `json:"rating"`
	Feedback     string `json:"feedback"`
}

func (h *Handler) submitFeedback(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	fb, err := h.Svc.SubmitFeedback(c.Request.Context(), userID, Feedback{
		ResumeID:     req.ResumeID,
		GotInterview: req.GotInterview,
		Rating:       req.Rating,
		Comment:      req.Feedback,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, generated.ErrNotFound):
			respond.Error(c, http.StatusNotFound, string(fault.KindNotFound), "generated resume not found", nil)
		default:
			respond.Fault(c, err)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, fb)
}
