package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/jobs"
	"resume-tailor/internal/modify"
	"resume-tailor/internal/quota"
	"resume-tailor/internal/render"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the orchestrator.
type Handler struct {
	Orc *Orchestrator
}

// NewHandler constructs a Handler.
func NewHandler(orc *Orchestrator) *Handler {
	return &Handler{Orc: orc}
}

// RegisterRoutes attaches pipeline routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/modify-resume", h.modifyResume)
	rg.POST("/modify-resume/preview", h.preview)
	rg.POST("/resumes/generated/:id/regenerate", h.regenerate)
}

type modifyRequest struct {
	JobDescription string                `json:"job_description"`
	JobTitle       string                `json:"job_title"`
	CompanyName    string                `json:"company_name"`
	JobURL         string                `json:"job_url"`
	TemplateID     string                `json:"template_id"`
	OutputFormat   string                `json:"output_format"`
	Customizations modify.Customizations `json:"customizations"`
}

func (r modifyRequest) toRequest(category quota.Category) Request {
	format := render.Format(strings.ToLower(strings.TrimSpace(r.OutputFormat)))
	if format == "" {
		format = render.FormatPDF
	}
	return Request{
		Posting: jobs.JobPosting{
			Description: r.JobDescription,
			Title:       r.JobTitle,
			CompanyName: r.CompanyName,
			URL:         r.JobURL,
		},
		Customizations: r.Customizations,
		Category:       category,
		TemplateID:     r.TemplateID,
		Format:         format,
	}
}

func (h *Handler) modifyResume(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req modifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	result, err := h.Orc.StartRun(c.Request.Context(), userID, req.toRequest(quota.CategoryFullModify))
	if err != nil {
		writeError(c, err)
		return
	}
	writeArtifact(c, result)
}

func (h *Handler) preview(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req modifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	preview, err := h.Orc.PreviewRun(c.Request.Context(), userID, req.toRequest(quota.CategoryFullModify))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, preview)
}

func (h *Handler) regenerate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	result, err := h.Orc.Regenerate(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeArtifact(c, result)
}

func writeArtifact(c *gin.Context, result Result) {
	c.Header("X-Resume-Id", result.ResumeID)
	c.Header("X-Match-Score", strconv.FormatFloat(result.MatchScore, 'f', 3, 64))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "resume"+result.Artifact.Ext))
	c.Data(http.StatusOK, result.Artifact.ContentType, result.Artifact.Bytes)
}

func writeError(c *gin.Context, err error) {
	var refusal *QuotaRefusal
	if errors.As(err, &refusal) {
		respond.QuotaExceeded(c, refusal.Admission.Remaining, refusal.Admission.ResetAt)
		return
	}
	respond.Fault(c, err)
}
