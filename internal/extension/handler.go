// Package extension serves the browser extension's trimmed surface: a
// quick-modify run driven by selected posting text, and a status probe the
// extension polls before offering actions.
package extension

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/jobs"
	"resume-tailor/internal/modify"
	"resume-tailor/internal/pipeline"
	"resume-tailor/internal/quota"
	"resume-tailor/internal/render"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

// Handler wires the extension routes to the pipeline.
type Handler struct {
	Orc     *pipeline.Orchestrator
	Resumes *resumes.Service
	Quota   *quota.Service
}

// NewHandler constructs a Handler.
func NewHandler(orc *pipeline.Orchestrator, resumeSvc *resumes.Service, quotaSvc *quota.Service) *Handler {
	return &Handler{Orc: orc, Resumes: resumeSvc, Quota: quotaSvc}
}

// RegisterRoutes attaches extension routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/extension/quick-modify", h.quickModify)
	rg.GET("/extension/status", h.status)
}

type quickSettings struct {
	Tone            string   `json:"tone"`
	EmphasizeSkills []string `json:"emphasize_skills"`
	TemplateID      string   `json:"template_id"`
}

type quickModifyRequest struct {
	SelectedText  string        `json:"selected_text"`
	PageURL       string        `json:"page_url"`
	QuickSettings quickSettings `json:"quick_settings"`
}

func (h *Handler) quickModify(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req quickModifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	result, err := h.Orc.StartRun(c.Request.Context(), userID, pipeline.Request{
		Posting: jobs.JobPosting{
			Description: req.SelectedText,
			URL:         req.PageURL,
		},
		Customizations: modify.Customizations{
			Tone:            req.QuickSettings.Tone,
			EmphasizeSkills: req.QuickSettings.EmphasizeSkills,
		},
		Category:   quota.CategoryQuickModify,
		TemplateID: req.QuickSettings.TemplateID,
		Format:     render.FormatPDF,
	})
	if err != nil {
		var refusal *pipeline.QuotaRefusal
		if errors.As(err, &refusal) {
			respond.QuotaExceeded(c, refusal.Admission.Remaining, refusal.Admission.ResetAt)
			return
		}
		respond.Fault(c, err)
		return
	}

	c.Header("X-Resume-Id", result.ResumeID)
	c.Header("X-Match-Score", strconv.FormatFloat(result.MatchScore, 'f', 3, 64))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "resume"+result.Artifact.Ext))
	c.Data(http.StatusOK, result.Artifact.ContentType, result.Artifact.Bytes)
}

type statusResponse struct {
	IsAuthenticated bool `json:"is_authenticated"`
	HasMasterResume bool `json:"has_master_resume"`
	RemainingQuota  int  `json:"remaining_quota"`
}

func (h *Handler) status(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	ctx := c.Request.Context()

	hasMaster := false
	if _, err := h.Resumes.Get(ctx, userID); err == nil {
		hasMaster = true
	} else if !errors.Is(err, resumes.ErrNotFound) {
		respond.Fault(c, err)
		return
	}

	admission, err := h.Quota.Remaining(ctx, userID, quota.CategoryQuickModify)
	if err != nil {
		respond.Fault(c, err)
		return
	}

	respond.JSON(c, http.StatusOK, statusResponse{
		IsAuthenticated: userID != "",
		HasMasterResume: hasMaster,
		RemainingQuota:  admission.Remaining,
	})
}
