package generated

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

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

// RegisterRoutes attaches generated resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/generated", h.list)
	rg.GET("/resumes/generated/:id", h.download)
	rg.DELETE("/resumes/generated/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	filter := ListFilter{Company: strings.TrimSpace(c.Query("company"))}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a positive integer", nil)
			return
		}
		filter.Limit = n
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "offset must be a non-negative integer", nil)
			return
		}
		filter.Offset = n
	}

	page, err := h.Svc.List(c.Request.Context(), userID, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, page)
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	resume, reader, err := h.Svc.Open(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(resume)))
	c.Header("X-Match-Score", strconv.FormatFloat(resume.MatchScore, 'f', 3, 64))
	c.DataFromReader(http.StatusOK, resume.SizeBytes, resume.ContentType, reader, nil)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func downloadName(r GeneratedResume) string {
	base := strings.TrimSpace(r.CompanyName)
	if base == "" {
		base = "resume"
	}
	base = strings.ReplaceAll(strings.ToLower(base), " ", "-")
	return fmt.Sprintf("%s-%s.%s", base, r.ID[:8], r.OutputFormat)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "generated resume not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Fault(c, err)
	}
}
