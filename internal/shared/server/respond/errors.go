package respond

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/fault"
	"resume-tailor/internal/shared/telemetry"
)

// ErrorBody is the standardized error payload:
// {detail, error_code, timestamp} plus optional metadata fields.
type ErrorBody struct {
	Detail    string         `json:"detail"`
	ErrorCode string         `json:"error_code"`
	Timestamp time.Time      `json:"timestamp"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, detail string, meta map[string]any) {
	fields := map[string]any{
		"status":     status,
		"error_code": code,
		"detail":     detail,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorBody{
		Detail:    detail,
		ErrorCode: code,
		Timestamp: time.Now().UTC(),
		Meta:      meta,
	})
}

// Fault maps a classified error onto the HTTP surface.
func Fault(c *gin.Context, err error) {
	kind := fault.KindOf(err)
	status := statusForKind(kind)
	Error(c, status, string(kind), err.Error(), nil)
}

// QuotaExceeded sends a 429 with remaining-quota and reset metadata.
func QuotaExceeded(c *gin.Context, remaining int, resetAt time.Time) {
	retryAfter := int(time.Until(resetAt).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	Error(c, http.StatusTooManyRequests, string(fault.KindQuotaExceeded), "rate limit exceeded", map[string]any{
		"requests_remaining": remaining,
		"reset_time":         resetAt.UTC(),
	})
}

func statusForKind(kind fault.Kind) int {
	switch kind {
	case fault.KindValidation:
		return http.StatusBadRequest
	case fault.KindAuth:
		return http.StatusUnauthorized
	case fault.KindQuotaExceeded:
		return http.StatusTooManyRequests
	case fault.KindNoMasterResume:
		return http.StatusConflict
	case fault.KindUpstreamModel:
		return http.StatusBadGateway
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindRender, fault.KindStorage:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
