package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/quota"
)

func newTestRouter(t *testing.T, orc *Orchestrator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(orc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

const modifyBody = `{
	"job_description": "We need a senior engineer for Python data pipelines on Kubernetes.",
	"job_title": "Senior Backend Engineer",
	"company_name": "Acme"
}`

func TestModifyResumeReturnsArtifactWithHeaders(t *testing.T) {
	fix := newFixture(t, true)
	router := newTestRouter(t, fix.orc)

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/modify-resume", strings.NewReader(modifyBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if resp.Header().Get("X-Resume-Id") == "" {
		t.Fatalf("missing X-Resume-Id header")
	}
	if got := resp.Header().Get("X-Match-Score"); got != "0.750" {
		t.Fatalf("match score header = %q", got)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("content-type = %q", got)
	}
	if !strings.HasPrefix(resp.Body.String(), "%PDF-") {
		t.Fatalf("body = %q", resp.Body.String())
	}
}

func TestModifyResumeQuotaExhaustedReturns429(t *testing.T) {
	fix := newFixture(t, true)
	ctx := context.Background()
	for i := 0; i < quota.Limit(quota.CategoryFullModify); i++ {
		if _, err := fix.orc.Quota.TryAdmit(ctx, "user-1", quota.CategoryFullModify); err != nil {
			t.Fatalf("prime quota: %v", err)
		}
	}
	router := newTestRouter(t, fix.orc)

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/modify-resume", strings.NewReader(modifyBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
	var body struct {
		Meta map[string]any `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body.Meta["requests_remaining"]; !ok {
		t.Fatalf("body lacks requests_remaining: %+v", body.Meta)
	}
	if _, ok := body.Meta["reset_time"]; !ok {
		t.Fatalf("body lacks reset_time: %+v", body.Meta)
	}
}

func TestPreviewEndpointReturnsPlan(t *testing.T) {
	fix := newFixture(t, true)
	router := newTestRouter(t, fix.orc)

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/modify-resume/preview", strings.NewReader(modifyBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var preview Preview
	if err := json.NewDecoder(resp.Body).Decode(&preview); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if preview.EstimatedMatchScore >= 1.0 || preview.EstimatedMatchScore <= 0 {
		t.Fatalf("estimated score = %v", preview.EstimatedMatchScore)
	}
	if len(preview.SectionsToModify) == 0 {
		t.Fatalf("expected sections to modify")
	}
}

func TestMissingMasterResumeReturns409(t *testing.T) {
	fix := newFixture(t, false)
	router := newTestRouter(t, fix.orc)

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/modify-resume", strings.NewReader(modifyBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
}
