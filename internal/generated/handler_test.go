package generated

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestDownloadReturnsArtifactWithScoreHeader(t *testing.T) {
	svc := NewService(NewMemoryRepo(), newFakeStore())
	resume, err := svc.Register(context.Background(), newArtifact("user-1", "Acme"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	router := newTestRouter(t, svc)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/resumes/generated/"+resume.ID, nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("content-type = %q", got)
	}
	if got := resp.Header().Get("X-Match-Score"); got != "0.820" {
		t.Fatalf("match score header = %q", got)
	}
	if resp.Body.String() != "%PDF-1.7 fake" {
		t.Fatalf("body = %q", resp.Body.String())
	}
}

func TestDeleteThenGetReturnsNotFound(t *testing.T) {
	svc := NewService(NewMemoryRepo(), newFakeStore())
	resume, err := svc.Register(context.Background(), newArtifact("user-1", "Acme"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	router := newTestRouter(t, svc)

	del := httptest.NewRecorder()
	router.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/api/v1/resumes/generated/"+resume.ID, nil))
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", del.Code)
	}

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/api/v1/resumes/generated/"+resume.ID, nil))
	if get.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", get.Code)
	}

	list := httptest.NewRecorder()
	router.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/api/v1/resumes/generated", nil))
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d", list.Code)
	}
	var page Page
	if err := json.NewDecoder(list.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Fatalf("deleted record still listed: %+v", page)
	}
}

func TestListRejectsBadPagination(t *testing.T) {
	router := newTestRouter(t, NewService(NewMemoryRepo(), newFakeStore()))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/resumes/generated?limit=nope", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.Code)
	}
}
