package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"beleads_backend/internal/events"
	"beleads_backend/internal/pipeline/repository"
	"beleads_backend/internal/pipeline/service"
	"beleads_backend/internal/pipeline/transport"
	"beleads_backend/platform/httpkit"
	"beleads_backend/platform/logger"
	"beleads_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(sub uuid.UUID) *gin.Engine {
	bus := events.NewInMemoryBus(logger.Discard())
	svc := service.New(repository.NewMemory(), nil, bus, 0, logger.Discard())
	h := New(svc, validator.New())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextSubscriberIDKey, sub)
		c.Next()
	})
	r.GET("/pipeline/leads", h.List)
	r.POST("/pipeline/leads", h.Add)
	r.PATCH("/pipeline/leads/:id", h.Update)
	r.PUT("/pipeline/leads/:id/status", h.ChangeStatus)
	r.DELETE("/pipeline/leads/:id", h.Delete)
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLeadLifecycleOverHTTP(t *testing.T) {
	r := newRouter(uuid.New())

	rec := do(r, http.MethodPost, "/pipeline/leads", map[string]any{"externalId": "p1", "name": "Padaria Central"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var lead transport.LeadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &lead); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lead.Status != "prospecting" || lead.Tags == nil {
		t.Fatalf("unexpected new lead %+v", lead)
	}

	if rec := do(r, http.MethodPost, "/pipeline/leads", map[string]any{"externalId": "p1", "name": "Padaria Central"}); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rec.Code)
	}

	path := "/pipeline/leads/" + lead.ID.String()
	rec = do(r, http.MethodPatch, path, map[string]any{"potentialValue": 1234.56, "tags": []string{"vip", "VIP"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &lead)
	if lead.PotentialValue != 1234.56 || len(lead.Tags) != 1 {
		t.Fatalf("unexpected updated lead %+v", lead)
	}

	rec = do(r, http.MethodPut, path+"/status", map[string]any{"status": "lost"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", rec.Code)
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &lead)
	if lead.RecycleAt == nil {
		t.Fatal("expected recycleAt on a lost lead")
	}

	if rec := do(r, http.MethodPut, path+"/status", map[string]any{"status": "archived"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", rec.Code)
	}

	if rec := do(r, http.MethodDelete, path, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if rec := do(r, http.MethodDelete, path, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestRejectsMalformedInput(t *testing.T) {
	r := newRouter(uuid.New())

	if rec := do(r, http.MethodPost, "/pipeline/leads", map[string]any{"name": "No Id"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing externalId: expected 400, got %d", rec.Code)
	}
	if rec := do(r, http.MethodPatch, "/pipeline/leads/not-a-uuid", map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", rec.Code)
	}
	if rec := do(r, http.MethodPatch, "/pipeline/leads/"+uuid.NewString(), map[string]any{"potentialValue": -1}); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative value: expected 400, got %d", rec.Code)
	}
	if rec := do(r, http.MethodPatch, "/pipeline/leads/"+uuid.NewString(), map[string]any{"potentialValue": 1e18}); rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized value: expected 400, got %d", rec.Code)
	}
}
