package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/outboundhq/dialer/internal/campaign"
	"github.com/outboundhq/dialer/internal/provider"
	"github.com/outboundhq/dialer/internal/queue"
	"github.com/outboundhq/dialer/internal/types"
	"github.com/rs/zerolog"
)

func testRouter(t *testing.T) *chi.Mux {
	t.Helper()

	crm := provider.NewMemoryCRM()
	crm.AddProspect(
		types.Prospect{ID: "p-1", CRMID: "crm-1", Name: "Alice", Phone: "+15550001", Company: "Acme", Role: "Operations Manager", Timezone: "UTC"},
		types.CRMData{AccountStatus: types.AccountQualified, Industry: "SaaS"},
	)

	q := queue.New(time.Hour, zerolog.Nop())
	orch := campaign.New(crm, provider.NewMemoryEnrichment(), q, nil, nil, zerolog.Nop())

	r := chi.NewRouter()
	NewCampaignHandler(orch, zerolog.Nop()).Register(r)
	return r
}

func launchBody() string {
	return `{
		"id": "camp-1",
		"name": "Q3 Outbound",
		"min_probability": 50,
		"max_calls_per_day": 24,
		"call_hours": {"start": 9, "end": 17}
	}`
}

func TestHandleLaunch(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(launchBody()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var summary types.CampaignSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if summary.CampaignID != "camp-1" {
		t.Errorf("expected campaign_id camp-1, got %s", summary.CampaignID)
	}
	if summary.TotalProspects != 1 || summary.QueuedCalls != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestHandleLaunchInvalidJSON(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleLaunchInvalidConfig(t *testing.T) {
	r := testRouter(t)

	body := `{"name": "", "min_probability": 50, "max_calls_per_day": 24, "call_hours": {"start": 9, "end": 17}}`
	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid config, got %d", rec.Code)
	}
}

func TestHandlePauseResume(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(launchBody()))
	r.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/campaigns/camp-1/pause", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("pause: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid pause response: %v", err)
	}
	if resp["state"] != string(types.CampaignPaused) {
		t.Errorf("expected paused state, got %s", resp["state"])
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/campaigns/camp-1/resume", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("resume: expected 200, got %d", rec.Code)
	}
}

func TestHandlePauseUnknownCampaign(t *testing.T) {
	r := testRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/campaigns/nope/pause", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleCancel(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(launchBody()))
	r.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/campaigns/camp-1/cancel", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid cancel response: %v", err)
	}
	if removed, ok := resp["removed_jobs"].(float64); !ok || removed != 1 {
		t.Errorf("expected 1 removed job, got %v", resp["removed_jobs"])
	}
}

func TestHandleStats(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(launchBody()))
	r.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campaigns/camp-1/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp statsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid stats response: %v", err)
	}
	if resp.State != types.CampaignRunning {
		t.Errorf("expected running state, got %s", resp.State)
	}
	if resp.Waiting != 1 {
		t.Errorf("expected 1 waiting job, got %d", resp.Waiting)
	}
}
