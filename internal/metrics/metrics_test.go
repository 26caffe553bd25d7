package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func gatherCounterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	var total float64
	found := false
	for _, mf := range metrics {
		if mf.GetName() == name {
			found = true
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
		}
	}
	if !found {
		t.Fatalf("%s metric not found", name)
	}
	return total
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordHTTPRequest_IncrementsCounter はリクエストカウンタが増加することを検証する。
func TestRecordHTTPRequest_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodGet, http.StatusOK, 10*time.Millisecond)
	c.RecordHTTPRequest(http.MethodGet, http.StatusOK, 20*time.Millisecond)
	c.RecordHTTPRequest(http.MethodPost, http.StatusCreated, 30*time.Millisecond)

	if val := gatherCounterValue(t, reg, "corpsite_http_requests_total"); val != 3 {
		t.Errorf("http_requests_total = %v, want 3", val)
	}
}

// TestRecordHTTPRequest_LabelsByMethodAndStatus はラベル別に集計されることを検証する。
func TestRecordHTTPRequest_LabelsByMethodAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodGet, http.StatusOK, time.Millisecond)
	c.RecordHTTPRequest(http.MethodPost, http.StatusForbidden, time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() == "corpsite_http_requests_total" {
			if len(mf.GetMetric()) != 2 {
				t.Errorf("expected 2 labeled series, got %d", len(mf.GetMetric()))
			}
		}
	}
}

// TestRecordLogin_IncrementsCounter はログインカウンタが増加することを検証する。
func TestRecordLogin_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin("oauth")
	c.RecordLogin("oauth")
	c.RecordLogin("dev")

	if val := gatherCounterValue(t, reg, "corpsite_logins_total"); val != 3 {
		t.Errorf("logins_total = %v, want 3", val)
	}
}

// TestRecordContentWrite_IncrementsCounter は書き込みカウンタが増加することを検証する。
func TestRecordContentWrite_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordContentWrite("news", "create")
	c.RecordContentWrite("news", "delete")
	c.RecordContentWrite("job_position", "update")

	if val := gatherCounterValue(t, reg, "corpsite_content_writes_total"); val != 3 {
		t.Errorf("content_writes_total = %v, want 3", val)
	}
}

// TestRecordDegradedStart_IncrementsCounter は縮退起動カウンタが増加することを検証する。
func TestRecordDegradedStart_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordDegradedStart()

	if val := gatherCounterValue(t, reg, "corpsite_degraded_starts_total"); val != 1 {
		t.Errorf("degraded_starts_total = %v, want 1", val)
	}
}

// TestHandler_ServesPrometheusFormat は/metricsがテキスト形式で応答することを検証する。
func TestHandler_ServesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPRequest(http.MethodGet, http.StatusOK, time.Millisecond)

	handler := Handler(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	body, err := io.ReadAll(w.Result().Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "corpsite_http_requests_total") {
		t.Error("body should contain corpsite_http_requests_total")
	}
	if !strings.Contains(string(body), "corpsite_http_request_duration_seconds") {
		t.Error("body should contain corpsite_http_request_duration_seconds")
	}
}
