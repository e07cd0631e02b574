package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func getJSON(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return rec.Code
}

func TestLivenessHandler(t *testing.T) {
	h := NewHealthChecker(nil)
	h.SetReady(false)

	var resp HealthResponse
	if code := getJSON(t, h.LivenessHandler(), "/healthz", &resp); code != http.StatusOK {
		t.Errorf("status = %d, want %d", code, http.StatusOK)
	}
	if resp.Status != healthStatusOK {
		t.Errorf("Status = %q, want %q", resp.Status, healthStatusOK)
	}
}

func TestReadinessHandler(t *testing.T) {
	sc := newTestContext(t, &fakeQuerier{})

	tests := []struct {
		name     string
		setup    func(h *HealthChecker)
		status   int
		checkKey string
		checkVal string
	}{
		{
			name:     "ready",
			setup:    func(*HealthChecker) {},
			status:   http.StatusOK,
			checkKey: "ready",
			checkVal: healthStatusOK,
		},
		{
			name:     "not ready",
			setup:    func(h *HealthChecker) { h.SetReady(false) },
			status:   http.StatusServiceUnavailable,
			checkKey: "ready",
			checkVal: healthStatusNotReady,
		},
		{
			name: "passing dependency",
			setup: func(h *HealthChecker) {
				h.AddCheck("token_store", func(context.Context) error { return nil })
			},
			status:   http.StatusOK,
			checkKey: "token_store",
			checkVal: healthStatusOK,
		},
		{
			name: "failing dependency",
			setup: func(h *HealthChecker) {
				h.AddCheck("token_store", func(context.Context) error { return errors.New("connection refused") })
			},
			status:   http.StatusServiceUnavailable,
			checkKey: "token_store",
			checkVal: healthStatusFailing + ": connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker(sc)
			tt.setup(h)

			var resp HealthResponse
			code := getJSON(t, h.ReadinessHandler(), "/readyz", &resp)
			if code != tt.status {
				t.Errorf("status = %d, want %d", code, tt.status)
			}
			if got := resp.Checks[tt.checkKey]; got != tt.checkVal {
				t.Errorf("checks[%s] = %q, want %q", tt.checkKey, got, tt.checkVal)
			}
		})
	}
}

func TestReadinessHandler_ShuttingDown(t *testing.T) {
	sc := newTestContext(t, &fakeQuerier{})
	h := NewHealthChecker(sc)
	_ = sc.Shutdown()

	var resp HealthResponse
	if code := getJSON(t, h.ReadinessHandler(), "/readyz", &resp); code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", code, http.StatusServiceUnavailable)
	}
	if resp.Checks["shutdown"] != healthStatusShuttingDown {
		t.Errorf("checks[shutdown] = %q", resp.Checks["shutdown"])
	}

	var detailed DetailedHealthResponse
	if code := getJSON(t, h.DetailedHealthHandler(), "/healthz/detailed", &detailed); code != http.StatusServiceUnavailable {
		t.Errorf("detailed status = %d, want %d", code, http.StatusServiceUnavailable)
	}
	if detailed.Status != healthStatusShuttingDown {
		t.Errorf("detailed Status = %q", detailed.Status)
	}
}

func TestDetailedHealthHandler(t *testing.T) {
	h := NewHealthChecker(nil)
	h.AddCheck("valkey", func(context.Context) error { return nil })
	h.AddCheck("calendar", func(context.Context) error { return nil })

	var resp DetailedHealthResponse
	if code := getJSON(t, h.DetailedHealthHandler(), "/healthz/detailed", &resp); code != http.StatusOK {
		t.Errorf("status = %d, want %d", code, http.StatusOK)
	}
	if strings.Join(resp.Checks, ",") != "calendar,valkey" {
		t.Errorf("Checks = %v, want sorted names", resp.Checks)
	}
	if resp.Uptime == "" {
		t.Error("Uptime is empty")
	}
}
