package instrumentation

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailed)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func counterTotal(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s is %T, want Sum[int64]", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "POST", "/schedule/query", 200, 100*time.Millisecond)
	m.RecordHTTPRequest(ctx, "GET", "/auth/login", 302, 5*time.Millisecond)

	got := collect(t, reader)
	if n := counterTotal(t, got["http_requests_total"]); n != 2 {
		t.Errorf("http_requests_total = %d, want 2", n)
	}
	if _, ok := got["http_request_duration_seconds"]; !ok {
		t.Error("http_request_duration_seconds not recorded")
	}
}

func TestMetrics_RecordGoogleAPIOperation(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationList, StatusSuccess, 200*time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationInsert, StatusError, 500*time.Millisecond)

	got := collect(t, reader)
	if n := counterTotal(t, got["google_api_operations_total"]); n != 2 {
		t.Errorf("google_api_operations_total = %d, want 2", n)
	}
}

func TestMetrics_RecordToolInvocation_AccountLabel(t *testing.T) {
	tests := []struct {
		name     string
		detailed bool
		want     bool
	}{
		{"account omitted by default", false, false},
		{"account included when detailed", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, reader := newTestMetrics(t, tt.detailed)
			m.RecordToolInvocation(context.Background(), "create_event", StatusSuccess, "work", time.Second)

			sum := collect(t, reader)["mcp_tool_invocations_total"].Data.(metricdata.Sum[int64])
			if len(sum.DataPoints) != 1 {
				t.Fatalf("got %d data points", len(sum.DataPoints))
			}
			_, has := sum.DataPoints[0].Attributes.Value(attribute.Key(attrAccount))
			if has != tt.want {
				t.Errorf("account label present = %v, want %v", has, tt.want)
			}
		})
	}
}

func TestMetrics_RecordScheduleOutcome(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordScheduleOutcome(ctx, "create_event", OutcomeSuccess)
	m.RecordScheduleOutcome(ctx, "create_event", OutcomeConflict)
	m.RecordScheduleOutcome(ctx, "delete_event", OutcomeValidationError)

	got := collect(t, reader)
	if n := counterTotal(t, got["schedule_outcomes_total"]); n != 3 {
		t.Errorf("schedule_outcomes_total = %d, want 3", n)
	}
}

func TestMetrics_RecordAgentQuery(t *testing.T) {
	m, reader := newTestMetrics(t, false)

	m.RecordAgentQuery(context.Background(), StatusSuccess, 3, 2*time.Second)

	got := collect(t, reader)
	if n := counterTotal(t, got["agent_queries_total"]); n != 1 {
		t.Errorf("agent_queries_total = %d, want 1", n)
	}
	hist, ok := got["agent_steps_per_query"].Data.(metricdata.Histogram[int64])
	if !ok || len(hist.DataPoints) != 1 || hist.DataPoints[0].Sum != 3 {
		t.Errorf("agent_steps_per_query = %+v", got["agent_steps_per_query"].Data)
	}
}

func TestMetrics_NoOp(t *testing.T) {
	ctx := context.Background()

	var nilMetrics *Metrics
	zero := &Metrics{}
	for _, m := range []*Metrics{nilMetrics, zero} {
		// Must not panic
		m.RecordHTTPRequest(ctx, "GET", "/", 200, time.Millisecond)
		m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationGet, StatusSuccess, time.Millisecond)
		m.RecordOAuthAuth(ctx, OAuthResultSuccess)
		m.RecordToolInvocation(ctx, "list_events", StatusSuccess, "", time.Millisecond)
		m.RecordScheduleOutcome(ctx, "list_events", OutcomeSuccess)
		m.RecordAgentQuery(ctx, StatusSuccess, 1, time.Millisecond)
	}
}
