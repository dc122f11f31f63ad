package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRPC(t *testing.T) {
	m := New()
	m.ObserveRPC("/splitperfect.v1.GroupService/GetGroup", "ok", 0.01)
	m.ObserveRPC("/splitperfect.v1.GroupService/GetGroup", "ok", 0.02)
	m.ObserveRPC("/splitperfect.v1.GroupService/GetGroup", "not_found", 0.01)

	if got := testutil.ToFloat64(m.rpcRequests.WithLabelValues("/splitperfect.v1.GroupService/GetGroup", "ok")); got != 2 {
		t.Errorf("ok count: expected 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.rpcRequests.WithLabelValues("/splitperfect.v1.GroupService/GetGroup", "not_found")); got != 1 {
		t.Errorf("not_found count: expected 1, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRPC("p", "ok", 1)
	m.ObserveRateLimited("p")
	m.ObserveSettlement(3)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveSettlement(3)
	m.ObserveRateLimited("/splitperfect.v1.AuthService/Login")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"splitperfect_settlement_transactions_count 1",
		`splitperfect_rate_limited_total{procedure="/splitperfect.v1.AuthService/Login"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected exposition to contain %q", want)
		}
	}
}
