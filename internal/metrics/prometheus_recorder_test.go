package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveScanDuration(250 * time.Millisecond)
	pr.IncScanResult(ResultSuccess)
	pr.SetReposDiscovered(12)
	pr.ObserveProbeDuration("alpha", 20*time.Millisecond, true)
	pr.IncGitOperation("pull", ResultFailed)
	pr.IncFavoriteOperation("add", ResultSuccess)
	pr.ObserveHTTPRequest("GET", "/api/repos", 200, 5*time.Millisecond)
	// Basic scrape to ensure metrics encode without panic
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestResultFromError(t *testing.T) {
	if got := ResultFromError(nil); got != ResultSuccess {
		t.Fatalf("expected success, got %s", got)
	}
}
