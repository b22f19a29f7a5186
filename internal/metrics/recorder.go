// Package metrics provides observability hooks for scan and API activity.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics can be enabled by swapping in the Prometheus
// implementation without touching call sites.
package metrics

import "time"

// ResultLabel enumerates operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for repository scans, git operations
// and the HTTP API. All methods must be safe on the NoopRecorder so injection
// stays optional.
type Recorder interface {
	ObserveScanDuration(d time.Duration)
	IncScanResult(result ResultLabel)
	SetReposDiscovered(n int)
	ObserveProbeDuration(repo string, d time.Duration, success bool)
	IncGitOperation(operation string, result ResultLabel)
	IncFavoriteOperation(operation string, result ResultLabel)
	ObserveHTTPRequest(method, route string, status int, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveScanDuration(time.Duration)                     {}
func (NoopRecorder) IncScanResult(ResultLabel)                             {}
func (NoopRecorder) SetReposDiscovered(int)                                {}
func (NoopRecorder) ObserveProbeDuration(string, time.Duration, bool)      {}
func (NoopRecorder) IncGitOperation(string, ResultLabel)                   {}
func (NoopRecorder) IncFavoriteOperation(string, ResultLabel)              {}
func (NoopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}

// ResultFromError maps an operation outcome to its counter label.
func ResultFromError(err error) ResultLabel {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}
