// Package daemon holds the long-running runtime behind the HTTP API: the
// scan cache, the periodic rescan scheduler and the filesystem watcher.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	gocache "github.com/patrickmn/go-cache"

	"git.home.luguber.info/inful/devpulse/internal/config"
	"git.home.luguber.info/inful/devpulse/internal/gitscan"
	"git.home.luguber.info/inful/devpulse/internal/logfields"
	"git.home.luguber.info/inful/devpulse/internal/metrics"
	"git.home.luguber.info/inful/devpulse/internal/notify"
	"git.home.luguber.info/inful/devpulse/internal/retry"
	"git.home.luguber.info/inful/devpulse/internal/util/sets"
	"git.home.luguber.info/inful/devpulse/internal/watcher"
)

const scanCacheKey = "scan:all"

// Runtime owns the scanner and its cache and keeps scan results fresh via
// the interval scheduler and the optional directory watcher.
type Runtime struct {
	cfg       *config.Config
	scanner   *gitscan.Scanner
	cache     *gocache.Cache
	scheduler gocron.Scheduler
	watcher   *watcher.RepoWatcher
	publisher *notify.Publisher
	recorder  metrics.Recorder
	logger    *slog.Logger

	retryPolicy retry.Policy
	startedAt   time.Time

	mu            sync.RWMutex
	lastScanAt    time.Time
	lastRepoCount int
	knownPaths    sets.Set[string]
}

// Status is a point-in-time snapshot of the runtime for the status endpoint.
type Status struct {
	UptimeSeconds int64      `json:"uptime_seconds"`
	LastScanAt    *time.Time `json:"last_scan_at,omitempty"`
	RepoCount     int        `json:"repo_count"`
	ScanDirs      int        `json:"scan_dirs"`
	AutoDiscovery bool       `json:"auto_discovery"`
}

// NewRuntime wires the runtime. publisher may be nil (notifications disabled)
// and recorder may be the noop implementation.
func NewRuntime(cfg *config.Config, publisher *notify.Publisher, recorder metrics.Recorder, logger *slog.Logger) (*Runtime, error) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ttl := cfg.CacheTTL()
	rt := &Runtime{
		cfg:         cfg,
		scanner:     gitscan.NewScanner(cfg, recorder),
		cache:       gocache.New(ttl, 2*ttl),
		scheduler:   scheduler,
		publisher:   publisher,
		recorder:    recorder,
		logger:      logger,
		retryPolicy: retry.DefaultPolicy(),
		startedAt:   time.Now(),
	}
	return rt, nil
}

// Start schedules periodic rescans and, when auto discovery is enabled,
// starts watching the configured paths for new repositories.
func (rt *Runtime) Start(ctx context.Context) error {
	_, err := rt.scheduler.NewJob(
		gocron.DurationJob(rt.cfg.ScanInterval()),
		gocron.NewTask(func() { rt.rescanJob(ctx) }),
		gocron.WithName("rescan"),
	)
	if err != nil {
		return fmt.Errorf("schedule rescan job: %w", err)
	}
	rt.scheduler.Start()
	rt.logger.Info("rescan scheduler started", slog.Duration("interval", rt.cfg.ScanInterval()))

	if rt.cfg.AutoDiscovery.Enabled {
		paths := rt.cfg.AutoDiscovery.WatchPaths
		if len(paths) == 0 {
			for _, d := range rt.cfg.ScanDirs {
				if d.Enabled {
					paths = append(paths, d.Path)
				}
			}
		}
		w, err := watcher.NewRepoWatcher(paths, rt.logger, func(ctx context.Context) {
			rt.rescanJob(ctx)
		})
		if err != nil {
			return fmt.Errorf("create repo watcher: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("start repo watcher: %w", err)
		}
		rt.watcher = w
	}

	return nil
}

// Stop shuts the scheduler and watcher down and drains the publisher.
func (rt *Runtime) Stop(ctx context.Context) error {
	var firstErr error
	if err := rt.scheduler.Shutdown(); err != nil {
		firstErr = fmt.Errorf("shutdown scheduler: %w", err)
	}
	if rt.watcher != nil {
		rt.watcher.Stop()
	}
	rt.publisher.Close()
	return firstErr
}

// Repos returns the current repository list, served from cache when fresh.
// force bypasses the cache and rescans immediately.
func (rt *Runtime) Repos(ctx context.Context, force bool) ([]gitscan.RepoInfo, error) {
	if !force {
		if cached, ok := rt.cache.Get(scanCacheKey); ok {
			return cached.([]gitscan.RepoInfo), nil
		}
	}
	return rt.scan(ctx)
}

// Invalidate drops the cached scan so the next Repos call rescans.
func (rt *Runtime) Invalidate() {
	rt.cache.Delete(scanCacheKey)
}

// Scanner exposes the underlying scanner for single-path probes.
func (rt *Runtime) Scanner() *gitscan.Scanner { return rt.scanner }

// CurrentStatus reports uptime and the last scan outcome.
func (rt *Runtime) CurrentStatus() Status {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	s := Status{
		UptimeSeconds: int64(time.Since(rt.startedAt).Seconds()),
		RepoCount:     rt.lastRepoCount,
		ScanDirs:      len(rt.cfg.ScanDirs),
		AutoDiscovery: rt.cfg.AutoDiscovery.Enabled,
	}
	if !rt.lastScanAt.IsZero() {
		at := rt.lastScanAt
		s.LastScanAt = &at
	}
	return s
}

func (rt *Runtime) scan(ctx context.Context) ([]gitscan.RepoInfo, error) {
	started := time.Now()
	repos, err := rt.scanner.Scan(ctx, gitscan.ScanOptions{})
	elapsed := time.Since(started)

	rt.recorder.ObserveScanDuration(elapsed)
	rt.recorder.IncScanResult(metrics.ResultFromError(err))
	if err != nil {
		rt.logger.Error("scan failed", logfields.Error(err))
		return nil, err
	}
	rt.recorder.SetReposDiscovered(len(repos))

	rt.cache.Set(scanCacheKey, repos, gocache.DefaultExpiration)
	rt.mu.Lock()
	rt.lastScanAt = time.Now()
	rt.lastRepoCount = len(repos)
	discovered := rt.diffKnownLocked(repos)
	rt.mu.Unlock()

	for _, r := range discovered {
		rt.publisher.RepoDiscovered(notify.RepoDiscoveredEvent{
			Name:      r.Name,
			Path:      r.Path,
			Timestamp: time.Now(),
		})
		rt.logger.Info("repository discovered", logfields.Path(r.Path))
	}

	dirty := 0
	for _, r := range repos {
		if r.Status == gitscan.StatusDirty {
			dirty++
		}
	}
	rt.publisher.ScanCompleted(notify.ScanCompletedEvent{
		RepoCount:  len(repos),
		DirtyCount: dirty,
		Duration:   elapsed,
		Timestamp:  time.Now(),
	})

	rt.logger.Info("scan completed",
		logfields.Count(len(repos)),
		logfields.DurationMS(float64(elapsed.Milliseconds())))
	return repos, nil
}

// diffKnownLocked replaces the known-path set with the latest scan result and
// returns the repositories that were not present before. The first scan only
// seeds the set so startup does not replay every repository as a discovery.
// Callers must hold rt.mu.
func (rt *Runtime) diffKnownLocked(repos []gitscan.RepoInfo) []gitscan.RepoInfo {
	next := sets.New[string]()
	var discovered []gitscan.RepoInfo
	for _, r := range repos {
		next.Add(r.Path)
		if rt.knownPaths != nil && !rt.knownPaths.Has(r.Path) {
			discovered = append(discovered, r)
		}
	}
	rt.knownPaths = next
	return discovered
}

// rescanJob runs a scan and retries transient failures with backoff before
// giving up until the next scheduled interval.
func (rt *Runtime) rescanJob(ctx context.Context) {
	_, err := rt.scan(ctx)
	for attempt := 1; err != nil && attempt <= rt.retryPolicy.MaxRetries; attempt++ {
		rt.logger.Warn("rescan failed, retrying",
			slog.Int("attempt", attempt),
			logfields.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(rt.retryPolicy.Delay(attempt)):
		}
		_, err = rt.scan(ctx)
	}
	if err != nil {
		rt.logger.Warn("scheduled rescan failed", logfields.Error(err))
	}
}
