package gitscan

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/devpulse/internal/config"
	"git.home.luguber.info/inful/devpulse/internal/logfields"
	"git.home.luguber.info/inful/devpulse/internal/metrics"
	"git.home.luguber.info/inful/devpulse/internal/util/sets"
)

// Scanner walks the configured scan directories and probes every git
// repository it finds. Probing is bounded by maxParallel workers.
type Scanner struct {
	dirs        []config.ScanDirectory
	hidden      sets.Set[string]
	maxParallel int
	recorder    metrics.Recorder
}

// NewScanner builds a scanner from config. Hidden repo names are filtered
// from results unless the repo came from an explicitly added scan path.
// recorder may be nil (noop).
func NewScanner(cfg *config.Config, recorder metrics.Recorder) *Scanner {
	maxParallel := cfg.Performance.MaxParallelScans
	if maxParallel <= 0 {
		maxParallel = 1
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Scanner{
		dirs:        cfg.ScanDirs,
		hidden:      sets.New(cfg.HiddenRepos...),
		maxParallel: maxParallel,
		recorder:    recorder,
	}
}

// ScanOptions adjusts a single scan invocation.
type ScanOptions struct {
	IncludeHidden bool
}

// Scan discovers repositories across all enabled scan directories.
// Directories that point at (or inside) a repository are treated as explicit:
// they are scanned first, win path dedup, and bypass hidden filtering.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) ([]RepoInfo, error) {
	var specific, broad []config.ScanDirectory
	for _, dir := range s.dirs {
		if !dir.Enabled {
			continue
		}
		if isRepoPath(dir.Path) || nearestRepoRoot(dir.Path) != "" {
			specific = append(specific, dir)
		} else {
			broad = append(broad, dir)
		}
	}

	seen := sets.New[string]()
	explicit := sets.New[string]()
	var candidates []candidate

	for _, dir := range specific {
		for _, c := range s.collectCandidates(dir) {
			if seen.Has(c.path) {
				continue
			}
			seen.Add(c.path)
			explicit.Add(c.path)
			candidates = append(candidates, c)
		}
	}
	for _, dir := range broad {
		for _, c := range s.collectCandidates(dir) {
			if seen.Has(c.path) {
				continue
			}
			seen.Add(c.path)
			candidates = append(candidates, c)
		}
	}

	repos := s.probeAll(ctx, candidates)

	if !opts.IncludeHidden && s.hidden.Len() > 0 {
		kept := repos[:0]
		for _, r := range repos {
			if explicit.Has(r.Path) || !s.hidden.Has(r.Name) {
				kept = append(kept, r)
			}
		}
		repos = kept
	}

	sort.Slice(repos, func(i, j int) bool {
		return strings.ToLower(repos[i].Name) < strings.ToLower(repos[j].Name)
	})
	return repos, nil
}

// candidate is a repository root awaiting a probe.
type candidate struct {
	path        string
	displayName string
}

// collectCandidates resolves one scan directory into repository roots
// without opening them.
func (s *Scanner) collectCandidates(dir config.ScanDirectory) []candidate {
	base := dir.Path
	fi, err := os.Stat(base)
	if err != nil || !fi.IsDir() {
		return nil
	}

	// The scan path itself is a repository.
	if isRepoPath(base) {
		return []candidate{{path: base}}
	}

	// The scan path is a subfolder of a repository: report the enclosing
	// repo under the subfolder's name.
	if root := nearestRepoRoot(base); root != "" {
		return []candidate{{path: root, displayName: filepath.Base(base)}}
	}

	if dir.Recursive {
		return s.walk(base, dir, 0)
	}
	return s.flat(base, dir)
}

func (s *Scanner) flat(base string, dir config.ScanDirectory) []candidate {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}
	var out []candidate
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if excluded(e.Name(), dir) {
			continue
		}
		child := filepath.Join(base, e.Name())
		if isRepoPath(child) {
			out = append(out, candidate{path: child})
		}
	}
	return out
}

func (s *Scanner) walk(path string, dir config.ScanDirectory, depth int) []candidate {
	if depth >= dir.MaxDepth {
		return nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		// Unreadable directories are skipped, not fatal.
		return nil
	}
	var out []candidate
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if excluded(e.Name(), dir) {
			continue
		}
		child := filepath.Join(path, e.Name())
		if isRepoPath(child) {
			// Never descend into repositories.
			out = append(out, candidate{path: child})
			continue
		}
		out = append(out, s.walk(child, dir, depth+1)...)
	}
	return out
}

// probeAll runs probes concurrently with a bounded worker count, preserving
// candidate order in the result.
func (s *Scanner) probeAll(ctx context.Context, candidates []candidate) []RepoInfo {
	results := make([]*RepoInfo, len(candidates))
	sem := make(chan struct{}, s.maxParallel)
	var wg sync.WaitGroup

	for i, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int, c candidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			name := c.displayName
			if name == "" {
				name = filepath.Base(c.path)
			}
			started := time.Now()
			info, err := probeRepo(c.path, c.displayName)
			s.recorder.ObserveProbeDuration(name, time.Since(started), err == nil)
			if err != nil {
				slog.Debug("skipping unreadable repository", logfields.Path(c.path), logfields.Error(err))
				return
			}
			results[i] = info
		}(i, c)
	}
	wg.Wait()

	repos := make([]RepoInfo, 0, len(candidates))
	for _, r := range results {
		if r != nil {
			repos = append(repos, *r)
		}
	}
	return repos
}

// ProbePath scans a single repository path outside the configured directories.
func ProbePath(path string) (*RepoInfo, error) {
	return probeRepo(path, "")
}

func isRepoPath(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// nearestRepoRoot walks up from path looking for an enclosing repository.
// Returns "" when path is not inside one.
func nearestRepoRoot(path string) string {
	for p := filepath.Dir(path); ; p = filepath.Dir(p) {
		if isRepoPath(p) {
			return p
		}
		if p == filepath.Dir(p) {
			return ""
		}
	}
}

func excluded(name string, dir config.ScanDirectory) bool {
	for _, folder := range dir.ExcludeFolders {
		if name == folder {
			return true
		}
	}
	for _, pattern := range dir.ExcludePatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
