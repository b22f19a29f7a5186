package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/devpulse/internal/client"
	"git.home.luguber.info/inful/devpulse/internal/config"
	"git.home.luguber.info/inful/devpulse/internal/daemon"
	"git.home.luguber.info/inful/devpulse/internal/favorites"
	"git.home.luguber.info/inful/devpulse/internal/gitscan"
	"git.home.luguber.info/inful/devpulse/internal/logging"
	"git.home.luguber.info/inful/devpulse/internal/metrics"
	"git.home.luguber.info/inful/devpulse/internal/notify"
	"git.home.luguber.info/inful/devpulse/internal/presets"
	"git.home.luguber.info/inful/devpulse/internal/repoview"
	"git.home.luguber.info/inful/devpulse/internal/server/httpserver"
	"git.home.luguber.info/inful/devpulse/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"devpulse.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct {
	} `cmd:"" help:"Run the dashboard API server"`

	Scan struct {
		JSON bool `help:"Print results as JSON"`
	} `cmd:"" help:"Scan configured directories and list repositories"`

	Analyze struct {
		Path       string `arg:"" help:"Repository path to analyze"`
		MaxCommits int    `help:"Commit limit" default:"30"`
		SinceDays  int    `help:"Look-back window in days" default:"30"`
	} `cmd:"" help:"Summarize recent work in a repository"`

	Export struct {
		Paths  []string `arg:"" help:"Repository paths to export"`
		Output string   `short:"o" help:"Output file (default: repos_export_<date>.csv)"`
	} `cmd:"" help:"Export selected repositories as CSV"`

	Favorite struct {
		Paths  []string `arg:"" help:"Repository paths to favorite"`
		Server string   `help:"API server base URL (defaults to the configured server)"`
	} `cmd:"" help:"Mark repositories as favorites via the API"`

	Unfavorite struct {
		Paths  []string `arg:"" help:"Repository paths to unfavorite"`
		Server string   `help:"API server base URL (defaults to the configured server)"`
	} `cmd:"" help:"Remove repositories from favorites via the API"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	if ctx.Command() == "init" {
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("configuration written to %s\n", CLI.Config)
		return
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level := logging.ParseLevel(cfg.Server.LogLevel)
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	logger, err := logging.Setup(cfg.Server.LogFile, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	var runErr error
	switch ctx.Command() {
	case "serve":
		runErr = runServe(cfg, logger)
	case "scan":
		runErr = runScan(cfg, CLI.Scan.JSON)
	case "analyze <path>":
		runErr = runAnalyze(CLI.Analyze.Path, CLI.Analyze.MaxCommits, CLI.Analyze.SinceDays)
	case "export <paths>":
		runErr = runExport(cfg, CLI.Export.Paths, CLI.Export.Output)
	case "favorite <paths>":
		runErr = runBulkFavorite(cfg, logger, CLI.Favorite.Server, CLI.Favorite.Paths, true)
	case "unfavorite <paths>":
		runErr = runBulkFavorite(cfg, logger, CLI.Unfavorite.Server, CLI.Unfavorite.Paths, false)
	}
	if runErr != nil {
		logger.Error("command failed", "error", runErr)
		os.Exit(1)
	}
}

func runServe(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	publisher, err := notify.NewPublisher(cfg.Notify.URL, cfg.Notify.SubjectPrefix, logger)
	if err != nil {
		logger.Warn("notification publisher unavailable", "error", err)
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var registry *prom.Registry
	if cfg.Monitoring.MetricsEnabled {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	runtime, err := daemon.NewRuntime(cfg, publisher, recorder, logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	favStore, err := favorites.NewStore(filepath.Join(cfg.Server.DataDir, "favorites.db"))
	if err != nil {
		return err
	}
	defer favStore.Close()

	presetStore, err := presets.NewStore(filepath.Join(cfg.Server.DataDir, "presets.db"))
	if err != nil {
		return err
	}
	defer presetStore.Close()

	srv := httpserver.New(cfg, runtime, favStore, presetStore, logger, httpserver.Options{
		Recorder: recorder,
		Registry: registry,
		Version:  version.Version,
	})

	if err := runtime.Start(ctx); err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}

	logger.Info("DevPulse started, waiting for shutdown signal")
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	return runtime.Stop(shutdownCtx)
}

func runScan(cfg *config.Config, asJSON bool) error {
	scanner := gitscan.NewScanner(cfg, nil)
	repos, err := scanner.Scan(context.Background(), gitscan.ScanOptions{})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(repos)
	}

	for _, r := range repos {
		marker := " "
		if r.Status == gitscan.StatusDirty {
			marker = "*"
		}
		fmt.Printf("%s %-30s %-20s %3d uncommitted  %s\n", marker, r.Name, r.CurrentBranch, r.UncommittedCount, r.Path)
	}
	fmt.Printf("\n%d repositories\n", len(repos))
	return nil
}

func runAnalyze(path string, maxCommits, sinceDays int) error {
	summary, err := gitscan.NewAnalyzer().WorkSummary(path, maxCommits, sinceDays)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func runExport(cfg *config.Config, paths []string, output string) error {
	scanner := gitscan.NewScanner(cfg, nil)
	repos, err := scanner.Scan(context.Background(), gitscan.ScanOptions{IncludeHidden: true})
	if err != nil {
		return err
	}

	selection := repoview.NewSelection()
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		selection.Toggle(abs)
	}

	if output == "" {
		output = repoview.ExportFilename(time.Now())
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := repoview.ExportCSV(f, selection, repos); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", output)
	return nil
}

func runBulkFavorite(cfg *config.Config, logger *slog.Logger, serverURL string, paths []string, add bool) error {
	if serverURL == "" {
		serverURL = cfg.Server.BaseURL
	}
	if serverURL == "" {
		serverURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	ctx := context.Background()
	api := client.New(serverURL)
	mirror := client.NewFavoritesMirror(api, logger)
	mirror.Fetch(ctx)

	// Resolve names from the server's view so favorites carry display names.
	resp, err := api.Repos(ctx, client.ReposQuery{})
	if err != nil {
		return fmt.Errorf("fetch repositories: %w", err)
	}

	selection := repoview.NewSelection()
	for _, p := range paths {
		selection.Toggle(p)
	}

	dispatcher := repoview.NewDispatcher(mirror)
	if add {
		added, failed := dispatcher.FavoriteAll(ctx, selection, resp.Repos)
		fmt.Printf("favorited %d repositories (%d failed)\n", added, failed)
	} else {
		removed, failed := dispatcher.UnfavoriteAll(ctx, selection, resp.Repos)
		fmt.Printf("unfavorited %d repositories (%d failed)\n", removed, failed)
	}
	return nil
}
