package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/tinytelemetry/homeroom/internal/cache"
	"github.com/tinytelemetry/homeroom/internal/glyph"
	"github.com/tinytelemetry/homeroom/internal/httpserver"
	"github.com/tinytelemetry/homeroom/internal/model"
	"github.com/tinytelemetry/homeroom/internal/notion"
	"github.com/tinytelemetry/homeroom/internal/timetable"
	"github.com/tinytelemetry/homeroom/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// run wires the kiosk together and blocks until it exits.
func run(cfg appConfig) error {
	logger, cleanupLogger := configureRuntimeLogger(cfg.LogPath, cfg.Level)
	defer cleanupLogger()

	logger.Info("starting", "version", version, "config", cfg.ConfigPath, "timezone", cfg.Location.String())

	// Fonts are resolved before the loop so a bad font fails startup.
	fonts := glyph.NewCache()
	font, err := fonts.Get(cfg.FontPath, cfg.FontSize)
	if err != nil {
		return fmt.Errorf("loading clock font: %w", err)
	}
	logger.Debug("clock font loaded", "font", font.Name(), "height", font.Height())

	table := timetable.Default()
	if cfg.TimetablePath != "" {
		table, err = timetable.Load(cfg.TimetablePath)
		if err != nil {
			return fmt.Errorf("loading timetable: %w", err)
		}
	}

	client, err := notion.NewClient(cfg.NotionAPIKey, cfg.NotionDataSourceID, notion.WithBaseURL(cfg.NotionBaseURL))
	if err != nil {
		return fmt.Errorf("creating notion client: %w", err)
	}
	source := notion.NewSource(client, cfg.schema(), cfg.Location)

	items := cache.New(queryFetcher(source, cfg.categories()), cfg.RefreshTTL,
		cache.WithFetchTimeout(cfg.FetchTimeout),
		cache.WithRetryBackoff(cfg.RetryBackoff, cfg.RetryBackoffMax),
		cache.WithLogger(logger.WithPrefix("cache")),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := tui.NewFeed(ctx, items, cfg.BlockingRefresh)
	screens := []tui.Screen{
		tui.NewClockScreen(feed, font, cfg.Location),
		tui.NewItemListScreen(feed, table, cfg.Location),
	}
	if cfg.StatusScreen {
		screens = append(screens, tui.NewStatusScreen(items))
	}

	ctrl, err := tui.NewController(screens,
		tui.WithFPS(cfg.FPS),
		tui.WithControllerLogger(logger.WithPrefix("ui")),
	)
	if err != nil {
		return err
	}

	p := tea.NewProgram(ctrl,
		tea.WithAltScreen(),
		tea.WithFPS(cfg.FPS),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, programDashboard{ctrl: ctrl, program: p}, items, logger.WithPrefix("api"))
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	// Termination signals act like closing the kiosk window.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("signal received", "signal", sig.String())
			p.Send(tui.CloseMsg{})
		case <-gctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
				return fmt.Errorf("kiosk requires a real terminal")
			}
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("stopped")
	return err
}

// queryFetcher resolves a fixed query to its category and asks the source
// for the rows due tomorrow.
func queryFetcher(src model.ItemSource, categories model.Categories) cache.FetchFunc[model.Query, []string] {
	return func(ctx context.Context, q model.Query) ([]string, error) {
		category, ok := categories[q]
		if !ok {
			return nil, fmt.Errorf("no category configured for query %q", q)
		}
		return src.DueTomorrow(ctx, category)
	}
}

// programDashboard exposes the controller's snapshot to the API and feeds
// selections back through the program's message queue.
type programDashboard struct {
	ctrl    *tui.Controller
	program *tea.Program
}

func (d programDashboard) Snapshot() tui.Snapshot { return d.ctrl.Snapshot() }

func (d programDashboard) Select(index int) {
	d.program.Send(tui.SelectMsg{Index: index})
}

// configureRuntimeLogger sends logs to a file, since the terminal belongs
// to the UI. When the file cannot be opened logs are dropped.
func configureRuntimeLogger(path string, level log.Level) (*log.Logger, func()) {
	discard := func() (*log.Logger, func()) {
		l := log.New(io.Discard)
		log.SetDefault(l)
		return l, func() {}
	}

	if path == "" {
		return discard()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return discard()
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return discard()
	}

	logger := log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05.000",
		Prefix:          "homeroom",
	})
	log.SetDefault(logger)
	return logger, func() { _ = f.Close() }
}
