// Command sermable is the main entry point for the Sermable recital coach.
// It reads a reference script, streams speech through the configured
// recogniser, tracks the speaker's progress word by word, and prints a
// performance report when the run ends.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Ebbbabebba/sermable/internal/align"
	"github.com/Ebbbabebba/sermable/internal/config"
	"github.com/Ebbbabebba/sermable/internal/health"
	"github.com/Ebbbabebba/sermable/internal/locale"
	"github.com/Ebbbabebba/sermable/internal/observe"
	"github.com/Ebbbabebba/sermable/internal/report"
	"github.com/Ebbbabebba/sermable/internal/script"
	"github.com/Ebbbabebba/sermable/internal/session"
	"github.com/Ebbbabebba/sermable/pkg/recog"
	"github.com/Ebbbabebba/sermable/pkg/recog/deepgram"
	recogmock "github.com/Ebbbabebba/sermable/pkg/recog/mock"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	scriptPath := flag.String("script", "", "path to the reference script text file")
	recentN := flag.Int("recent", 0, "print the N most recent stored sessions and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("sermable", version)
		return 0
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "sermable: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "sermable: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger, logLevel := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	// Watch the config file so log level changes apply without a restart.
	// Engine and locale changes only take effect on the next session.
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		diff := config.Diff(old, new)
		if diff.LogLevelChanged {
			logLevel.Set(slogLevel(diff.NewLogLevel))
			slog.Info("log level updated", "level", diff.NewLogLevel)
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	if *recentN > 0 {
		return printRecent(cfg, *recentN)
	}

	slog.Info("sermable starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Reference script ──────────────────────────────────────────────────────
	if *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "sermable: -script is required")
		return 1
	}
	text, err := os.ReadFile(*scriptPath)
	if err != nil {
		slog.Error("failed to read script", "path", *scriptPath, "err", err)
		return 1
	}
	tokens, err := script.Tokenize(string(text))
	if err != nil {
		slog.Error("failed to tokenize script", "path", *scriptPath, "err", err)
		return 1
	}

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "sermable",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Recogniser ────────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinRecognizers(reg)

	provider, err := reg.Create(cfg.Recognizer)
	if err != nil {
		slog.Error("failed to build recognizer", "name", cfg.Recognizer.Name, "err", err)
		return 1
	}

	// ── Report store (optional) ───────────────────────────────────────────────
	var store *report.Store
	if cfg.Store.PostgresDSN != "" {
		store, err = report.NewStore(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			slog.Error("failed to open report store", "err", err)
			return 1
		}
		defer store.Close()
	}

	// ── Session ───────────────────────────────────────────────────────────────
	tag := locale.Resolve(cfg.Locale.Tag, cfg.Locale.Overrides)
	startedAt := time.Now()

	sess := session.New(tokens,
		session.WithEngineConfig(cfg.Engine.Resolve()),
		session.WithScorer(align.NewScorer(align.WithPhoneticAssist())),
		session.WithListener(&consoleListener{tokens: tokens}),
		session.WithMetrics(metrics),
	)

	src := session.NewSource(provider,
		streamConfig(cfg, tag, tokens),
		session.WithAudioInput(os.Stdin),
		session.WithSourceMetrics(metrics),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)

	// ── Health and metrics endpoints ──────────────────────────────────────────
	if cfg.Server.ListenAddr != "" {
		srv := newHTTPServer(cfg.Server.ListenAddr, metrics, store)
		g.Go(func() error {
			slog.Info("http server listening", "addr", cfg.Server.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		sess.Start(gctx)
		return src.Run(gctx, sess)
	})

	slog.Info("session running — speak, or press Ctrl+C to finish early",
		"words", len(tokens),
		"locale", tag,
		"preset", cfg.Engine.Preset,
	)

	err = g.Wait()
	words := sess.Stop()

	if err != nil {
		slog.Error("run error", "err", err)
	}

	// ── Report ────────────────────────────────────────────────────────────────
	rep := report.New(words, startedAt, time.Since(startedAt), tag)
	fmt.Println()
	fmt.Println(rep.Summary.String())

	if cfg.Store.FilePath != "" {
		if serr := report.NewFileStore(cfg.Store.FilePath).Save(rep); serr != nil {
			slog.Error("failed to append report to file", "path", cfg.Store.FilePath, "err", serr)
		}
	}

	if store != nil {
		saveCtx, cancelSave := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelSave()
		id, serr := store.Save(saveCtx, rep)
		if serr != nil {
			slog.Error("failed to persist report", "err", serr)
		} else {
			slog.Info("report persisted", "session_id", id)
		}
	}

	if err != nil {
		return 1
	}
	return 0
}

// registerBuiltinRecognizers wires the recogniser factories that ship with
// Sermable into reg.
func registerBuiltinRecognizers(reg *config.Registry) {
	reg.Register("deepgram", func(entry config.RecognizerConfig) (recog.Provider, error) {
		var opts []deepgram.Option
		if entry.Model != "" {
			opts = append(opts, deepgram.WithModel(entry.Model))
		}
		if entry.SampleRate > 0 {
			opts = append(opts, deepgram.WithSampleRate(entry.SampleRate))
		}
		return deepgram.New(entry.APIKey, opts...)
	})

	// mock emits nothing; useful for wiring checks and timing drills where
	// every word resolves as missed.
	reg.Register("mock", func(config.RecognizerConfig) (recog.Provider, error) {
		return &recogmock.Provider{}, nil
	})
}

// streamConfig assembles the recogniser stream settings. The script's own
// vocabulary is passed as keyword boosts so rare words are favoured.
func streamConfig(cfg *config.Config, tag string, tokens []script.Token) recog.StreamConfig {
	boosts := make([]recog.KeywordBoost, 0, len(tokens))
	for _, w := range script.Words(tokens) {
		boosts = append(boosts, recog.KeywordBoost{Keyword: w, Boost: 1})
	}
	return recog.StreamConfig{
		SampleRate: cfg.Recognizer.SampleRate,
		Channels:   1,
		Locale:     tag,
		Keywords:   boosts,
	}
}

// printRecent lists the most recent stored sessions, newest first.
func printRecent(cfg *config.Config, n int) int {
	if cfg.Store.PostgresDSN == "" {
		fmt.Fprintln(os.Stderr, "sermable: -recent requires store.postgres_dsn to be configured")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := report.NewStore(ctx, cfg.Store.PostgresDSN)
	if err != nil {
		slog.Error("failed to open report store", "err", err)
		return 1
	}
	defer store.Close()

	rows, err := store.Recent(ctx, n)
	if err != nil {
		slog.Error("failed to list recent sessions", "err", err)
		return 1
	}
	if len(rows) == 0 {
		fmt.Println("no stored sessions")
		return 0
	}

	for _, row := range rows {
		fmt.Printf("#%-5d %s  %-7s %6s  %3d words  accuracy %3.0f%%  score %3.0f%%\n",
			row.ID,
			row.StartedAt.Local().Format("2006-01-02 15:04"),
			row.Locale,
			row.Duration.Round(time.Second),
			row.Summary.Total,
			row.Summary.Accuracy*100,
			row.Summary.DeliveryScore*100,
		)
	}
	return 0
}

// newHTTPServer builds the observability endpoint server: health probes and
// the Prometheus scrape endpoint, both wrapped in tracing middleware.
func newHTTPServer(addr string, metrics *observe.Metrics, store *report.Store) *http.Server {
	checkers := []health.Checker{}
	if store != nil {
		checkers = append(checkers, health.Checker{Name: "store", Check: store.Ping})
	}

	mux := http.NewServeMux()
	health.New(version, checkers...).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           observe.Middleware(metrics)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// consoleListener prints session events for the speaker.
type consoleListener struct {
	tokens []script.Token
}

func (c *consoleListener) OnWord(w align.WordPerformance) {
	switch w.Status {
	case align.StatusCorrect:
		fmt.Printf("  %3d %-20s ok (%.1fs)\n", w.Index, w.Word, w.TimeToSpeak.Seconds())
	case align.StatusHesitated:
		fmt.Printf("  %3d %-20s hesitated (%.1fs, %d wrong tries)\n", w.Index, w.Word, w.TimeToSpeak.Seconds(), len(w.WrongAttempts))
	case align.StatusSkipped:
		fmt.Printf("  %3d %-20s skipped\n", w.Index, w.Word)
	case align.StatusMissed:
		fmt.Printf("  %3d %-20s missed\n", w.Index, w.Word)
	}
}

func (c *consoleListener) OnHint(h align.HintState) {
	switch h.Phase {
	case align.HintTrying:
		fmt.Printf("      … try to recall word %d\n", h.TargetIndex)
	case align.HintShowing:
		if h.TargetIndex < len(c.tokens) {
			fmt.Printf("      → %s\n", c.tokens[h.TargetIndex].Raw)
		}
	}
}

func (c *consoleListener) OnComplete([]align.WordPerformance) {}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) (*slog.Logger, *slog.LevelVar) {
	lvl := new(slog.LevelVar)
	lvl.Set(slogLevel(level))
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), lvl
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
