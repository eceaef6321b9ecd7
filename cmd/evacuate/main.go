// Command evacuate is the entry point for the multilingual voice
// travel-guide server.
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

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Kamalllx/evacuate/internal/config"
	"github.com/Kamalllx/evacuate/internal/gateway"
	"github.com/Kamalllx/evacuate/internal/health"
	"github.com/Kamalllx/evacuate/internal/history"
	"github.com/Kamalllx/evacuate/internal/knowledge"
	"github.com/Kamalllx/evacuate/internal/observe"
	"github.com/Kamalllx/evacuate/internal/pipeline"
	"github.com/Kamalllx/evacuate/internal/resilience"
	"github.com/Kamalllx/evacuate/pkg/provider/llm"
	"github.com/Kamalllx/evacuate/pkg/provider/llm/anyllm"
	oaillm "github.com/Kamalllx/evacuate/pkg/provider/llm/openai"
	"github.com/Kamalllx/evacuate/pkg/provider/stt"
	sarvamstt "github.com/Kamalllx/evacuate/pkg/provider/stt/sarvam"
	"github.com/Kamalllx/evacuate/pkg/provider/translate"
	sarvamtranslate "github.com/Kamalllx/evacuate/pkg/provider/translate/sarvam"
	"github.com/Kamalllx/evacuate/pkg/provider/tts"
	sarvamtts "github.com/Kamalllx/evacuate/pkg/provider/tts/sarvam"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "evacuate: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "evacuate: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	listenAddr := cfg.Server.ListenAddr
	if listenAddr == "" {
		listenAddr = ":8080"
	}
	slog.Info("evacuate starting",
		"config", *configPath,
		"listen_addr", listenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics ───────────────────────────────────────────────────────────────
	metricsShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "evacuate"})
	if err != nil {
		slog.Error("failed to initialise metrics provider", "err", err)
		return 1
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsShutdown(shCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Providers ─────────────────────────────────────────────────────────────
	providers, err := buildProviders(cfg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Knowledge catalogue ───────────────────────────────────────────────────
	catalog := knowledge.BuiltinCatalog()
	if cfg.Knowledge.TopicsFile != "" {
		catalog, err = knowledge.LoadCatalogFile(cfg.Knowledge.TopicsFile)
		if err != nil {
			slog.Error("failed to load topics file", "err", err)
			return 1
		}
		slog.Info("topic catalogue loaded",
			"file", cfg.Knowledge.TopicsFile, "topics", catalog.Len())
	}

	// ── Pipeline and gateway ──────────────────────────────────────────────────
	hist := history.NewStoreWithCap(cfg.Pipeline.HistoryLimit)
	pipe := pipeline.NewPipeline(
		providers.stt, providers.translator, providers.tts, providers.llm,
		hist, catalog, metrics,
		pipeline.Config{
			PivotLanguage:       cfg.Pipeline.PivotLanguage,
			TranslateChunkLimit: cfg.Pipeline.TranslateChunkLimit,
			TTSChunkLimit:       cfg.Pipeline.TTSChunkLimit,
			Voices:              cfg.Pipeline.Voices,
			DefaultVoice:        cfg.Pipeline.DefaultVoice,
			Temperature:         cfg.Pipeline.Temperature,
		},
	)
	gw := gateway.NewServer(pipe, hist, catalog, metrics)

	// ── HTTP routes ───────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.Handle("/ws", gw)
	gw.RegisterHTTP(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	health.New().
		Add("catalogue", func(context.Context) error {
			if catalog.Len() == 0 {
				return errors.New("no topics loaded")
			}
			return nil
		}).
		Add("providers", func(context.Context) error {
			if providers.stt == nil || providers.translator == nil ||
				providers.tts == nil || providers.llm == nil {
				return errors.New("provider missing")
			}
			return nil
		}).
		Register(mux)

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: mux,
	}

	// ── Serve ─────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready — press Ctrl+C to shut down")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		shCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// providerSet bundles the constructed pipeline collaborators.
type providerSet struct {
	stt        stt.Provider
	translator translate.Provider
	tts        tts.Provider
	llm        llm.Provider
}

// buildProviders instantiates the providers named in cfg.
func buildProviders(cfg *config.Config) (*providerSet, error) {
	ps := &providerSet{}
	var err error

	if ps.stt, err = buildSTT(cfg.Providers.STT); err != nil {
		return nil, fmt.Errorf("create stt provider %q: %w", cfg.Providers.STT.Name, err)
	}
	slog.Info("provider created", "kind", "stt", "name", cfg.Providers.STT.Name)

	if ps.translator, err = buildTranslate(cfg.Providers.Translate); err != nil {
		return nil, fmt.Errorf("create translate provider %q: %w", cfg.Providers.Translate.Name, err)
	}
	slog.Info("provider created", "kind", "translate", "name", cfg.Providers.Translate.Name)

	if ps.tts, err = buildTTS(cfg.Providers.TTS); err != nil {
		return nil, fmt.Errorf("create tts provider %q: %w", cfg.Providers.TTS.Name, err)
	}
	slog.Info("provider created", "kind", "tts", "name", cfg.Providers.TTS.Name)

	primary, err := buildLLM(cfg.Providers.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm provider %q: %w", cfg.Providers.LLM.Name, err)
	}
	slog.Info("provider created",
		"kind", "llm", "name", cfg.Providers.LLM.Name, "model", cfg.Providers.LLM.Model)
	ps.llm = primary

	if entry := cfg.Providers.LLMFallback; entry.Name != "" {
		secondary, err := buildLLM(entry)
		if err != nil {
			return nil, fmt.Errorf("create llm fallback provider %q: %w", entry.Name, err)
		}
		group := resilience.NewLLMFallback(primary, cfg.Providers.LLM.Name, resilience.Config{})
		group.AddFallback(entry.Name, secondary)
		ps.llm = group
		slog.Info("provider created",
			"kind", "llm_fallback", "name", entry.Name, "model", entry.Model)
	}

	return ps, nil
}

func buildSTT(entry config.ProviderEntry) (stt.Provider, error) {
	switch entry.Name {
	case "sarvam":
		var opts []sarvamstt.Option
		if entry.BaseURL != "" {
			opts = append(opts, sarvamstt.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, sarvamstt.WithModel(entry.Model))
		}
		return sarvamstt.New(entry.APIKey, opts...)
	default:
		return nil, fmt.Errorf("unknown stt provider %q", entry.Name)
	}
}

func buildTranslate(entry config.ProviderEntry) (translate.Provider, error) {
	switch entry.Name {
	case "sarvam":
		var opts []sarvamtranslate.Option
		if entry.BaseURL != "" {
			opts = append(opts, sarvamtranslate.WithBaseURL(entry.BaseURL))
		}
		if mode := optString(entry.Options, "mode"); mode != "" {
			opts = append(opts, sarvamtranslate.WithMode(mode))
		}
		return sarvamtranslate.New(entry.APIKey, opts...)
	default:
		return nil, fmt.Errorf("unknown translate provider %q", entry.Name)
	}
}

func buildTTS(entry config.ProviderEntry) (tts.Provider, error) {
	switch entry.Name {
	case "sarvam":
		var opts []sarvamtts.Option
		if entry.BaseURL != "" {
			opts = append(opts, sarvamtts.WithBaseURL(entry.BaseURL))
		}
		if hz := optInt(entry.Options, "sample_rate"); hz > 0 {
			opts = append(opts, sarvamtts.WithSampleRate(hz))
		}
		return sarvamtts.New(entry.APIKey, opts...)
	default:
		return nil, fmt.Errorf("unknown tts provider %q", entry.Name)
	}
}

// buildLLM constructs a model backend. "openai" uses the dedicated
// openai-go provider; everything else rides any-llm-go's multi-provider
// client.
func buildLLM(entry config.ProviderEntry) (llm.Provider, error) {
	switch entry.Name {
	case "openai":
		var opts []oaillm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaillm.WithBaseURL(entry.BaseURL))
		}
		return oaillm.New(entry.APIKey, entry.Model, opts...)

	case "ollama":
		// Local server: BaseURL is the address, no API key.
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)

	case "anthropic", "gemini", "deepseek", "mistral", "groq":
		var opts []anyllmlib.Option
		if entry.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New(entry.Name, entry.Model, opts...)

	default:
		return nil, fmt.Errorf("unknown llm provider %q", entry.Name)
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map.
func optString(opts map[string]any, key string) string {
	if v, ok := opts[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// optInt extracts an int value from a provider Options map.
func optInt(opts map[string]any, key string) int {
	if v, ok := opts[key]; ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return 0
}
