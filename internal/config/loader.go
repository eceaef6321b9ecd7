package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind. Used by
// [Validate] to warn about unrecognised names.
var ValidProviderNames = map[string][]string{
	"stt":       {"sarvam"},
	"translate": {"sarvam"},
	"tts":       {"sarvam"},
	"llm":       {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. Convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("translate", cfg.Providers.Translate.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("llm", cfg.Providers.LLMFallback.Name)

	// Every stage needs a provider; the pipeline has no local substitutes.
	if cfg.Providers.STT.Name == "" {
		errs = append(errs, errors.New("providers.stt.name is required"))
	}
	if cfg.Providers.Translate.Name == "" {
		errs = append(errs, errors.New("providers.translate.name is required"))
	}
	if cfg.Providers.TTS.Name == "" {
		errs = append(errs, errors.New("providers.tts.name is required"))
	}
	if cfg.Providers.LLM.Name == "" {
		errs = append(errs, errors.New("providers.llm.name is required"))
	}
	if cfg.Providers.LLMFallback.Name != "" && cfg.Providers.LLMFallback.Name == cfg.Providers.LLM.Name &&
		cfg.Providers.LLMFallback.Model == cfg.Providers.LLM.Model {
		slog.Warn("llm_fallback duplicates the primary llm; failover will retry the same backend",
			"name", cfg.Providers.LLM.Name, "model", cfg.Providers.LLM.Model)
	}

	// Pipeline
	if cfg.Pipeline.TranslateChunkLimit < 0 {
		errs = append(errs, fmt.Errorf("pipeline.translate_chunk_limit %d is negative", cfg.Pipeline.TranslateChunkLimit))
	}
	if cfg.Pipeline.TTSChunkLimit < 0 {
		errs = append(errs, fmt.Errorf("pipeline.tts_chunk_limit %d is negative", cfg.Pipeline.TTSChunkLimit))
	}
	if cfg.Pipeline.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("pipeline.history_limit %d is negative", cfg.Pipeline.HistoryLimit))
	}
	if cfg.Pipeline.Temperature < 0 || cfg.Pipeline.Temperature > 2 {
		errs = append(errs, fmt.Errorf("pipeline.temperature %.2f is out of range [0, 2]", cfg.Pipeline.Temperature))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
