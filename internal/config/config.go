// Package config provides the configuration schema and loader for the voice
// travel-guide server.
package config

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure, typically loaded from a YAML
// file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares which provider implementation serves each
// pipeline stage.
type ProvidersConfig struct {
	STT       ProviderEntry `yaml:"stt"`
	Translate ProviderEntry `yaml:"translate"`
	TTS       ProviderEntry `yaml:"tts"`
	LLM       ProviderEntry `yaml:"llm"`

	// LLMFallback optionally configures a secondary model backend that
	// takes over when the primary's circuit breaker trips.
	LLMFallback ProviderEntry `yaml:"llm_fallback"`
}

// ProviderEntry is the common configuration block shared by all provider
// kinds.
type ProviderEntry struct {
	// Name selects the provider implementation (e.g., "sarvam", "groq",
	// "openai").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint. Leave empty to
	// use the built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g.,
	// "llama3-70b-8192", "saarika:v2").
	Model string `yaml:"model"`

	// Options holds provider-specific values not covered by the standard
	// fields above.
	Options map[string]any `yaml:"options"`
}

// PipelineConfig holds the conversation pipeline's tuning knobs.
type PipelineConfig struct {
	// PivotLanguage is the language all generation happens in.
	// Default: "en-IN".
	PivotLanguage string `yaml:"pivot_language"`

	// TranslateChunkLimit bounds the characters sent per translation call.
	// Default: 900.
	TranslateChunkLimit int `yaml:"translate_chunk_limit"`

	// TTSChunkLimit bounds the characters sent per synthesis call.
	// Default: 450.
	TTSChunkLimit int `yaml:"tts_chunk_limit"`

	// HistoryLimit caps the per-session conversation turns. Default: 50.
	HistoryLimit int `yaml:"history_limit"`

	// Temperature is the generation sampling temperature. Default: 0.3.
	Temperature float64 `yaml:"temperature"`

	// Voices maps language tags to provider speaker names. Unmapped
	// languages use DefaultVoice.
	Voices map[string]string `yaml:"voices"`

	// DefaultVoice is the speaker for unmapped languages. Default: "meera".
	DefaultVoice string `yaml:"default_voice"`
}

// KnowledgeConfig holds the topic-catalogue settings.
type KnowledgeConfig struct {
	// TopicsFile is the path to a topics YAML file. Empty means the
	// compiled-in catalogue.
	TopicsFile string `yaml:"topics_file"`
}
