// Package pipeline orchestrates one voice conversation turn: transcription,
// optional language detection, translation into the pivot language,
// knowledge-context selection, answer generation, structured normalisation,
// translation back, and chunked speech synthesis.
//
// Failure handling is stage-local and deliberately asymmetric. Only a failed
// or empty transcription aborts the turn ([ErrTranscription]): without text
// there is nothing to answer. Every later stage degrades in place instead —
// detection keeps the declared language, a failed translation chunk passes
// through untranslated, a failed generation substitutes a fixed apology, and
// failed synthesis chunks are skipped. A degraded turn still produces a full
// response.
//
// Process is safe for concurrent use across sessions; the transport
// serialises calls within one session.
package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Kamalllx/evacuate/internal/answer"
	"github.com/Kamalllx/evacuate/internal/history"
	"github.com/Kamalllx/evacuate/internal/knowledge"
	"github.com/Kamalllx/evacuate/internal/observe"
	"github.com/Kamalllx/evacuate/internal/textchunk"
	"github.com/Kamalllx/evacuate/pkg/provider/llm"
	"github.com/Kamalllx/evacuate/pkg/provider/stt"
	"github.com/Kamalllx/evacuate/pkg/provider/tts"
	"github.com/Kamalllx/evacuate/pkg/provider/translate"
)

// ErrTranscription is returned when the turn cannot proceed because no
// transcript could be obtained from the audio.
var ErrTranscription = errors.New("pipeline: transcription failed")

// apologyReply is the fixed answer substituted when generation fails.
const apologyReply = "I apologize, but I'm having trouble processing your request. Could you please try again with a different question?"

// Defaults applied by NewPipeline for zero-value [Config] fields.
const (
	DefaultPivotLanguage       = "en-IN"
	DefaultTranslateChunkLimit = 900
	DefaultTTSChunkLimit       = 450
	DefaultVoice               = "meera"
	DefaultTemperature         = 0.3
)

// Config holds the pipeline's tuning knobs.
type Config struct {
	// PivotLanguage is the language all generation happens in.
	PivotLanguage string

	// TranslateChunkLimit bounds the text sent per translation call.
	TranslateChunkLimit int

	// TTSChunkLimit bounds the text sent per synthesis call.
	TTSChunkLimit int

	// Voices maps language tags to provider speaker names. Languages not in
	// the map use DefaultVoice.
	Voices map[string]string

	// DefaultVoice is the speaker used for unmapped languages.
	DefaultVoice string

	// Temperature is the sampling temperature for generation.
	Temperature float64
}

// Request is one inbound voice turn.
type Request struct {
	// SessionKey identifies the conversation session.
	SessionKey string

	// Audio is the base64-encoded audio payload (WAV).
	Audio string

	// Language is the declared spoken language. Empty means the pivot
	// language.
	Language string

	// AutoDetect asks the pipeline to identify the spoken language from the
	// audio instead of trusting Language.
	AutoDetect bool

	// LocationID optionally pins the knowledge context to a known topic.
	LocationID string

	// OnLanguageDetected, when set, is called with the detected language tag
	// before transcription begins. Used by the transport to notify the
	// client mid-turn.
	OnLanguageDetected func(language string)
}

// Response is the completed voice turn sent back to the client.
type Response struct {
	// OriginalText is the transcript in the spoken language.
	OriginalText string `json:"original_text"`

	// EnglishText is the transcript in the pivot language (equal to
	// OriginalText when no translation was needed).
	EnglishText string `json:"english_text"`

	// EnglishResponse is the normalised answer in the pivot language.
	EnglishResponse string `json:"english_response"`

	// Text is the answer in the user's language.
	Text string `json:"text"`

	// Audio is the base64-encoded spoken answer, empty when synthesis
	// produced nothing.
	Audio string `json:"audio,omitempty"`

	// Timestamp is when the turn completed.
	Timestamp time.Time `json:"timestamp"`

	// Language is the language the turn was conducted in.
	Language string `json:"language"`

	// LocationContext names the matched knowledge topic, empty when the
	// fallback context was used.
	LocationContext string `json:"location_context"`
}

// Pipeline wires the providers, the session history, and the knowledge
// catalogue into the per-turn orchestration.
type Pipeline struct {
	stt        stt.Provider
	translator translate.Provider
	tts        tts.Provider
	llm        llm.Provider
	history    *history.Store
	catalog    *knowledge.Catalog
	metrics    *observe.Metrics
	cfg        Config
}

// NewPipeline creates a Pipeline. All providers, the history store, and the
// catalogue are required; metrics may be nil for unmetered operation.
// Zero-value Config fields are replaced with defaults.
func NewPipeline(
	sttProvider stt.Provider,
	translator translate.Provider,
	ttsProvider tts.Provider,
	llmProvider llm.Provider,
	hist *history.Store,
	catalog *knowledge.Catalog,
	metrics *observe.Metrics,
	cfg Config,
) *Pipeline {
	if cfg.PivotLanguage == "" {
		cfg.PivotLanguage = DefaultPivotLanguage
	}
	if cfg.TranslateChunkLimit <= 0 {
		cfg.TranslateChunkLimit = DefaultTranslateChunkLimit
	}
	if cfg.TTSChunkLimit <= 0 {
		cfg.TTSChunkLimit = DefaultTTSChunkLimit
	}
	if cfg.DefaultVoice == "" {
		cfg.DefaultVoice = DefaultVoice
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	return &Pipeline{
		stt:        sttProvider,
		translator: translator,
		tts:        ttsProvider,
		llm:        llmProvider,
		history:    hist,
		catalog:    catalog,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// Process runs one full voice turn. It returns [ErrTranscription] (wrapped)
// when the audio yields no transcript; every other stage failure degrades
// and the turn completes.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	degraded := false

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		p.metrics.RecordRequest(ctx, observe.StatusFailed, time.Since(start))
		return nil, fmt.Errorf("%w: decode audio payload: %v", ErrTranscription, err)
	}

	language := req.Language
	if language == "" {
		language = p.cfg.PivotLanguage
	}

	// Language detection runs as a separate recognition call so a detection
	// outage cannot take the whole turn down.
	if req.AutoDetect {
		detected, err := p.detectLanguage(ctx, audio)
		switch {
		case err != nil:
			degraded = true
			p.metrics.RecordDegradedStage(ctx, observe.StageDetect)
			slog.Warn("language detection failed, keeping declared language",
				"session", req.SessionKey, "language", language, "error", err)
		case detected != "":
			language = detected
			slog.Info("language auto-detected",
				"session", req.SessionKey, "language", language)
			if req.OnLanguageDetected != nil {
				req.OnLanguageDetected(language)
			}
		}
	}

	originalText, err := p.transcribe(ctx, audio, language)
	if err != nil {
		p.metrics.RecordRequest(ctx, observe.StatusFailed, time.Since(start))
		return nil, err
	}
	slog.Info("transcribed user audio",
		"session", req.SessionKey, "language", language, "chars", len(originalText))

	p.history.Append(req.SessionKey, originalText, true, language)

	// Translate into the pivot language. Identity law: no collaborator call
	// when the languages already match.
	needsTranslation := language != p.cfg.PivotLanguage
	englishText := originalText
	if needsTranslation {
		var ok bool
		englishText, ok = p.translateChunked(ctx, originalText, language, p.cfg.PivotLanguage)
		if !ok {
			degraded = true
		}
	}

	kctx := p.catalog.Select(englishText, req.LocationID)

	englishResponse, genOK := p.generate(ctx, req.SessionKey, language, englishText, kctx)
	if !genOK {
		degraded = true
	}

	text := englishResponse
	if needsTranslation {
		var ok bool
		text, ok = p.translateChunked(ctx, englishResponse, p.cfg.PivotLanguage, language)
		if !ok {
			degraded = true
		}
	}

	p.history.Append(req.SessionKey, text, false, language)

	audioOut, ok := p.synthesize(ctx, text, language)
	if !ok {
		degraded = true
	}

	status := observe.StatusOK
	if degraded {
		status = observe.StatusDegraded
	}
	p.metrics.RecordRequest(ctx, status, time.Since(start))

	return &Response{
		OriginalText:    originalText,
		EnglishText:     englishText,
		EnglishResponse: englishResponse,
		Text:            text,
		Audio:           audioOut,
		Timestamp:       time.Now().UTC(),
		Language:        language,
		LocationContext: kctx.TopicName(),
	}, nil
}

// detectLanguage asks the recognition backend to identify the spoken
// language. Only the language code of the result is consumed.
func (p *Pipeline) detectLanguage(ctx context.Context, audio []byte) (string, error) {
	start := time.Now()
	res, err := p.stt.Transcribe(ctx, stt.Request{
		Audio:          audio,
		DetectLanguage: true,
	})
	p.metrics.RecordStage(ctx, observe.StageSTT, time.Since(start))
	if err != nil {
		return "", err
	}
	return res.LanguageCode, nil
}

// transcribe converts the audio to text. A provider error or an empty
// transcript is the turn's one hard failure.
func (p *Pipeline) transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	start := time.Now()
	res, err := p.stt.Transcribe(ctx, stt.Request{
		Audio:    audio,
		Language: language,
	})
	p.metrics.RecordStage(ctx, observe.StageSTT, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	transcript := strings.TrimSpace(res.Transcript)
	if transcript == "" {
		return "", fmt.Errorf("%w: empty transcript", ErrTranscription)
	}
	return transcript, nil
}

// translateChunked translates text chunk by chunk. A failed chunk passes
// through untranslated; ok reports whether every chunk translated cleanly.
func (p *Pipeline) translateChunked(ctx context.Context, text, source, target string) (result string, ok bool) {
	ok = true
	chunks := textchunk.Split(text, p.cfg.TranslateChunkLimit)
	translated := make([]string, 0, len(chunks))

	for _, chunk := range chunks {
		start := time.Now()
		out, err := p.translator.Translate(ctx, chunk, source, target)
		p.metrics.RecordStage(ctx, observe.StageTranslate, time.Since(start))
		if err != nil {
			ok = false
			p.metrics.RecordDegradedStage(ctx, observe.StageTranslate)
			slog.Warn("translation chunk failed, keeping original text",
				"source", source, "target", target, "chars", len(chunk), "error", err)
			out = chunk
		}
		translated = append(translated, out)
	}
	return strings.Join(translated, " "), ok
}

// generate runs the model and normalises its output. A failed generation
// substitutes the fixed apology and skips normalisation.
func (p *Pipeline) generate(ctx context.Context, sessionKey, language, input string, kctx knowledge.Context) (reply string, ok bool) {
	reqLLM := llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{{
			Role:    "user",
			Content: buildUserMessage(language, p.history.AsText(sessionKey), kctx, input),
		}},
		Temperature: p.cfg.Temperature,
	}

	start := time.Now()
	resp, err := p.llm.Complete(ctx, reqLLM)
	p.metrics.RecordStage(ctx, observe.StageLLM, time.Since(start))
	if err != nil {
		p.metrics.RecordDegradedStage(ctx, observe.StageLLM)
		slog.Error("generation failed, substituting apology",
			"session", sessionKey, "error", err)
		return apologyReply, false
	}

	return answer.Parse(resp.Content).Render(), true
}

// synthesize converts the answer to speech chunk by chunk and returns the
// first successfully synthesised chunk. Failed chunks are logged and
// skipped; ok reports whether every chunk synthesised cleanly.
//
// TODO: concatenate the per-chunk audio once the client can stitch or queue
// multi-part payloads; until then long answers are spoken truncated.
func (p *Pipeline) synthesize(ctx context.Context, text, language string) (audio string, ok bool) {
	ok = true
	voice := tts.VoiceProfile{Speaker: p.voiceFor(language), Language: language}
	chunks := textchunk.Split(text, p.cfg.TTSChunkLimit)

	var first string
	for i, chunk := range chunks {
		start := time.Now()
		out, err := p.tts.Synthesize(ctx, chunk, language, voice)
		p.metrics.RecordStage(ctx, observe.StageTTS, time.Since(start))
		if err != nil || out == "" {
			ok = false
			p.metrics.RecordDegradedStage(ctx, observe.StageTTS)
			slog.Warn("synthesis chunk failed, skipping",
				"chunk", i+1, "chunks", len(chunks), "language", language, "error", err)
			continue
		}
		if first == "" {
			first = out
		}
	}
	if first == "" && len(chunks) > 0 {
		slog.Error("no audio chunks were successfully generated", "language", language)
		return "", false
	}
	return first, ok
}

// voiceFor maps a language tag to the configured speaker.
func (p *Pipeline) voiceFor(language string) string {
	if s, found := p.cfg.Voices[language]; found && s != "" {
		return s
	}
	return p.cfg.DefaultVoice
}
