// Package sarvam provides a Sarvam AI-backed TTS provider using the
// /text-to-speech REST endpoint. It implements the tts.Provider interface.
package sarvam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Kamalllx/evacuate/pkg/provider/tts"
)

const (
	defaultBaseURL    = "https://api.sarvam.ai"
	defaultSampleRate = 22050

	ttsPath = "/text-to-speech"
)

// Option is a functional option for configuring the Sarvam Provider.
type Option func(*Provider)

// WithBaseURL overrides the default Sarvam API base URL.
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// WithSampleRate sets the output sample rate in Hz (e.g., 22050, 16000).
func WithSampleRate(hz int) Option {
	return func(p *Provider) { p.sampleRate = hz }
}

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider implements tts.Provider backed by the Sarvam AI REST API.
type Provider struct {
	apiKey     string
	baseURL    string
	sampleRate int
	httpClient *http.Client
}

// Compile-time assertion that Provider satisfies the tts.Provider interface.
var _ tts.Provider = (*Provider)(nil)

// New creates a new Sarvam TTS Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("sarvam: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		sampleRate: defaultSampleRate,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// ttsRequest mirrors the Sarvam /text-to-speech request body. Inputs carries
// exactly one chunk per call; the API accepts a batch but per-chunk calls keep
// the failure unit aligned with the caller's degradation policy.
type ttsRequest struct {
	Inputs              []string `json:"inputs"`
	TargetLanguageCode  string   `json:"target_language_code"`
	Speaker             string   `json:"speaker"`
	EnablePreprocessing bool     `json:"enable_preprocessing"`
	SpeechSampleRate    int      `json:"speech_sample_rate"`
}

// ttsResponse mirrors the Sarvam /text-to-speech response body.
type ttsResponse struct {
	Audios []string `json:"audios"`
}

// Synthesize implements tts.Provider. The returned string is the base64
// audio payload exactly as the API delivered it.
func (p *Provider) Synthesize(ctx context.Context, text, language string, voice tts.VoiceProfile) (string, error) {
	if text == "" {
		return "", errors.New("sarvam: text must not be empty")
	}
	if voice.Speaker == "" {
		return "", errors.New("sarvam: voice.Speaker must not be empty")
	}

	body, err := json.Marshal(ttsRequest{
		Inputs:              []string{text},
		TargetLanguageCode:  language,
		Speaker:             voice.Speaker,
		EnablePreprocessing: true,
		SpeechSampleRate:    p.sampleRate,
	})
	if err != nil {
		return "", fmt.Errorf("sarvam: encode tts request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+ttsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("sarvam: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-subscription-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sarvam: text-to-speech HTTP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("sarvam: text-to-speech: unexpected status %d: %s", resp.StatusCode, detail)
	}

	var tr ttsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("sarvam: text-to-speech decode: %w", err)
	}
	if len(tr.Audios) == 0 || tr.Audios[0] == "" {
		return "", errors.New("sarvam: text-to-speech: no audio in response")
	}
	return tr.Audios[0], nil
}
