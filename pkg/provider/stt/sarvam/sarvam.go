// Package sarvam provides a Sarvam AI-backed STT provider using the
// /speech-to-text REST endpoint. It implements the stt.Provider interface.
package sarvam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Kamalllx/evacuate/pkg/provider/stt"
)

const (
	defaultBaseURL = "https://api.sarvam.ai"
	defaultModel   = "saarika:v2"

	sttPath = "/speech-to-text"
)

// Option is a functional option for configuring the Sarvam Provider.
type Option func(*Provider)

// WithBaseURL overrides the default Sarvam API base URL.
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// WithModel sets the Sarvam STT model ID (e.g., "saarika:v2").
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider implements stt.Provider backed by the Sarvam AI REST API.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Compile-time assertion that Provider satisfies the stt.Provider interface.
var _ stt.Provider = (*Provider)(nil)

// New creates a new Sarvam STT Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("sarvam: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// sttResponse mirrors the Sarvam /speech-to-text response body.
type sttResponse struct {
	Transcript   string `json:"transcript"`
	LanguageCode string `json:"language_code"`
}

// Transcribe implements stt.Provider. The audio payload is sent as a
// multipart WAV upload together with the model and detection flags.
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (stt.Result, error) {
	if len(req.Audio) == 0 {
		return stt.Result{}, errors.New("sarvam: audio must not be empty")
	}

	body, contentType, err := buildMultipartBody(req.Audio, p.model, req.DetectLanguage)
	if err != nil {
		return stt.Result{}, fmt.Errorf("sarvam: build request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+sttPath, body)
	if err != nil {
		return stt.Result{}, fmt.Errorf("sarvam: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("api-subscription-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return stt.Result{}, fmt.Errorf("sarvam: speech-to-text HTTP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return stt.Result{}, fmt.Errorf("sarvam: speech-to-text: unexpected status %d: %s", resp.StatusCode, detail)
	}

	var sr sttResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return stt.Result{}, fmt.Errorf("sarvam: speech-to-text decode: %w", err)
	}

	lang := sr.LanguageCode
	if lang == "" {
		lang = req.Language
	}
	return stt.Result{Transcript: sr.Transcript, LanguageCode: lang}, nil
}

// buildMultipartBody assembles the multipart/form-data payload for one
// transcription call: the model and flag fields plus the WAV file part.
func buildMultipartBody(audio []byte, model string, detect bool) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if err := w.WriteField("model", model); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("with_timesteps", "false"); err != nil {
		return nil, "", err
	}
	if detect {
		if err := w.WriteField("detect_language", strconv.FormatBool(detect)); err != nil {
			return nil, "", err
		}
	}

	part, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
