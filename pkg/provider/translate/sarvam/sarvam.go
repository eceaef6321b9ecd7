// Package sarvam provides a Sarvam AI-backed translation provider using the
// /translate REST endpoint. It implements the translate.Provider interface.
package sarvam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Kamalllx/evacuate/pkg/provider/translate"
)

const (
	defaultBaseURL = "https://api.sarvam.ai"
	defaultMode    = "formal"

	translatePath = "/translate"
)

// Option is a functional option for configuring the Sarvam Provider.
type Option func(*Provider)

// WithBaseURL overrides the default Sarvam API base URL.
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// WithMode sets the translation register (e.g., "formal", "colloquial").
func WithMode(mode string) Option {
	return func(p *Provider) { p.mode = mode }
}

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider implements translate.Provider backed by the Sarvam AI REST API.
type Provider struct {
	apiKey     string
	baseURL    string
	mode       string
	httpClient *http.Client
}

// Compile-time assertion that Provider satisfies translate.Provider.
var _ translate.Provider = (*Provider)(nil)

// New creates a new Sarvam translation Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("sarvam: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		mode:       defaultMode,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// translateRequest mirrors the Sarvam /translate request body.
type translateRequest struct {
	Input               string `json:"input"`
	SourceLanguageCode  string `json:"source_language_code"`
	TargetLanguageCode  string `json:"target_language_code"`
	Mode                string `json:"mode"`
	EnablePreprocessing bool   `json:"enable_preprocessing"`
}

// translateResponse mirrors the Sarvam /translate response body.
type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// Translate implements translate.Provider.
func (p *Provider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if text == "" {
		return "", nil
	}

	body, err := json.Marshal(translateRequest{
		Input:               text,
		SourceLanguageCode:  sourceLang,
		TargetLanguageCode:  targetLang,
		Mode:                p.mode,
		EnablePreprocessing: true,
	})
	if err != nil {
		return "", fmt.Errorf("sarvam: encode translate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+translatePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("sarvam: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-subscription-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sarvam: translate HTTP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("sarvam: translate: unexpected status %d: %s", resp.StatusCode, detail)
	}

	var tr translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("sarvam: translate decode: %w", err)
	}
	if tr.TranslatedText == "" {
		return "", errors.New("sarvam: translate: empty translated_text in response")
	}
	return tr.TranslatedText, nil
}
