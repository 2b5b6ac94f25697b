package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/isdelr/talakhisi-be/internal/config"
	"github.com/rs/zerolog/log"
)

// Client talks to the Gemini generateContent endpoint.
type Client struct {
	http        *resty.Client
	apiKey      string
	model       string
	speechModel string
	voice       string
}

// NewClient creates a Gemini client from configuration. A missing API key is
// not an error here; every call reports ErrCredentialMissing instead.
func NewClient(cfg config.GeminiConfig) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(4 * time.Second)
	rc.AddRetryCondition(retryCondition)

	return &Client{
		http:        rc,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       cfg.Model,
		speechModel: cfg.SpeechModel,
		voice:       cfg.Voice,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code == 429 || code >= 500
}

type blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig struct {
		VoiceName string `json:"voiceName"`
	} `json:"prebuiltVoiceConfig"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type generationConfig struct {
	Temperature        *float64      `json:"temperature,omitempty"`
	ResponseMimeType   string        `json:"responseMimeType,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// text concatenates the text parts of the first candidate.
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// inlineData returns the first inline blob of the first candidate.
func (r *generateResponse) inlineData() *blob {
	if len(r.Candidates) == 0 {
		return nil
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return p.InlineData
		}
	}
	return nil
}

func (c *Client) generate(ctx context.Context, model string, body generateRequest) (*generateResponse, error) {
	if c.apiKey == "" {
		return nil, ErrCredentialMissing
	}

	var result generateResponse
	var failure errorEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", c.apiKey).
		SetPathParam("model", model).
		SetBody(body).
		SetResult(&result).
		SetError(&failure).
		Post("/models/{model}:generateContent")
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if resp.IsError() {
		apiErr := failure.Error
		if apiErr == nil {
			apiErr = &APIError{Status: resp.StatusCode(), Message: strings.TrimSpace(resp.String())}
		}
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode()
		}
		log.Error().Int("status", apiErr.Status).Str("code", apiErr.Code).Str("model", model).Msg("Gemini request rejected")
		return nil, classify(apiErr)
	}

	log.Debug().Str("model", model).Dur("elapsed", resp.Time()).Msg("Gemini request completed")
	return &result, nil
}
