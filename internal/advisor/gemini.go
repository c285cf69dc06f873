// Package advisor asks a generative model for study advice and for
// explanations of photographed problems.
package advisor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

var (
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")
	ErrEmptyResponse = errors.New("model returned no text")
)

// Request is one prompt, optionally with an image attached.
type Request struct {
	Prompt   string
	Image    []byte
	MIMEType string
}

// Generator produces text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeminiClient calls the generateContent endpoint of the Generative
// Language API for a single model.
type GeminiClient struct {
	APIKey  string
	Model   string
	BaseURL string // optional override, mainly for tests
	Timeout time.Duration
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	InlineData *inlineData `json:"inlineData,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", ErrMissingAPIKey
	}
	if strings.TrimSpace(c.Model) == "" {
		return "", fmt.Errorf("missing model")
	}

	var parts []part
	if len(req.Image) > 0 {
		mime := req.MIMEType
		if mime == "" {
			mime = http.DetectContentType(req.Image)
		}
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: mime,
			Data:     base64.StdEncoding.EncodeToString(req.Image),
		}})
	}
	parts = append(parts, part{Text: req.Prompt})

	raw, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	url := strings.TrimRight(baseURL, "/") + "/v1beta/models/" + c.Model + ":generateContent"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.APIKey)

	client := &http.Client{Timeout: c.Timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return "", fmt.Errorf("gemini http %d: %s", resp.StatusCode, msg)
	}

	var sb strings.Builder
	for _, t := range gjson.GetBytes(body, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(t.String())
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
