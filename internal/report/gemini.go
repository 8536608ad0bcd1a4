package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"abdig/internal/attendance"
	"abdig/internal/roster"
)

// Gemini calls the Generative Language REST API.
type Gemini struct {
	BaseURL  string
	APIKey   string
	Model    string
	HTTP     *http.Client
	Log      *zap.Logger
	Location *time.Location
	Now      func() time.Time
}

// NewGemini creates a client bounded by timeout.
func NewGemini(baseURL, apiKey, model string, timeout time.Duration) *Gemini {
	return &Gemini{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		Model:    model,
		HTTP:     &http.Client{Timeout: timeout},
		Log:      zap.NewNop(),
		Location: time.UTC,
		Now:      time.Now,
	}
}

var _ Summarizer = (*Gemini)(nil)

// Summarize tallies records and asks the model for an executive summary.
func (g *Gemini) Summarize(ctx context.Context, records []attendance.Record, role roster.Role) string {
	if g.APIKey == "" {
		return NotConfiguredText
	}
	today := g.Now().In(g.Location).Format(attendance.DateLayout)
	text, err := g.Generate(ctx, Prompt(attendance.Count(records), role, today))
	if err != nil {
		g.Log.Warn("gemini summary failed", zap.Error(err))
		return FallbackText
	}
	return text
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// Generate sends prompt and returns the concatenated text of the first candidate.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.BaseURL, g.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	resp, err := g.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("gemini error %s: %s", resp.Status, string(bodyBytes))
	}

	var out struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}
