// Package advisor implements the external advisory classifier client: a
// prompt-driven model asked to grade screened vaccine candidates. Failures
// are normalized into a small taxonomy so the decision engine can fall back
// without caring why the call failed.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vaxscreen/internal/decision/ports"
)

const (
	defaultEndpoint  = "https://api.anthropic.com/v1/messages"
	defaultModel     = "claude-opus-4-1"
	defaultMaxTokens = 256
	apiVersion       = "2023-06-01"
)

// Config configures the advisory client. An empty APIKey means the advisor is
// explicitly absent; Advise then returns ErrNotConfigured immediately.
type Config struct {
	Endpoint   string
	Model      string
	APIKey     string
	MaxTokens  int
	HTTPClient *http.Client
}

// Client calls a messages-style completion API and parses its single JSON
// decision payload.
type Client struct {
	cfg Config
}

var _ ports.Advisor = (*Client)(nil)

// NewClient builds an advisory client, filling in endpoint and model
// defaults.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Advise submits the screening summary and returns the advisor's structured
// decision. Every failure mode maps to a categorized *Error.
func (c *Client) Advise(ctx context.Context, summary ports.Summary) (*ports.Advice, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages:  []message{{Role: "user", Content: buildPrompt(summary)}},
	})
	if err != nil {
		return nil, NewError(ErrorInternal, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, NewError(ErrorInternal, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewError(ErrorTimeout, "advisor call timed out", err)
		}
		return nil, NewError(ErrorOutage, "advisor unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewError(ErrorAuthentication, "advisor rejected credentials", nil)
	case resp.StatusCode >= http.StatusBadRequest:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, NewError(ErrorOutage,
			fmt.Sprintf("advisor error %s: %s", resp.Status, strings.TrimSpace(string(detail))), nil)
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, NewError(ErrorBadData, "decode response envelope", err)
	}
	if len(mr.Content) == 0 {
		return nil, NewError(ErrorBadData, "empty response content", nil)
	}

	advice, err := parseAdvice(mr.Content[0].Text)
	if err != nil {
		return nil, NewError(ErrorBadData, "parse decision payload", err)
	}
	return advice, nil
}

// parseAdvice extracts the single JSON decision object from the model reply,
// tolerating markdown code fences around it.
func parseAdvice(text string) (*ports.Advice, error) {
	payload := extractJSON(text)

	var advice ports.Advice
	if err := json.Unmarshal([]byte(payload), &advice); err != nil {
		return nil, fmt.Errorf("unmarshal advice: %w", err)
	}
	if advice.Verdict == "" {
		return nil, fmt.Errorf("advice missing decision field")
	}
	return &advice, nil
}

func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	// A ```json fence marks the payload wherever it sits, including after
	// leading prose.
	if _, after, ok := strings.Cut(text, "```json"); ok {
		if body, _, ok := strings.Cut(after, "```"); ok {
			return strings.TrimSpace(body)
		}
		return strings.TrimSpace(after)
	}
	if strings.Contains(text, "```") {
		for _, part := range strings.Split(text, "```") {
			if strings.Contains(part, "{") && strings.Contains(part, "}") {
				return strings.TrimSpace(part)
			}
		}
	}
	return text
}

// buildPrompt renders the decision rubric around the screening summary. The
// rubric mirrors the fallback rules so advisor and fallback pull in the same
// direction.
func buildPrompt(s ports.Summary) string {
	var b strings.Builder
	b.WriteString("You are evaluating a protein for vaccine candidate screening.\n\n")
	b.WriteString("Protein Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orUnknown(s.ProteinName))
	fmt.Fprintf(&b, "- Length: %d amino acids\n", s.SequenceLength)
	fmt.Fprintf(&b, "- Cellular location: %s\n", orUnknown(s.Localization))
	fmt.Fprintf(&b, "- Antigenicity score: %.3f (>0.5 is good)\n", s.Antigenicity)
	fmt.Fprintf(&b, "- Source: %s\n", orUnknown(s.Source))
	fmt.Fprintf(&b, "- Flags: %v\n\n", s.Flags)
	b.WriteString("Decision criteria:\n")
	b.WriteString("- Surface proteins (extracellular, outer membrane) are preferred\n")
	b.WriteString("- High antigenicity scores (>0.5) indicate good immune response\n")
	b.WriteString("- Reasonable length (50-2000 amino acids) for vaccine development\n")
	b.WriteString("- No major safety flags\n\n")
	b.WriteString("Respond in JSON only:\n")
	b.WriteString(`{
    "decision": "advance" or "deprioritize" or "discard",
    "reasoning": "one sentence explanation",
    "confidence": "high" or "medium" or "low",
    "flags": ["flag1", "flag2"] or []
}`)
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
