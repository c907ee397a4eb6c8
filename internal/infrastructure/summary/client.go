package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cartsaver/backend/internal/domain"
)

const systemPrompt = "Tu es un assistant d'épicerie québécois. Résume la comparaison " +
	"de prix fournie en deux ou trois phrases simples: meilleur magasin, économie, " +
	"produits introuvables. Réponds en français, sans liste à puces."

// Client generates the recap through an OpenAI-compatible chat-completions
// endpoint, degrading to the deterministic TextBuilder on any failure.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	fallback   *TextBuilder
	debug      bool
}

// NewClient creates a new LLM summary client
func NewClient(apiKey, baseURL, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		fallback:   NewTextBuilder(),
	}
}

// SetDebug toggles request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// chat-completions wire shapes, reduced to the fields we use
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate asks the model for a recap. All failures fall back to the
// deterministic text; this method never returns an error.
func (c *Client) Generate(ctx context.Context, s *domain.ComparisonSummary) (string, error) {
	text, err := c.complete(ctx, s)
	if err != nil {
		if c.debug {
			log.Printf("[SUMMARY] falling back to template: %v", err)
		}
		return c.fallback.Generate(ctx, s)
	}
	return text, nil
}

// complete performs one chat-completions call.
func (c *Client) complete(ctx context.Context, s *domain.ComparisonSummary) (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(payload)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion status %d: %s", resp.StatusCode, string(raw))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty completion")
	}

	return chat.Choices[0].Message.Content, nil
}
