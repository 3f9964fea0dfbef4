// Package genai is a thin client for a chat-completions style service
// used to score free-text documentation.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// APIKeyEnvVar names the environment variable holding the service key.
	APIKeyEnvVar = "GEN_AI_STUDIO_API_KEY"

	// DefaultEndpoint is the completions endpoint used when none is configured.
	DefaultEndpoint = "https://genai.rcac.purdue.edu/api/chat/completions"

	// DefaultModel is the completion model requested by default.
	DefaultModel = "llama3.1:latest"

	requestTimeout = 10 * time.Second
)

// Client calls a chat-completions endpoint with a bearer key.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

// New creates a completion client. Endpoint and model fall back to the
// defaults when empty.
func New(endpoint, model, apiKey string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: requestTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying completion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion service returned: %s", resp.Status)
	}

	var data chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(data.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	return strings.TrimSpace(data.Choices[0].Message.Content), nil
}

// ExtractScore parses the first line of a completion as a float and
// clamps it to [0,1]. Unparseable responses score 0.
func ExtractScore(response string) float64 {
	if response == "" {
		return 0
	}

	first := strings.TrimSpace(strings.SplitN(response, "\n", 2)[0])
	score, err := strconv.ParseFloat(first, 64)
	if err != nil {
		slog.Warn("could not parse score from completion", "response", first)
		return 0
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		slog.Warn("completion score out of range, clamping", "score", score)
		return 1
	}
	return score
}
