package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DeepSeek Chat API совместим с форматом chat/completions.
type Provider struct {
	APIKey string
	Model  string
	httpc  *http.Client
}

func New(key, model string) *Provider {
	return &Provider{
		APIKey: key,
		Model:  model,
		httpc:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *Provider) Name() string { return "deepseek" }

func (p *Provider) GetModel() string { return p.Model }

func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("DEEPSEEK_API_KEY is empty")
	}

	body := map[string]any{
		"model": p.Model,
		"messages": []any{
			map[string]any{"role": "user", "content": prompt},
		},
	}
	payload, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.deepseek.com/chat/completions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("deepseek %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}
	if len(raw.Choices) == 0 {
		return "", fmt.Errorf("deepseek: empty response")
	}
	return strings.TrimSpace(raw.Choices[0].Message.Content), nil
}
