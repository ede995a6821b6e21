package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Provider struct {
	APIKey string
	Model  string
}

func New(key, model string) *Provider {
	return &Provider{APIKey: key, Model: model}
}

func (p *Provider) Name() string { return "gemini" }

func (p *Provider) GetModel() string { return p.Model }

func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	if p.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(p.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(strings.TrimSpace(p.Model))
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	txt := firstText(resp)
	if txt == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return strings.TrimSpace(txt), nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
