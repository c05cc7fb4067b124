package advisor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// Gemini is a Completer backed by the Gemini API.
type Gemini struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

func NewGemini(apiKey, model string) *Gemini {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{apiKey: strings.TrimSpace(apiKey), model: model}
}

func (g *Gemini) ensureClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.apiKey == "" {
		return nil, ErrUnavailable
	}
	if g.client == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini: create client: %w", err)
		}
		g.client = client
	}
	return g.client, nil
}

func (g *Gemini) Complete(ctx context.Context, systemInstruction, query string) (string, error) {
	client, err := g.ensureClient(ctx)
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(query), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	return resp.Text(), nil
}

var _ Completer = (*Gemini)(nil)
