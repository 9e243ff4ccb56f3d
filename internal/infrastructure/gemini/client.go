package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/bestoffer/assistant-bot/internal/domain/constants"
	"github.com/bestoffer/assistant-bot/internal/domain/repository"
)

type geminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient builds the wording-override client. The model only
// rephrases the deterministic reply; it never decides anything, so no
// retries — a failed call just keeps the rule-based text.
func NewGeminiClient(apiKey string) (repository.AIRepository, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(constants.GeminiModelName)
	model.SetTemperature(constants.AITemperature)
	model.SetTopK(constants.AITopK)
	model.SetTopP(constants.AITopP)

	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{
			genai.Text(`You polish the wording of a food-ordering assistant's reply.

You receive a JSON object with the conversation language ("ar" or "en"), an
intent summary, a profile summary, ranked merchants/products, an optional
draft or created order, and "ruleBasedText" - the reply the system already
composed.

Rules:
- Rewrite ruleBasedText so it reads naturally and warmly in the given
  language. Iraqi-flavored Arabic for "ar", plain friendly English for "en".
- Keep every fact exactly as given: names, prices, totals, ratings, counts,
  order numbers. Never invent merchants, products, offers or prices.
- Keep any question the text ends with; it drives the conversation.
- Answer with the rewritten reply text only. No preamble, no markdown, no
  emoji.`),
		},
	}

	return &geminiClient{client: client, model: model}, nil
}

// RewriteReply sends the structured turn context and returns the
// model's rephrasing of the rule-based text.
func (g *geminiClient) RewriteReply(ctx context.Context, reqCtx repository.ReplyContext) (string, error) {
	payload, err := json.Marshal(reqCtx)
	if err != nil {
		return "", fmt.Errorf("failed to marshal reply context: %w", err)
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(payload))
	if err != nil {
		return "", fmt.Errorf("failed to generate reply override: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// Close releases the underlying client
func (g *geminiClient) Close() error {
	return g.client.Close()
}
