// Package support holds the chat responder behind the live support widget.
package support

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"google.golang.org/genai"
)

// Reply is a single support answer.
type Reply struct {
	Text   string
	Source string // "ai" or "human"
}

type Responder interface {
	Respond(ctx context.Context, message string) (Reply, error)
}

const systemPrompt = `You are a helpful customer support assistant for FinanceX, a digital finance platform.
You should be professional, friendly, and knowledgeable about account management,
payment processing, transactions, security features, and platform navigation.
If you cannot help with a specific issue, offer to connect the user with a human agent.
Keep responses concise but helpful.`

// CannedResponder simulates a human agent with rotating stock answers —
// used in ENV=local and whenever no Gemini API key is configured.
type CannedResponder struct{}

var cannedReplies = []string{
	"Thank you for contacting FinanceX support. I'm reviewing your request and will provide assistance shortly.",
	"I understand your concern. Let me look into this for you right away.",
	"That's a great question! I'll need to check a few things on your account to give you the most accurate information.",
	"I'm here to help you resolve this issue. Can you provide me with a bit more detail about what you're experiencing?",
	"I see what's happening here. Let me walk you through the solution step by step.",
}

func (CannedResponder) Respond(_ context.Context, _ string) (Reply, error) {
	return Reply{
		Text:   cannedReplies[rand.IntN(len(cannedReplies))],
		Source: "human",
	}, nil
}

// GeminiResponder answers with the Gemini API — used in staging/production.
type GeminiResponder struct {
	apiKey string
	model  string
}

func (r *GeminiResponder) Respond(ctx context.Context, message string) (Reply, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  r.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("create genai client: %w", err)
	}

	prompt := systemPrompt + "\n\nUser: " + message
	resp, err := client.Models.GenerateContent(
		ctx,
		r.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return Reply{}, fmt.Errorf("generate support reply: %w", err)
	}

	return Reply{Text: strings.TrimSpace(resp.Text()), Source: "ai"}, nil
}

// NewResponder picks the Gemini responder when an API key is configured
// outside local, the canned one otherwise.
func NewResponder(env, apiKey, model string) Responder {
	if env == "local" || apiKey == "" {
		return CannedResponder{}
	}
	return &GeminiResponder{apiKey: apiKey, model: model}
}
