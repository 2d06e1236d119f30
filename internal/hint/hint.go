// internal/hint/hint.go
//
// AI hint collaborator: given the player's current article and the target,
// returns a one-sentence free-text nudge. Backed by OpenAI chat
// completions; a Disabled implementation stands in when no API key is
// configured so the rest of the game keeps working (hint requests fail
// softly, per the error design).

package hint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = openai.GPT4oMini

const systemPrompt = "You are a helper in a wiki navigation race: the player must reach a target " +
	"Wikipedia article from their current one using only article links. Give a single short hint " +
	"suggesting an intermediate topic or category to steer toward. Never name the chain of exact " +
	"links and never reveal more than one step."

// Provider generates a hint for the current/target article pair.
type Provider interface {
	Hint(ctx context.Context, current, target string) (string, error)
}

// OpenAI is the chat-completion backed Provider.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds a Provider for the given API key. An empty model falls
// back to a small default.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = defaultModel
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}
}

// Hint asks the model for a nudge from current toward target.
func (o *OpenAI) Hint(ctx context.Context, current, target string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(
				"The player is on %q and needs to reach %q. One hint, one sentence.", current, target)},
		},
		Temperature: 0.7,
		MaxTokens:   120,
	})
	if err != nil {
		return "", fmt.Errorf("hint completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("hint completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Disabled is the Provider used when no API key is configured.
type Disabled struct{}

// Hint always fails; the session surfaces it as a recoverable message.
func (Disabled) Hint(context.Context, string, string) (string, error) {
	return "", errors.New("hint service not configured")
}
