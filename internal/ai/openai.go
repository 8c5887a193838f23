package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/wordtrack/pkg/models"
	openai "github.com/sashabaranov/go-openai"
)

const gradingPrompt = `You grade vocabulary answers for a spaced repetition app.
Reply with a single digit from 0 to 5:
5 perfect, 4 correct with small issues, 3 correct but clearly strained,
2 wrong but close, 1 wrong, 0 no answer or nonsense.`

// OpenAI grades answers and writes example sentences with a chat model
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a client. baseURL may be empty for the public API.
func NewOpenAI(apiKey, model, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: openai.NewClientWithConfig(config), model: model}, nil
}

// Grade implements Grader
func (c *OpenAI) Grade(ctx context.Context, word models.Word, answer string) (int, error) {
	if strings.TrimSpace(answer) == "" {
		return 0, nil
	}
	prompt := fmt.Sprintf("Word: %s\nExpected translation: %s\nLearner answer: %s",
		word.Text, word.Translation, answer)

	reply, err := c.complete(ctx, gradingPrompt, prompt, 2)
	if err != nil {
		return 0, err
	}
	for _, r := range reply {
		if r >= '0' && r <= '5' {
			return int(r - '0'), nil
		}
	}
	return 0, fmt.Errorf("unexpected grade %q", reply)
}

// GenerateExample generates an example sentence for the given word
func (c *OpenAI) GenerateExample(ctx context.Context, word models.Word) (string, error) {
	prompt := fmt.Sprintf(
		"Generate a short, practical example sentence that naturally includes the word '%s' (which translates to '%s').",
		word.Text, word.Translation,
	)
	return c.complete(ctx, "You help learners memorise vocabulary with clear example sentences.", prompt, 100)
}

func (c *OpenAI) complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
