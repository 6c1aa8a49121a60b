package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"matruraksha-bot/pkg"

	openai "github.com/sashabaranov/go-openai"
)

const systemPromptFmt = "You are MatruRaksha AI, a caring maternal health assistant. " +
	"You are speaking with %s. %s" +
	"Answer briefly and warmly in plain language. " +
	"Recommend seeing a doctor for anything urgent or uncertain. " +
	"Never give a diagnosis."

// OpenAIClient answers free-text maternal health questions through the OpenAI
// chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient constructs an OpenAI-backed answerer. model falls back to a
// modern small model when empty; it can be overridden via OPENAI_MODEL_CHAT.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Answer produces a short answer to a question, personalized with the active
// profile's details.
func (c *OpenAIClient) Answer(ctx context.Context, profile *pkg.Profile, question string) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(profile)},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func systemPrompt(profile *pkg.Profile) string {
	name := "an expecting mother"
	var details []string
	if profile != nil {
		if profile.Name != "" {
			name = profile.Name
		}
		if profile.DueDate != nil && *profile.DueDate != "" {
			details = append(details, "Her due date is "+*profile.DueDate+".")
		}
		if profile.Age != nil {
			details = append(details, fmt.Sprintf("She is %d years old.", *profile.Age))
		}
		if profile.Location != nil && *profile.Location != "" {
			details = append(details, "She lives in "+*profile.Location+".")
		}
	}
	context := ""
	if len(details) > 0 {
		context = strings.Join(details, " ") + " "
	}
	return fmt.Sprintf(systemPromptFmt, name, context)
}
