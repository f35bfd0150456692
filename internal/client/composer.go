package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const composeSystemPrompt = `You write first-touch SMS messages from a healthcare staffing recruiter to a clinician.
Keep it under 300 characters, friendly and specific, no emojis, no links, and end with a question.
Reply with the message text only.`

// Composer drafts outreach messages with an OpenAI-compatible chat completion API.
type Composer struct {
	client     *openai.Client
	model      string
	configured bool
}

func NewComposer(baseURL, apiKey, model string) *Composer {
	if model == "" {
		model = openai.GPT4oMini
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Composer{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		configured: apiKey != "",
	}
}

func (c *Composer) Configured() bool {
	return c.configured
}

type ComposeBrief struct {
	CandidateName string
	Specialty     string
	Role          string
	Location      string
	Notes         string
}

func (b ComposeBrief) prompt() string {
	var sb strings.Builder
	field := func(label, v string) {
		if v = strings.TrimSpace(v); v != "" {
			fmt.Fprintf(&sb, "%s: %s\n", label, v)
		}
	}
	field("Candidate", b.CandidateName)
	field("Specialty", b.Specialty)
	field("Role", b.Role)
	field("Location", b.Location)
	field("Notes", b.Notes)
	return sb.String()
}

func (c *Composer) ComposeSMS(ctx context.Context, brief ComposeBrief) (string, error) {
	prompt := brief.prompt()
	if prompt == "" {
		return "", errors.New("empty brief")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: composeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
