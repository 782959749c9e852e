package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/careermate/careermate/internal/scoring"
)

const assistantSystemPrompt = "You are a helpful assistant that only responds to " +
	"career guidance, resume, and mock interview queries."

// Assistant wraps an OpenAI client for the two optional text surfaces:
// the career chat endpoint and interview feedback enrichment.
type Assistant struct {
	client *openai.Client
	model  string
}

func NewAssistant(apiKey, model string) (*Assistant, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	return &Assistant{client: openai.NewClient(apiKey), model: model}, nil
}

// Chat answers a single free-form career question.
func (a *Assistant) Chat(ctx context.Context, message string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: assistantSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Enrich rewrites the free-text feedback on an interview report. Scores are
// left untouched.
func (a *Assistant) Enrich(ctx context.Context, r scoring.Report, answers []string) (scoring.Report, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "A candidate finished a mock interview with overall score %d/100, ", r.OverallScore)
	fmt.Fprintf(&b, "technical %d, communication %d. Their answers:\n", r.TechnicalScore, r.CommunicationScore)
	for i, ans := range answers {
		if strings.TrimSpace(ans) == "" {
			continue
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, ans)
	}
	b.WriteString("Write two or three sentences of constructive feedback for the candidate.")

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: assistantSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
	})
	if err != nil {
		return r, fmt.Errorf("feedback completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return r, errors.New("empty completion")
	}
	r.Feedback = strings.TrimSpace(resp.Choices[0].Message.Content)
	return r, nil
}
