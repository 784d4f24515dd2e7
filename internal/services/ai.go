package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/learnflow-api/internal/constants"
)

type AIService struct {
	client *openai.Client
	model  string
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// NewAIServiceWithConfig is used to point the client at a different endpoint.
func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
	}
}

type milestoneSuggestions struct {
	Milestones []string `json:"milestones"`
}

// SuggestMilestones breaks a learning goal into ordered milestone titles using OpenAI GPT
func (s *AIService) SuggestMilestones(ctx context.Context, title, description string) ([]string, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You are a learning coach. Break the following learning goal into concrete, ordered milestones.

Goal: %s
Details: %s

Return JSON of the form:
{"milestones": ["first milestone", "second milestone"]}

Rules:
- Between 3 and %d milestones
- Each milestone is a short imperative phrase
- Return JSON only, with no explanation`, title, description, constants.MaxAISuggestedMilestones)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseMilestoneSuggestions(resp.Choices[0].Message.Content)
}

func parseMilestoneSuggestions(content string) ([]string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var parsed milestoneSuggestions
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	out := make([]string, 0, len(parsed.Milestones))
	for _, m := range parsed.Milestones {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
		if len(out) == constants.MaxAISuggestedMilestones {
			break
		}
	}
	return out, nil
}
