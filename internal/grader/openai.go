package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const essayRubric = `You are an essay scoring assistant. You are given a subject and an essay written on it.
Score the essay out of 100 and give the writer short, concrete feedback.
Respond with a JSON object of the form {"score": <number 0-100>, "feedback": "<text>"} and nothing else.`

const questionRubric = `You are an expert test question writer. You are given a test question.
Suggest an improved version that is clearer and a more valid measure of the skill it tests, and explain why.
Respond with a JSON object of the form {"improvedQuestion": "<text>", "reasoning": "<text>"} and nothing else.`

// chatCompleter is the subset of the OpenAI client used here
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIConfig configures an OpenAI-compatible chat-completions endpoint
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIJudge grades essays and suggests question rewrites through a chat-completions API
type OpenAIJudge struct {
	client chatCompleter
	model  string
	logger *slog.Logger
}

func NewOpenAIJudge(cfg OpenAIConfig, logger *slog.Logger) *OpenAIJudge {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return newOpenAIJudge(openai.NewClientWithConfig(clientCfg), cfg.Model, logger)
}

func newOpenAIJudge(client chatCompleter, model string, logger *slog.Logger) *OpenAIJudge {
	return &OpenAIJudge{client: client, model: model, logger: logger}
}

func (j *OpenAIJudge) Grade(ctx context.Context, subject, essay string) (*EssayGrade, error) {
	content, err := j.complete(ctx, essayRubric, fmt.Sprintf("Subject: %s\n\nEssay:\n%s", subject, essay))
	if err != nil {
		return nil, err
	}

	var out struct {
		Score    *float64 `json:"score"`
		Feedback string   `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, wrap("parse grade", err)
	}
	if out.Score == nil {
		return nil, wrap("grade has no score", nil)
	}
	if math.IsNaN(*out.Score) || *out.Score < 0 || *out.Score > 100 {
		return nil, wrap(fmt.Sprintf("score %v out of range", *out.Score), nil)
	}

	j.logger.Debug("Essay graded", "score", *out.Score, "model", j.model)

	return &EssayGrade{
		Score:    int(math.Round(*out.Score)),
		Feedback: strings.TrimSpace(out.Feedback),
	}, nil
}

func (j *OpenAIJudge) Suggest(ctx context.Context, question string) (*QuestionSuggestion, error) {
	content, err := j.complete(ctx, questionRubric, question)
	if err != nil {
		return nil, err
	}

	var out struct {
		ImprovedQuestion string `json:"improvedQuestion"`
		Reasoning        string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, wrap("parse suggestion", err)
	}
	if strings.TrimSpace(out.ImprovedQuestion) == "" {
		return nil, wrap("suggestion is empty", nil)
	}

	return &QuestionSuggestion{
		ImprovedQuestion: strings.TrimSpace(out.ImprovedQuestion),
		Reasoning:        strings.TrimSpace(out.Reasoning),
	}, nil
}

func (j *OpenAIJudge) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: j.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", wrap("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", wrap("chat completion returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func wrap(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrGradingUnavailable, msg)
	}
	return fmt.Errorf("%w: %s: %v", ErrGradingUnavailable, msg, err)
}
