package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ecoquest",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI requests",
	}, []string{"model", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecoquest",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of AI request failures",
	}, []string{"model", "operation"})
)

// OpenAIConfig defines configuration options for the OpenAI client.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIClient implements Analyzer and Coach against the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a new client using the provided configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	tracer := otel.Tracer("github.com/verdantlab/ecoquest-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	client := openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey))

	return &OpenAIClient{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// AnalyzeEvidence sends the photo and description for a correspondence judgement.
func (c *OpenAIClient) AnalyzeEvidence(parent context.Context, input AnalysisInput) (string, error) {
	ctx, span := c.tracer.Start(parent, "openai.analyze_evidence", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: analyzerSystemPrompt(),
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: buildAnalysisPrompt(input),
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: input.ImageURL},
					},
				},
			},
		},
	}

	content, err := c.complete(ctx, "analyze", request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai analyze evidence: %w", err)
	}

	return content, nil
}

// Reply generates a coach chatbot answer for the given persona and history.
func (c *OpenAIClient) Reply(parent context.Context, persona string, history []ChatTurn, message string) (string, error) {
	ctx, span := c.tracer.Start(parent, "openai.coach_reply", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.String("persona", persona),
	))
	defer span.End()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: personaSystemPrompt(persona),
	})

	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages:    messages,
	}

	content, err := c.complete(ctx, "coach", request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai coach reply: %w", err)
	}

	return content, nil
}

func (c *OpenAIClient) complete(ctx context.Context, operation string, request openai.ChatCompletionRequest) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(c.cfg.Model, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		return "", err
	}

	if len(resp.Choices) == 0 {
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		return "", fmt.Errorf("no choices returned from openai")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func analyzerSystemPrompt() string {
	return "You are an assistant tasked with analyzing student submissions for eco-challenges. " +
		"You will be given a photo and the student's description. Analyze how closely the image " +
		"corresponds to the description and reply with a short, factual assessment for the reviewing teacher."
}

func buildAnalysisPrompt(input AnalysisInput) string {
	builder := strings.Builder{}
	builder.WriteString("Challenge: ")
	builder.WriteString(input.ChallengeTitle)
	builder.WriteString("\n\nStudent description:\n")
	builder.WriteString(input.Description)
	builder.WriteString("\n\nAnalysis:")
	return builder.String()
}

func personaSystemPrompt(persona string) string {
	switch persona {
	case "teacher-bot":
		return "You are an AI Teacher Bot helping students with academic questions. " +
			"If a message starts with 'Summarize', 'Check Grammar', 'Translate', 'Write', or 'Rewrite', " +
			"perform that task on the text that follows. Otherwise act as a knowledgeable and patient teacher. " +
			"Provide clear, concise, helpful explanations."
	default:
		return "You are Eco-Coach, a friendly and knowledgeable assistant for students learning about " +
			"environmental topics. Provide clear, concise, encouraging answers focused on the environment, " +
			"sustainability, and conservation. Format responses with markdown: bullet points for lists, " +
			"numbered lists for steps, bold for important terms, and headers for long answers."
	}
}
