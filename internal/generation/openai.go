package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultResearchModel answers the research tier. Only search-preview models
// browse the web on the chat completions API.
const DefaultResearchModel = "gpt-4o-mini-search-preview"

// SearchCapable reports whether an OpenAI model name browses the web when
// asked, which is what grounds the research step.
func SearchCapable(model string) bool {
	return strings.Contains(strings.ToLower(model), "search")
}

// OpenAISettings configures an OpenAIModel.
type OpenAISettings struct {
	APIKey  string
	BaseURL string

	// Models per tier
	FastModel     string
	ResearchModel string
	ProModel      string

	// HTTPClient overrides the transport (optional)
	HTTPClient *http.Client
}

// OpenAIModel is a Model backed by an OpenAI-compatible chat completions API.
type OpenAIModel struct {
	client *openai.Client
	models map[Tier]string
}

// NewOpenAIModel creates an OpenAIModel. An API key is required.
func NewOpenAIModel(s OpenAISettings) (*OpenAIModel, error) {
	if s.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	cfg := openai.DefaultConfig(s.APIKey)
	if s.BaseURL != "" {
		cfg.BaseURL = s.BaseURL
	}
	if s.HTTPClient != nil {
		cfg.HTTPClient = s.HTTPClient
	}

	return &OpenAIModel{
		client: openai.NewClientWithConfig(cfg),
		models: map[Tier]string{
			TierFast:     orDefault(s.FastModel, openai.GPT4oMini),
			TierResearch: orDefault(s.ResearchModel, DefaultResearchModel),
			TierPro:      orDefault(s.ProModel, openai.GPT4o),
		},
	}, nil
}

// Model returns the model name used for a tier.
func (m *OpenAIModel) Model(t Tier) string {
	if name, ok := m.models[t]; ok {
		return name
	}
	return m.models[TierPro]
}

// ResearchGrounded reports whether research requests reach a model that
// can search. When false, WebSearch requests are answered ungrounded.
func (m *OpenAIModel) ResearchGrounded() bool {
	return SearchCapable(m.Model(TierResearch))
}

// Complete implements Model.
func (m *OpenAIModel) Complete(ctx context.Context, req Request) (string, error) {
	creq := openai.ChatCompletionRequest{
		Model:    m.Model(req.Tier),
		Messages: chatMessages(req),
	}
	if req.Schema != nil {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: &req.Schema.Definition,
				Strict: true,
			},
		}
	}

	resp, err := m.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func chatMessages(req Request) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: msg.Text})
	}
	return msgs
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
