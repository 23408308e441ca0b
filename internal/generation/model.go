package generation

import (
	"context"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Tier selects the model class for a request.
type Tier string

const (
	// TierFast is a low-latency model for structured analysis.
	TierFast Tier = "fast"
	// TierResearch is a web-search capable model.
	TierResearch Tier = "research"
	// TierPro is the strongest model, used for writing prompts and chat.
	TierPro Tier = "pro"
)

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is a single conversation turn.
type Message struct {
	Role Role
	Text string
}

// Schema declares the structured response expected from the model.
type Schema struct {
	Name       string
	Definition jsonschema.Definition
}

// Request is a single request/response exchange with a hosted model.
type Request struct {
	Tier Tier

	// System is the system instruction (may be empty)
	System string

	// Messages is the conversation, oldest first; the last one is the user turn
	Messages []Message

	// Schema, when set, asks for a JSON response matching it
	Schema *Schema

	// WebSearch asks the model to ground its answer and cite sources.
	// It is advisory: backends that cannot search answer from model
	// knowledge, and the citation links are then whatever the model recalls.
	WebSearch bool
}

// Model is a hosted large-language-model endpoint.
type Model interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// userRequest builds a single-turn request.
func userRequest(tier Tier, system, content string) Request {
	return Request{
		Tier:     tier,
		System:   system,
		Messages: []Message{{Role: RoleUser, Text: content}},
	}
}
