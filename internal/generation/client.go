// Package generation wraps the hosted model behind the four prompt
// pipeline operations and the assistant chat.
//
// Every operation is a single request/response call with no retries and no
// caching. Failures never surface as Go errors: each operation substitutes
// a fixed fallback value and reports it through Result.Err.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mexffff/PromptUzman/internal/prompt"
)

// DefaultTimeout bounds every model call.
const DefaultTimeout = 90 * time.Second

// Research is the grounded research summary of an idea.
type Research struct {
	Text    string          `json:"text"`
	Sources []prompt.Source `json:"sources"`
}

// Client runs pipeline operations against a Model.
type Client struct {
	model   Model
	logger  *log.Logger
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout sets the per-call timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a Client for model.
func New(model Model, opts ...Option) *Client {
	c := &Client{
		model:   model,
		logger:  log.Default(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// complete performs one call under the per-call timeout.
// Blank responses are reported as ErrEmptyResponse.
func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	out, err := c.model.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// AnalyzeIdea scores the clarity of an idea and suggests improvements.
func (c *Client) AnalyzeIdea(ctx context.Context, idea string) Result[prompt.Analysis] {
	req := userRequest(TierFast, "", analysisPrompt(idea))
	req.Schema = analysisSchema()

	out, err := c.complete(ctx, req)
	if err != nil {
		c.logger.Printf("Smart analysis failed: %v", err)
		return fallback(FallbackAnalysis(), err)
	}

	var a prompt.Analysis
	if err := json.Unmarshal([]byte(ExtractPrompt(out)), &a); err != nil {
		err = fmt.Errorf("decode analysis: %w", err)
		c.logger.Printf("Smart analysis failed: %v", err)
		return fallback(FallbackAnalysis(), err)
	}
	a.Score = prompt.ClampScore(a.Score)
	if strings.TrimSpace(a.Category) == "" {
		a.Category = FallbackCategory
	}
	if a.Suggestions == nil {
		a.Suggestions = []string{}
	}
	return ok(a)
}

// ResearchTopic gathers domain terminology, standards and KPIs for an idea.
// A blank summary is a valid result, not a failure.
func (c *Client) ResearchTopic(ctx context.Context, idea string) Result[Research] {
	req := userRequest(TierResearch, citationInstruction, researchPrompt(idea))
	req.WebSearch = true

	out, err := c.complete(ctx, req)
	if errors.Is(err, ErrEmptyResponse) {
		return ok(Research{Text: "", Sources: []prompt.Source{}})
	}
	if err != nil {
		c.logger.Printf("Research failed: %v", err)
		return fallback(Research{Text: "", Sources: []prompt.Source{}}, err)
	}
	return ok(Research{
		Text:    strings.TrimSpace(out),
		Sources: ExtractSources(out),
	})
}

// GenerateSuperPrompt writes a CO-STAR prompt for idea using the research summary.
func (c *Client) GenerateSuperPrompt(ctx context.Context, idea, research string) Result[string] {
	out, err := c.complete(ctx, userRequest(TierPro, GenerateInstruction, generatePrompt(idea, research)))
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return fallback(GenerateEmpty, err)
	case err != nil:
		c.logger.Printf("Generation failed: %v", err)
		return fallback(GenerateFailed, err)
	}
	return c.promptText(out, GenerateEmpty)
}

// RefinePrompt rewrites a prompt from scratch under the framework the
// refinement calls for.
func (c *Client) RefinePrompt(ctx context.Context, idea, previous string, r prompt.Refinement) Result[string] {
	if !r.Valid() {
		err := fmt.Errorf("unknown refinement %s", r)
		c.logger.Printf("Refinement failed: %v", err)
		return fallback(RefineFailed, err)
	}
	out, err := c.complete(ctx, userRequest(TierPro, refineInstruction(r), refinePrompt(idea, previous, r)))
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return fallback(RefineEmpty, err)
	case err != nil:
		c.logger.Printf("Refinement failed: %v", err)
		return fallback(RefineFailed, err)
	}
	// The rewrite is asked for as plain text, so it is kept verbatim.
	return ok(strings.TrimSpace(out))
}

// Chat sends message after history to the assistant and returns its reply.
func (c *Client) Chat(ctx context.Context, history []Message, message string) Result[string] {
	msgs := make([]Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, Message{Role: RoleUser, Text: message})

	out, err := c.complete(ctx, Request{Tier: TierPro, System: ChatInstruction, Messages: msgs})
	if err != nil {
		c.logger.Printf("Chat failed: %v", err)
		return fallback(ChatFailed, err)
	}
	return ok(strings.TrimSpace(out))
}

// promptText unwraps the prompt when the whole response is a fenced block.
func (c *Client) promptText(out, empty string) Result[string] {
	text := ExtractPrompt(out)
	if text == "" {
		return fallback(empty, ErrEmptyResponse)
	}
	return ok(text)
}
