package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mexffff/PromptUzman/internal/errors"
	"github.com/mexffff/PromptUzman/internal/pipeline"
	"github.com/mexffff/PromptUzman/internal/prompt"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	orch *pipeline.Orchestrator
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(orch *pipeline.Orchestrator) *Handlers {
	return &Handlers{orch: orch}
}

// GenerateRequest represents the arguments for prompt_generate.
type GenerateRequest struct {
	Idea string `json:"idea"`
}

// RefineRequest represents the arguments for prompt_refine.
type RefineRequest struct {
	Strategy string `json:"strategy"`
	ID       string `json:"id,omitempty"`
}

// ListRequest represents the arguments for prompt_list.
type ListRequest struct {
	Limit int `json:"limit,omitempty"`
}

// IDRequest represents the arguments for tools addressing one record.
type IDRequest struct {
	ID string `json:"id"`
}

// ListOutput is the result of prompt_list.
type ListOutput struct {
	Records []prompt.Record `json:"records"`
	Count   int             `json:"count"`
	Total   int             `json:"total"`
}

// DeleteOutput is the result of prompt_delete.
type DeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// HandleGenerate handles the prompt_generate tool.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if prompt.IsBlank(input.Idea) {
		return errorResult(errors.NewInvalidRequest("idea is required")), nil
	}
	if !h.orch.Run(ctx, input.Idea) {
		return errorResult(errors.NewBusy("generate a prompt")), nil
	}
	return successResult(h.orch.Snapshot())
}

// HandleRefine handles the prompt_refine tool.
func (h *Handlers) HandleRefine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RefineRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	r, ok := prompt.ParseRefinement(input.Strategy)
	if !ok {
		return errorResult(errors.NewInvalidRequest("unknown strategy: " + input.Strategy)), nil
	}
	if input.ID != "" {
		if _, err := h.orch.Load(ctx, input.ID); err != nil {
			return errorResult(err), nil
		}
	}
	if !h.orch.Refine(ctx, r) {
		if h.orch.Snapshot().Busy() {
			return errorResult(errors.NewBusy("refine a prompt")), nil
		}
		return errorResult(errors.NewInvalidRequest("no prompt to refine; generate or load one first")), nil
	}
	return successResult(h.orch.Snapshot())
}

// HandleState handles the prompt_state tool.
func (h *Handlers) HandleState(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.orch.Snapshot())
}

// HandleList handles the prompt_list tool.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if input.Limit < 0 {
		return errorResult(errors.NewInvalidRequest("limit must not be negative")), nil
	}

	records, err := h.orch.Library(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	total := len(records)
	if input.Limit > 0 && input.Limit < total {
		records = records[:input.Limit]
	}
	return successResult(ListOutput{Records: records, Count: len(records), Total: total})
}

// HandleLoad handles the prompt_load tool.
func (h *Handlers) HandleLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	state, err := h.orch.Load(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(state)
}

// HandleDelete handles the prompt_delete tool.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if err := h.orch.Delete(ctx, input.ID); err != nil {
		return errorResult(err), nil
	}
	return successResult(DeleteOutput{ID: input.ID, Deleted: true})
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var pErr *errors.PromptError
	if stderrors.As(err, &pErr) {
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": pErr.Message,
			"status":  pErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
