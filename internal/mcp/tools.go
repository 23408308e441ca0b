package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mexffff/PromptUzman/internal/prompt"
)

func refinementNames() []string {
	names := make([]string, 0, 3)
	for _, r := range prompt.Refinements() {
		names = append(names, r.Name())
	}
	return names
}

var generateToolDef = mcp.NewTool("prompt_generate",
	mcp.WithDescription("Turn a short idea into a structured super prompt. Runs analysis, web research and CO-STAR generation in order, saves the result to the library and returns the workspace state."),
	mcp.WithString("idea",
		mcp.Required(),
		mcp.Description("The idea to turn into a prompt, in any language"),
	),
)

var refineToolDef = mcp.NewTool("prompt_refine",
	mcp.WithDescription("Rewrite the current prompt from scratch with a different framework and save it as a new library record. Pass id to refine a saved prompt instead of the current one."),
	mcp.WithString("strategy",
		mcp.Required(),
		mcp.Description("creative: unconventional rewrite; technical: step-by-step detail; simplified: concise core value"),
		mcp.Enum(refinementNames()...),
	),
	mcp.WithString("id",
		mcp.Description("Saved prompt to load before refining (optional)"),
	),
)

var stateToolDef = mcp.NewTool("prompt_state",
	mcp.WithDescription("Return the current workspace: idea, status, analysis, research sources and the live prompt."),
)

var listToolDef = mcp.NewTool("prompt_list",
	mcp.WithDescription("List saved prompts, most recent first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of records to return (default all)"),
	),
)

var loadToolDef = mcp.NewTool("prompt_load",
	mcp.WithDescription("Load a saved prompt into the workspace without calling the model."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Record ID"),
	),
)

var deleteToolDef = mcp.NewTool("prompt_delete",
	mcp.WithDescription("Delete a saved prompt from the library."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Record ID"),
	),
)
