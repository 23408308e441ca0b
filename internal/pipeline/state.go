package pipeline

import (
	"slices"

	"github.com/mexffff/PromptUzman/internal/prompt"
)

// Step names reported in State.Fallbacks.
const (
	StepAnalysis = "analysis"
	StepResearch = "research"
	StepGenerate = "generate"
	StepRefine   = "refine"
)

// State is a read-only snapshot of the workspace.
type State struct {
	Idea         string           `json:"idea"`
	Status       prompt.Status    `json:"status"`
	Analysis     *prompt.Analysis `json:"analysis"`
	ResearchText string           `json:"research_text"`
	Sources      []prompt.Source  `json:"sources"`

	// SuperPrompt is empty until a run or load produces one
	SuperPrompt  string   `json:"super_prompt"`
	Placeholders []string `json:"placeholders,omitempty"`

	Processing bool `json:"processing"`
	Refining   bool `json:"refining"`

	// Fallbacks lists the steps of the latest run or refinement that
	// returned a fallback instead of model output
	Fallbacks []string `json:"fallbacks,omitempty"`
}

// Busy reports whether a run or refinement is in progress.
func (s State) Busy() bool {
	return s.Processing || s.Refining
}

// HasPrompt reports whether the workspace holds a live prompt.
func (s State) HasPrompt() bool {
	return s.SuperPrompt != ""
}

// workspace is the mutable state owned by the Orchestrator.
type workspace struct {
	idea         string
	status       prompt.Status
	analysis     *prompt.Analysis
	researchText string
	sources      []prompt.Source
	superPrompt  string
	processing   bool
	refining     bool
	fallbacks    []string
}

func (w *workspace) snapshot() State {
	s := State{
		Idea:         w.idea,
		Status:       w.status,
		ResearchText: w.researchText,
		Sources:      slices.Clone(w.sources),
		SuperPrompt:  w.superPrompt,
		Placeholders: prompt.Placeholders(w.superPrompt),
		Processing:   w.processing,
		Refining:     w.refining,
		Fallbacks:    slices.Clone(w.fallbacks),
	}
	if s.Sources == nil {
		s.Sources = []prompt.Source{}
	}
	if w.analysis != nil {
		a := *w.analysis
		a.Suggestions = slices.Clone(a.Suggestions)
		s.Analysis = &a
	}
	return s
}

// clear resets the live result triple for a new run.
func (w *workspace) clear(idea string) {
	*w = workspace{idea: idea, status: prompt.StatusIdle}
}
