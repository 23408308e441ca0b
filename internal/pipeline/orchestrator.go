// Package pipeline runs the analyze → research → generate workflow and the
// refinement of its result, and owns the live workspace state.
//
// All intents are guarded by a single in-flight flag: while a run or a
// refinement is active every other run, refinement, load or delete is
// rejected. Model calls never overlap.
package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mexffff/PromptUzman/internal/generation"
	"github.com/mexffff/PromptUzman/internal/prompt"
	"github.com/mexffff/PromptUzman/internal/store"
)

// Generator is the set of model operations the pipeline needs.
// *generation.Client implements it.
type Generator interface {
	AnalyzeIdea(ctx context.Context, idea string) generation.Result[prompt.Analysis]
	ResearchTopic(ctx context.Context, idea string) generation.Result[generation.Research]
	GenerateSuperPrompt(ctx context.Context, idea, research string) generation.Result[string]
	RefinePrompt(ctx context.Context, idea, previous string, r prompt.Refinement) generation.Result[string]
}

// Orchestrator drives the workflow for one workspace.
type Orchestrator struct {
	gen    Generator
	repo   store.Repository
	logger *log.Logger
	now    func() time.Time

	mu        sync.Mutex
	ws        workspace
	observers []func(State)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for persistence failures.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an idle Orchestrator.
func New(gen Generator, repo store.Repository, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:    gen,
		repo:   repo,
		logger: log.Default(),
		now:    time.Now,
		ws:     workspace{status: prompt.StatusIdle},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Observe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine driving the workflow and must not call back into
// intents that block on it.
func (o *Orchestrator) Observe(fn func(State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// Snapshot returns a copy of the current workspace.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ws.snapshot()
}

// Run executes the full workflow for idea. It returns false without
// touching any state when the idea is blank or another operation is in
// progress. Otherwise every step runs, fallbacks included, and the run
// ends in StatusDone with one record prepended to the library.
func (o *Orchestrator) Run(ctx context.Context, idea string) bool {
	o.mu.Lock()
	if prompt.IsBlank(idea) || o.ws.processing || o.ws.refining {
		o.mu.Unlock()
		return false
	}
	o.ws.clear(idea)
	o.ws.processing = true
	o.mu.Unlock()

	o.update(func(w *workspace) {
		w.status = prompt.StatusAnalyzing
	})

	analysis := o.gen.AnalyzeIdea(ctx, idea)
	o.update(func(w *workspace) {
		a := analysis.Value
		w.analysis = &a
		w.noteFallback(StepAnalysis, analysis.Degraded())
		w.status = prompt.StatusResearching
	})

	research := o.gen.ResearchTopic(ctx, idea)
	o.update(func(w *workspace) {
		w.researchText = research.Value.Text
		w.sources = research.Value.Sources
		w.noteFallback(StepResearch, research.Degraded())
		w.status = prompt.StatusGenerating
	})

	generated := o.gen.GenerateSuperPrompt(ctx, idea, research.Value.Text)
	o.mu.Lock()
	o.ws.superPrompt = generated.Value
	o.ws.noteFallback(StepGenerate, generated.Degraded())
	o.mu.Unlock()

	o.save(ctx, prompt.NewRecord(prompt.Label(idea), generated.Value, o.now()))

	o.update(func(w *workspace) {
		w.status = prompt.StatusDone
		w.processing = false
	})
	return true
}

// Refine rewrites the live prompt with r and saves the result as a new
// record. It returns false when there is no live idea or prompt, r is not
// a known refinement, or another operation is in progress.
func (o *Orchestrator) Refine(ctx context.Context, r prompt.Refinement) bool {
	o.mu.Lock()
	if !r.Valid() || prompt.IsBlank(o.ws.idea) || o.ws.superPrompt == "" || o.ws.processing || o.ws.refining {
		o.mu.Unlock()
		return false
	}
	// Claim the slot under the same lock as the guard.
	o.ws.refining = true
	o.ws.fallbacks = nil
	idea, previous := o.ws.idea, o.ws.superPrompt
	o.mu.Unlock()

	o.notify()

	refined := o.gen.RefinePrompt(ctx, idea, previous, r)
	o.mu.Lock()
	o.ws.superPrompt = refined.Value
	o.ws.noteFallback(StepRefine, refined.Degraded())
	o.mu.Unlock()

	o.save(ctx, prompt.NewRecord(prompt.RefinedLabel(idea, r), refined.Value, o.now()))

	o.update(func(w *workspace) {
		w.refining = false
	})
	return true
}

// update applies fn under the lock and notifies observers with the result.
func (o *Orchestrator) update(fn func(w *workspace)) {
	o.mu.Lock()
	fn(&o.ws)
	o.publishAndUnlock()
}

// notify sends the current snapshot to every observer.
func (o *Orchestrator) notify() {
	o.mu.Lock()
	o.publishAndUnlock()
}

// publishAndUnlock snapshots the workspace, releases o.mu, then calls the
// observers outside the lock. o.mu must be held.
func (o *Orchestrator) publishAndUnlock() {
	snap := o.ws.snapshot()
	observers := append([]func(State){}, o.observers...)
	o.mu.Unlock()

	for _, observe := range observers {
		observe(snap)
	}
}

// save prepends r to the library. Failures are logged; the workflow goes on.
// Saving ignores cancellation so a finished result is never dropped.
func (o *Orchestrator) save(ctx context.Context, r prompt.Record) {
	if err := o.repo.Prepend(context.WithoutCancel(ctx), r); err != nil {
		o.logger.Printf("Failed to save prompt %s: %v", r.ID, err)
	}
}

func (w *workspace) noteFallback(step string, degraded bool) {
	if degraded {
		w.fallbacks = append(w.fallbacks, step)
	}
}
