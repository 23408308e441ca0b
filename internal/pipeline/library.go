package pipeline

import (
	"context"

	"github.com/mexffff/PromptUzman/internal/errors"
	"github.com/mexffff/PromptUzman/internal/prompt"
	"github.com/mexffff/PromptUzman/internal/store"
)

// Library returns every saved record, most recent first.
func (o *Orchestrator) Library(ctx context.Context) ([]prompt.Record, error) {
	records, err := o.repo.LoadAll(ctx)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return records, nil
}

// Record returns a single saved record.
func (o *Orchestrator) Record(ctx context.Context, id string) (prompt.Record, error) {
	if id == "" {
		return prompt.Record{}, errors.NewInvalidRequest("id is required")
	}
	r, found, err := store.Find(ctx, o.repo, id)
	if err != nil {
		return prompt.Record{}, errors.NewInternal(err)
	}
	if !found {
		return prompt.Record{}, errors.NewNotFound(id)
	}
	return r, nil
}

// Load puts a saved record back into the workspace without calling the
// model. The live idea becomes the record label and the status done;
// analysis and research from an earlier run are cleared.
func (o *Orchestrator) Load(ctx context.Context, id string) (State, error) {
	if o.Snapshot().Busy() {
		return State{}, errors.NewBusy("load a prompt")
	}
	r, err := o.Record(ctx, id)
	if err != nil {
		return State{}, err
	}

	o.mu.Lock()
	if o.ws.processing || o.ws.refining {
		o.mu.Unlock()
		return State{}, errors.NewBusy("load a prompt")
	}
	o.ws.clear(r.Idea)
	o.ws.superPrompt = r.Text
	o.ws.status = prompt.StatusDone
	snap := o.ws.snapshot()
	o.publishAndUnlock()
	return snap, nil
}

// Delete removes a saved record. Unknown ids are reported as not found.
// The workspace lock is held across the store update so no run or
// refinement can start between the busy check and the delete.
func (o *Orchestrator) Delete(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ws.processing || o.ws.refining {
		return errors.NewBusy("delete a prompt")
	}
	if _, err := o.Record(ctx, id); err != nil {
		return err
	}
	if err := o.repo.Delete(ctx, id); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
