package web

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/mexffff/PromptUzman/internal/errors"
	"github.com/mexffff/PromptUzman/internal/pipeline"
	"github.com/mexffff/PromptUzman/internal/prompt"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Handlers contains HTTP route handlers for the JSON API.
type Handlers struct {
	orch    *pipeline.Orchestrator
	version string
}

// GenerateBody is the body of POST /api/generate.
type GenerateBody struct {
	Idea string `json:"idea"`
}

// RefineBody is the body of POST /api/refine.
type RefineBody struct {
	Strategy string `json:"strategy"`
	ID       string `json:"id,omitempty"`
}

// HandleVersion handles GET /api/version.
func (h *Handlers) HandleVersion(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

// HandleState handles GET /api/state: the current workspace snapshot.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.orch.Snapshot())
}

// HandleGenerate handles POST /api/generate: run the full pipeline.
// The response is written once the run is done.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var body GenerateBody
	if err := decodeBody(w, r, &body); err != nil {
		renderError(w, err)
		return
	}
	if prompt.IsBlank(body.Idea) {
		renderError(w, errors.NewInvalidRequest("idea is required"))
		return
	}
	if !h.orch.Run(r.Context(), body.Idea) {
		renderError(w, errors.NewBusy("generate a prompt"))
		return
	}
	renderJSON(w, http.StatusOK, h.orch.Snapshot())
}

// HandleRefine handles POST /api/refine: rewrite the live or a saved prompt.
func (h *Handlers) HandleRefine(w http.ResponseWriter, r *http.Request) {
	var body RefineBody
	if err := decodeBody(w, r, &body); err != nil {
		renderError(w, err)
		return
	}
	refinement, ok := prompt.ParseRefinement(body.Strategy)
	if !ok {
		renderError(w, errors.NewInvalidRequest("unknown strategy: "+body.Strategy))
		return
	}
	if body.ID != "" {
		if _, err := h.orch.Load(r.Context(), body.ID); err != nil {
			renderError(w, err)
			return
		}
	}
	if !h.orch.Refine(r.Context(), refinement) {
		if h.orch.Snapshot().Busy() {
			renderError(w, errors.NewBusy("refine a prompt"))
			return
		}
		renderError(w, errors.NewInvalidRequest("no prompt to refine; generate or load one first"))
		return
	}
	renderJSON(w, http.StatusOK, h.orch.Snapshot())
}

// HandleList handles GET /api/prompts: saved prompts, most recent first.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.orch.Library(r.Context())
	if err != nil {
		renderError(w, err)
		return
	}
	total := len(records)
	if limit := parseIntParam(r, "limit", 0); limit > 0 && limit < total {
		records = records[:limit]
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
		"total":   total,
	})
}

// HandleGet handles GET /api/prompts/{id}.
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.orch.Record(r.Context(), r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"record":       record,
		"placeholders": prompt.Placeholders(record.Text),
	})
}

// HandleDelete handles DELETE /api/prompts/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.orch.Delete(r.Context(), id); err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"deleted": true,
		"id":      id,
	})
}

// HandleLoad handles POST /api/prompts/{id}/load: restore a saved prompt
// into the workspace.
func (h *Handlers) HandleLoad(w http.ResponseWriter, r *http.Request) {
	state, err := h.orch.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, state)
}

// decodeBody reads a bounded JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewInvalidRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes a structured JSON error. Internal errors hide their cause.
func renderError(w http.ResponseWriter, err error) {
	var pErr *errors.PromptError
	if !stderrors.As(err, &pErr) {
		pErr = errors.NewInternal(err)
	}

	message := pErr.Message
	if pErr.Code == errors.ErrInternal {
		message = "an internal error occurred"
	}
	errorObj := map[string]any{
		"code":    string(pErr.Code),
		"message": message,
		"status":  pErr.Status,
	}
	if pErr.Code != errors.ErrInternal && pErr.Details != nil {
		errorObj["details"] = pErr.Details
	}
	renderJSON(w, pErr.Status, map[string]any{"error": errorObj})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
