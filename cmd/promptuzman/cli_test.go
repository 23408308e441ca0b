package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/mexffff/PromptUzman/internal/config"
	"github.com/mexffff/PromptUzman/internal/db"
	"github.com/mexffff/PromptUzman/internal/generation"
	"github.com/mexffff/PromptUzman/internal/pipeline"
	"github.com/mexffff/PromptUzman/internal/prompt"
	"github.com/mexffff/PromptUzman/internal/store"
)

// setupTestDeps wires the commands to a temporary database and the mock model.
func setupTestDeps(t *testing.T) *deps {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	quiet := log.New(io.Discard, "", 0)
	client := generation.New(generation.MockModel{}, generation.WithLogger(quiet))
	orch := pipeline.New(client, store.New(db.NewKV(database), quiet), pipeline.WithLogger(quiet))
	return &deps{orch: orch, chat: client, cfg: config.DefaultConfig()}
}

// runCLI runs the app with the given args and stdin, returning stdout and stderr.
func runCLI(t *testing.T, d *deps, stdin string, args ...string) (string, string, error) {
	t.Helper()
	app := newCLIApp(d)
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)

	err := app.Run(append([]string{"promptuzman"}, args...))
	return stdout.String(), stderr.String(), err
}

func seedRecord(t *testing.T, d *deps, idea string) prompt.Record {
	t.Helper()
	if !d.orch.Run(context.Background(), idea) {
		t.Fatalf("Run(%q) failed", idea)
	}
	records, err := d.orch.Library(context.Background())
	if err != nil {
		t.Fatalf("Library failed: %v", err)
	}
	return records[0]
}

func TestCLIGenerate(t *testing.T) {
	d := setupTestDeps(t)

	stdout, stderr, err := runCLI(t, d, "", "generate", "Bana", "haftalık", "fitness", "planı", "hazırla")
	if err != nil {
		t.Fatalf("generate command failed: %v", err)
	}

	var state pipeline.State
	if err := json.Unmarshal([]byte(stdout), &state); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, stdout)
	}
	if state.Status != prompt.StatusDone {
		t.Errorf("status = %q, want done", state.Status)
	}
	if state.Idea != "Bana haftalık fitness planı hazırla" {
		t.Errorf("idea = %q", state.Idea)
	}
	for _, want := range []string{"Analiz", "Araştırma", "Üretim", "Fikir Analizi", "Kaynaklar:", "Otomatik kaydedildi!"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}

	records, _ := d.orch.Library(context.Background())
	if len(records) != 1 || records[0].Idea != state.Idea {
		t.Errorf("records = %+v", records)
	}
}

func TestCLIGenerate_StdinText(t *testing.T) {
	d := setupTestDeps(t)

	stdout, stderr, err := runCLI(t, d, "  kahve dükkanı için sosyal medya planı\n", "generate", "--quiet", "--text")
	if err != nil {
		t.Fatalf("generate command failed: %v", err)
	}
	if stderr != "" {
		t.Errorf("quiet run wrote to stderr: %q", stderr)
	}
	if strings.HasPrefix(stdout, "{") || !strings.Contains(stdout, "[TARGET_AUDIENCE]") {
		t.Errorf("expected raw prompt text, got %q", stdout)
	}
	if got := d.orch.Snapshot().Idea; got != "kahve dükkanı için sosyal medya planı" {
		t.Errorf("idea = %q", got)
	}
}

func TestCLIGenerate_BlankIdea(t *testing.T) {
	d := setupTestDeps(t)

	_, _, err := runCLI(t, d, "   ", "generate")
	if err == nil || !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Fatalf("err = %v, want INVALID_REQUEST", err)
	}
	if s := d.orch.Snapshot(); s.Status != prompt.StatusIdle {
		t.Errorf("status = %q, want idle", s.Status)
	}
}

func TestCLIRefine(t *testing.T) {
	d := setupTestDeps(t)
	rec := seedRecord(t, d, "fikir")

	stdout, _, err := runCLI(t, d, "", "refine", "--strategy", "Teknik", rec.ID)
	if err != nil {
		t.Fatalf("refine command failed: %v", err)
	}
	var state pipeline.State
	if err := json.Unmarshal([]byte(stdout), &state); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	records, _ := d.orch.Library(context.Background())
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Idea != "fikir (Teknik)" || records[0].Text != state.SuperPrompt {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1] != rec {
		t.Errorf("original record changed: %+v", records[1])
	}
}

func TestCLIRefine_Errors(t *testing.T) {
	d := setupTestDeps(t)
	rec := seedRecord(t, d, "fikir")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown strategy", []string{"refine", "--strategy", "loud", rec.ID}, "INVALID_REQUEST"},
		{"missing id", []string{"refine", "--strategy", "creative"}, "INVALID_REQUEST"},
		{"unknown id", []string{"refine", "--strategy", "creative", "nope"}, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, d, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestCLIList(t *testing.T) {
	d := setupTestDeps(t)
	for _, idea := range []string{"bir", "iki", "üç"} {
		seedRecord(t, d, idea)
	}

	stdout, _, err := runCLI(t, d, "", "list", "--limit", "2")
	if err != nil {
		t.Fatalf("list command failed: %v", err)
	}
	var output struct {
		Records []prompt.Record `json:"records"`
		Count   int             `json:"count"`
		Total   int             `json:"total"`
	}
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if output.Count != 2 || output.Total != 3 {
		t.Errorf("count=%d total=%d", output.Count, output.Total)
	}
	if output.Records[0].Idea != "üç" || output.Records[1].Idea != "iki" {
		t.Errorf("records out of order: %+v", output.Records)
	}
}

func TestCLIShow(t *testing.T) {
	d := setupTestDeps(t)
	rec := seedRecord(t, d, "fikir")

	stdout, _, err := runCLI(t, d, "", "show", "--text", rec.ID)
	if err != nil {
		t.Fatalf("show command failed: %v", err)
	}
	if stdout != rec.Text+"\n" {
		t.Errorf("stdout = %q, want record text", stdout)
	}

	_, _, err = runCLI(t, d, "", "show", "missing")
	if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestCLIDelete(t *testing.T) {
	tests := []struct {
		name        string
		stdin       string
		args        []string
		wantDeleted bool
	}{
		{"confirmed", "e\n", nil, true},
		{"confirmed english", "yes\n", nil, true},
		{"declined", "h\n", nil, false},
		{"no answer", "", nil, false},
		{"yes flag", "", []string{"--yes"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupTestDeps(t)
			rec := seedRecord(t, d, "silinecek")

			args := append(append([]string{"delete"}, tt.args...), rec.ID)
			stdout, stderr, err := runCLI(t, d, tt.stdin, args...)
			if err != nil {
				t.Fatalf("delete command failed: %v", err)
			}

			var output map[string]any
			if err := json.Unmarshal([]byte(stdout), &output); err != nil {
				t.Fatalf("failed to parse output: %v", err)
			}
			if output["deleted"] != tt.wantDeleted {
				t.Errorf("deleted = %v, want %v", output["deleted"], tt.wantDeleted)
			}
			if tt.args == nil && !strings.Contains(stderr, deleteConfirmation) {
				t.Errorf("confirmation not asked: %q", stderr)
			}

			records, _ := d.orch.Library(context.Background())
			if (len(records) == 0) != tt.wantDeleted {
				t.Errorf("records after delete = %d", len(records))
			}
		})
	}
}

func TestCLIDelete_NotFound(t *testing.T) {
	d := setupTestDeps(t)
	_, _, err := runCLI(t, d, "e\n", "delete", "missing")
	if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestCLICopy(t *testing.T) {
	d := setupTestDeps(t)
	rec := seedRecord(t, d, "fikir")

	var copied string
	orig := writeClipboard
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })

	_, stderr, err := runCLI(t, d, "", "copy", rec.ID)
	if err != nil {
		t.Fatalf("copy command failed: %v", err)
	}
	if copied != rec.Text {
		t.Errorf("clipboard = %q, want %q", copied, rec.Text)
	}
	if !strings.Contains(stderr, "Kopyalandı!") {
		t.Errorf("stderr = %q", stderr)
	}

	writeClipboard = func(string) error { return errors.New("no clipboard utility") }
	_, _, err = runCLI(t, d, "", "copy", rec.ID)
	if err == nil || !strings.Contains(err.Error(), "INTERNAL") {
		t.Errorf("err = %v, want INTERNAL", err)
	}
}

func TestCLIChat(t *testing.T) {
	d := setupTestDeps(t)

	stdout, _, err := runCLI(t, d, "", "chat", "fikrimi", "nasıl", "geliştiririm?")
	if err != nil {
		t.Fatalf("chat command failed: %v", err)
	}
	if !strings.Contains(stdout, "fikrimi nasıl geliştiririm?") {
		t.Errorf("one-shot reply = %q", stdout)
	}

	stdout, _, err = runCLI(t, d, "merhaba\n\n/exit\nunreached\n", "chat")
	if err != nil {
		t.Fatalf("interactive chat failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "Merhaba! Fikirlerinizi") {
		t.Errorf("greeting missing: %q", stdout)
	}
	if !strings.Contains(stdout, "(merhaba)") {
		t.Errorf("reply missing: %q", stdout)
	}
	if strings.Contains(stdout, "unreached") {
		t.Errorf("input after /exit was sent: %q", stdout)
	}
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	printAnalysis(&buf, &prompt.Analysis{
		Score:    65,
		Category: "Pazarlama",
		Suggestions: []string{
			"Daha iyi bir ton için şunu deneyin: Samimi bir dil kullanın.",
			"Serbest öneri",
		},
	})
	out := buf.String()
	for _, want := range []string{"65/100 (Pazarlama)", "- Daha iyi bir ton: Samimi bir dil kullanın.", "- Serbest öneri"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printAnalysis(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("nil analysis printed %q", buf.String())
	}
}

func TestPrintSources_TopThree(t *testing.T) {
	var buf bytes.Buffer
	sources := []prompt.Source{
		{Title: "a", URI: "https://a"}, {Title: "b", URI: "https://b"},
		{Title: "c", URI: "https://c"}, {Title: "d", URI: "https://d"},
	}
	printSources(&buf, sources)
	if strings.Contains(buf.String(), "https://d") {
		t.Errorf("more than three sources printed:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "https://c") {
		t.Errorf("third source missing:\n%s", buf.String())
	}
}

func TestBuildModel(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr bool
	}{
		{"mock", &config.Config{Provider: config.ProviderMock}, false},
		{"openai with key", &config.Config{Provider: config.ProviderOpenAI, APIKey: "sk-test"}, false},
		{"openai without key", &config.Config{Provider: config.ProviderOpenAI}, true},
		{"unknown provider", &config.Config{Provider: "gemini"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := buildModel(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if model == nil {
				t.Fatal("model should never be nil")
			}
			if tt.wantErr {
				if _, callErr := model.Complete(context.Background(), generation.Request{}); callErr == nil {
					t.Error("unavailable model should fail every call")
				}
			}
		})
	}
}

func TestGroundingWarning(t *testing.T) {
	plain, err := generation.NewOpenAIModel(generation.OpenAISettings{APIKey: "k", ResearchModel: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("NewOpenAIModel failed: %v", err)
	}
	if w := groundingWarning(plain); !strings.Contains(w, "gpt-4o-mini") {
		t.Errorf("warning = %q, want it to name the research model", w)
	}

	grounded, err := generation.NewOpenAIModel(generation.OpenAISettings{APIKey: "k"})
	if err != nil {
		t.Fatalf("NewOpenAIModel failed: %v", err)
	}
	if w := groundingWarning(grounded); w != "" {
		t.Errorf("default research model should not warn, got %q", w)
	}
	if w := groundingWarning(generation.MockModel{}); w != "" {
		t.Errorf("mock model should not warn, got %q", w)
	}
}
