package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/urfave/cli/v2"

	"github.com/mexffff/PromptUzman/internal/assistant"
	"github.com/mexffff/PromptUzman/internal/config"
	"github.com/mexffff/PromptUzman/internal/errors"
	"github.com/mexffff/PromptUzman/internal/pipeline"
	"github.com/mexffff/PromptUzman/internal/prompt"
	"github.com/mexffff/PromptUzman/internal/web"
)

// deleteConfirmation is asked before deleting unless --yes is given.
const deleteConfirmation = "Bu promptu silmek istediğinize emin misiniz?"

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

// deps are the services commands run against.
type deps struct {
	orch *pipeline.Orchestrator
	chat assistant.Chatter
	cfg  *config.Config

	// modelErr reports why model calls will fall back (nil when configured)
	modelErr error
}

// newCLIApp creates the CLI application with all commands.
// d may be nil when only help or version output is needed.
func newCLIApp(d *deps) *cli.App {
	app := &cli.App{
		Name:    "promptuzman",
		Usage:   "Turn a short idea into a structured super prompt",
		Version: Version,
		Commands: []*cli.Command{
			generateCmd(d),
			refineCmd(d),
			listCmd(d),
			showCmd(d),
			deleteCmd(d),
			copyCmd(d),
			chatCmd(d),
			serveCmd(d),
			mcpCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// stepLabels are the progress stepper captions per status.
var stepLabels = map[prompt.Status]string{
	prompt.StatusAnalyzing:   "Analiz",
	prompt.StatusResearching: "Araştırma",
	prompt.StatusGenerating:  "Üretim",
	prompt.StatusDone:        "Tamamlandı",
}

// progressPrinter returns an observer that prints each new status once.
func progressPrinter(w io.Writer) func(pipeline.State) {
	var last prompt.Status
	return func(s pipeline.State) {
		if s.Status == last {
			return
		}
		last = s.Status
		if label, ok := stepLabels[s.Status]; ok {
			fmt.Fprintf(w, "• %s\n", label)
		}
	}
}

// printAnalysis writes the analysis panel to w.
func printAnalysis(w io.Writer, a *prompt.Analysis) {
	if a == nil {
		return
	}
	fmt.Fprintf(w, "\nFikir Analizi: %d/100 (%s)\n", a.Score, a.Category)
	for _, s := range a.Suggestions {
		field, advice := prompt.SplitSuggestion(s)
		if field == "" {
			fmt.Fprintf(w, "  - %s\n", advice)
			continue
		}
		fmt.Fprintf(w, "  - %s: %s\n", field, advice)
	}
}

// printSources writes the top research sources to w.
func printSources(w io.Writer, sources []prompt.Source) {
	top := prompt.TopSources(sources, prompt.MaxDisplayedSources)
	if len(top) == 0 {
		return
	}
	fmt.Fprintln(w, "\nKaynaklar:")
	for _, src := range top {
		fmt.Fprintf(w, "  - %s <%s>\n", src.Title, src.URI)
	}
}

// warnModel prints why model calls will yield fallbacks.
func warnModel(c *cli.Context, d *deps) {
	if d.modelErr != nil {
		fmt.Fprintf(c.App.ErrWriter, "warning: %v\n", d.modelErr)
	}
}

// generateCmd creates the generate command.
func generateCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Analyze, research and write a super prompt for an idea (idea from args or stdin)",
		ArgsUsage: "[idea...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Do not print progress to stderr"},
			&cli.BoolFlag{Name: "text", Usage: "Print only the prompt text instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			idea := strings.Join(c.Args().Slice(), " ")
			if idea == "" && stdinHasData(c.App.Reader) {
				data, err := readAll(c.App.Reader)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				idea = data
			}
			if prompt.IsBlank(idea) {
				return outputError(errors.NewInvalidRequest("idea is required (pass it as arguments or via stdin)"))
			}

			warnModel(c, d)
			if !c.Bool("quiet") {
				d.orch.Observe(progressPrinter(c.App.ErrWriter))
			}
			if !d.orch.Run(c.Context, idea) {
				return outputError(errors.NewBusy("generate a prompt"))
			}

			state := d.orch.Snapshot()
			if !c.Bool("quiet") {
				printAnalysis(c.App.ErrWriter, state.Analysis)
				printSources(c.App.ErrWriter, state.Sources)
				fmt.Fprintln(c.App.ErrWriter, "\nOtomatik kaydedildi!")
			}
			if c.Bool("text") {
				return outputText(c, state.SuperPrompt)
			}
			return outputJSON(c, state)
		},
	}
}

// refineCmd creates the refine command.
func refineCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "refine",
		Usage:     "Rewrite a saved prompt with another framework and save it as a new record",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "strategy", Aliases: []string{"s"}, Required: true, Usage: "creative|technical|simplified"},
			&cli.BoolFlag{Name: "text", Usage: "Print only the prompt text instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("record id is required"))
			}
			r, ok := prompt.ParseRefinement(c.String("strategy"))
			if !ok {
				return outputError(errors.NewInvalidRequest("unknown strategy: " + c.String("strategy")))
			}

			if _, err := d.orch.Load(c.Context, c.Args().First()); err != nil {
				return outputError(err)
			}
			warnModel(c, d)
			if !d.orch.Refine(c.Context, r) {
				return outputError(errors.NewBusy("refine a prompt"))
			}

			state := d.orch.Snapshot()
			if c.Bool("text") {
				return outputText(c, state.SuperPrompt)
			}
			return outputJSON(c, state)
		},
	}
}

// listCmd creates the list command.
func listCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List saved prompts, most recent first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum number of records (default all)"},
		},
		Action: func(c *cli.Context) error {
			if c.Int("limit") < 0 {
				return outputError(errors.NewInvalidRequest("limit must not be negative"))
			}
			records, err := d.orch.Library(c.Context)
			if err != nil {
				return outputError(err)
			}
			total := len(records)
			if limit := c.Int("limit"); limit > 0 && limit < total {
				records = records[:limit]
			}
			return outputJSON(c, map[string]any{
				"records": records,
				"count":   len(records),
				"total":   total,
			})
		},
	}
}

// showCmd creates the show command.
func showCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a saved prompt",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "text", Usage: "Print only the prompt text instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("record id is required"))
			}
			record, err := d.orch.Record(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			if c.Bool("text") {
				return outputText(c, record.Text)
			}
			return outputJSON(c, map[string]any{
				"record":       record,
				"placeholders": prompt.Placeholders(record.Text),
			})
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a saved prompt",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("record id is required"))
			}
			id := c.Args().First()
			if _, err := d.orch.Record(c.Context, id); err != nil {
				return outputError(err)
			}

			if !c.Bool("yes") && !confirm(c, deleteConfirmation) {
				return outputJSON(c, map[string]any{"deleted": false, "id": id})
			}
			if err := d.orch.Delete(c.Context, id); err != nil {
				return outputError(err)
			}
			fmt.Fprintln(c.App.ErrWriter, "Prompt silindi.")
			return outputJSON(c, map[string]any{"deleted": true, "id": id})
		},
	}
}

// copyCmd creates the copy command.
func copyCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "Copy a saved prompt to the clipboard",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("record id is required"))
			}
			record, err := d.orch.Record(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			if err := writeClipboard(record.Text); err != nil {
				return outputError(errors.NewInternal(fmt.Errorf("clipboard: %w", err)))
			}
			fmt.Fprintln(c.App.ErrWriter, "Kopyalandı!")
			return outputJSON(c, map[string]any{
				"copied": true,
				"id":     record.ID,
				"chars":  len([]rune(record.Text)),
			})
		},
	}
}

// chatCmd creates the chat command.
func chatCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Talk to the prompt engineering assistant (one message from args, or interactive; /exit quits)",
		ArgsUsage: "[message...]",
		Action: func(c *cli.Context) error {
			warnModel(c, d)
			session := assistant.NewSession(d.chat)
			out := c.App.Writer

			if c.NArg() > 0 {
				reply, ok := session.Send(c.Context, strings.Join(c.Args().Slice(), " "))
				if !ok {
					return outputError(errors.NewInvalidRequest("message is required"))
				}
				fmt.Fprintln(out, reply.Text)
				return nil
			}

			fmt.Fprintln(out, assistant.Greeting)
			scanner := bufio.NewScanner(c.App.Reader)
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				line := scanner.Text()
				if strings.TrimSpace(line) == "/exit" {
					return nil
				}
				if reply, ok := session.Send(c.Context, line); ok {
					fmt.Fprintln(out, reply.Text)
				}
			}
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind to"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			warnModel(c, d)
			srv := web.NewServer(d.orch, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the workflow as MCP tools over stdio",
		Action: func(c *cli.Context) error {
			return runMCP(d)
		},
	}
}

// Helper functions

// outputJSON marshals result to the app writer as JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputText writes raw text followed by a newline.
func outputText(c *cli.Context, text string) error {
	_, err := fmt.Fprintln(c.App.Writer, text)
	return err
}

// outputError formats error for CLI.
func outputError(err error) error {
	pErr := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
}

// confirm asks a yes/no question on the app reader. Anything but yes is no.
func confirm(c *cli.Context, question string) bool {
	fmt.Fprintf(c.App.ErrWriter, "%s [e/H] ", question)
	line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "e", "evet", "y", "yes":
		return true
	}
	return false
}

// stdinHasData returns true if r is a pipe or file rather than a terminal.
// Readers that are not files (tests) count as piped.
func stdinHasData(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readAll reads all content from r.
func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
