package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/mexffff/PromptUzman/internal/config"
	"github.com/mexffff/PromptUzman/internal/db"
	"github.com/mexffff/PromptUzman/internal/generation"
	"github.com/mexffff/PromptUzman/internal/mcp"
	"github.com/mexffff/PromptUzman/internal/pipeline"
	"github.com/mexffff/PromptUzman/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"generate": true, "refine": true, "list": true, "show": true,
	"delete": true, "copy": true, "chat": true, "serve": true, "mcp": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return isHelpOrVersion()
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___                       _   _   _
  | _ \_ _ ___ _ __  _ __ | |_| | | |___ _ __  __ _ _ _
  |  _/ '_/ _ \ '  \| '_ \|  _| |_| |_ / '  \/ _' | ' \
  |_| |_| \___/_|_|_| .__/ \__|\___//__|_|_|_\__,_|_||_|
                    |_|

  Fikirden süper prompta

  Usage: promptuzman <command> [options]
         promptuzman --help

  MCP server mode requires piped input.`)
}

// unavailableModel fails every call; each operation then yields its fallback.
type unavailableModel struct{ err error }

func (m unavailableModel) Complete(context.Context, generation.Request) (string, error) {
	return "", m.err
}

// buildModel selects the model backend from config. A missing key is not
// fatal: library commands work without one.
func buildModel(cfg *config.Config) (generation.Model, error) {
	switch cfg.Provider {
	case config.ProviderMock:
		return generation.MockModel{}, nil
	case config.ProviderOpenAI, "":
		m, err := generation.NewOpenAIModel(generation.OpenAISettings{
			APIKey:        cfg.APIKey,
			BaseURL:       cfg.BaseURL,
			FastModel:     cfg.FastModel,
			ResearchModel: cfg.ResearchModel,
			ProModel:      cfg.ProModel,
		})
		if err != nil {
			err = fmt.Errorf("%w (set OPENAI_API_KEY or use provider %q)", err, config.ProviderMock)
			return unavailableModel{err: err}, err
		}
		return m, nil
	default:
		err := fmt.Errorf("unknown provider %q", cfg.Provider)
		return unavailableModel{err: err}, err
	}
}

// groundingWarning explains why research will not be web-grounded, or
// returns "" when it will be (or the backend is not OpenAI).
func groundingWarning(m generation.Model) string {
	om, ok := m.(*generation.OpenAIModel)
	if !ok || om.ResearchGrounded() {
		return ""
	}
	return fmt.Sprintf("research model %q cannot search the web; sources will not be grounded (try %q)",
		om.Model(generation.TierResearch), generation.DefaultResearchModel)
}

// loadDotEnv loads .env from the working directory if present.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// .env first so its keys feed the env overrides below
	loadDotEnv()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, config.DirName)

	// Open the saved-prompt database (creates ~/.promptuzman on first run)
	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	// Global config, then repo config, then environment
	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg = config.ApplyEnv(cfg, os.Getenv)
	db.ConfigurePool(database, cfg)

	// Wire model, client and orchestrator
	model, modelErr := buildModel(cfg)
	if w := groundingWarning(model); w != "" {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	client := generation.New(model, generation.WithTimeout(cfg.CallTimeout()))
	orch := pipeline.New(client, store.New(db.NewKV(database), nil))

	d := &deps{orch: orch, chat: client, cfg: cfg, modelErr: modelErr}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(d)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'promptuzman --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := runMCP(d); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runMCP serves the workflow over stdio after validating disabled tools.
func runMCP(d *deps) error {
	if unknown := mcp.ValidateDisabledTools(d.cfg.DisabledTools); len(unknown) > 0 {
		fmt.Fprintf(os.Stderr, "warning: unknown tools in disabled_tools: %v\n", unknown)
	}
	if d.modelErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", d.modelErr)
	}
	return mcp.Run(d.orch, d.cfg, Version)
}
