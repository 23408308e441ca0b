package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// DirName is the per-user and per-project configuration directory name.
const DirName = ".promptuzman"

// Config holds application configuration.
type Config struct {
	// Provider selects the model backend: "openai" or "mock" (offline canned output).
	Provider string `json:"provider,omitempty"`

	// APIKey authenticates against the model provider.
	// Usually supplied through OPENAI_API_KEY rather than the file.
	APIKey string `json:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways).
	BaseURL string `json:"base_url,omitempty"`

	// FastModel serves the idea analysis step.
	FastModel string `json:"fast_model,omitempty"`

	// ResearchModel serves the grounded research step and must support web search.
	ResearchModel string `json:"research_model,omitempty"`

	// ProModel serves super prompt generation, refinement and chat.
	ProModel string `json:"pro_model,omitempty"`

	// CallTimeoutSeconds bounds each model call. An expired call yields the
	// operation's fallback value.
	CallTimeoutSeconds int `json:"call_timeout_seconds,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:           ProviderOpenAI,
		FastModel:          "gpt-4o-mini",
		ResearchModel:      "gpt-4o-mini-search-preview",
		ProModel:           "gpt-4o",
		CallTimeoutSeconds: 90,
	}
}

// CallTimeout returns the per-call model timeout.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.promptuzman.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.promptuzman) and project
// (.promptuzman) directories. Project config is found by walking upward from
// startDir. Project config takes precedence for scalar values; arrays are merged.
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	// Walk upward from startDir to find project config
	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then project
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .promptuzman/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, not found
			return ""
		}
		dir = parent
	}
}

// ApplyEnv overlays environment variables onto cfg:
// PROMPTUZMAN_PROVIDER, OPENAI_API_KEY, OPENAI_BASE_URL.
// getenv is os.Getenv outside of tests.
func ApplyEnv(cfg *Config, getenv func(string) string) *Config {
	// Unset variables are empty strings, which Merge ignores
	return Merge(cfg, &Config{
		Provider: strings.TrimSpace(getenv("PROMPTUZMAN_PROVIDER")),
		APIKey:   strings.TrimSpace(getenv("OPENAI_API_KEY")),
		BaseURL:  strings.TrimSpace(getenv("OPENAI_BASE_URL")),
	})
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Missing file is an empty overlay
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.Provider = pick(overlay.Provider, base.Provider)
	result.APIKey = pick(overlay.APIKey, base.APIKey)
	result.BaseURL = pick(overlay.BaseURL, base.BaseURL)
	result.FastModel = pick(overlay.FastModel, base.FastModel)
	result.ResearchModel = pick(overlay.ResearchModel, base.ResearchModel)
	result.ProModel = pick(overlay.ProModel, base.ProModel)

	// Integers: overlay wins if non-zero, else base
	result.CallTimeoutSeconds = overlay.CallTimeoutSeconds
	if result.CallTimeoutSeconds == 0 {
		result.CallTimeoutSeconds = base.CallTimeoutSeconds
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// pick returns overlay unless it is empty.
func pick(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
