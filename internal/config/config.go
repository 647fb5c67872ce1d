// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for finsight.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.finsight/config.toml
//   - ~/.finsight/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/finsight/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete finsight configuration.
type Config struct {
	// General settings
	Version      string `toml:"version" json:"version"`
	DefaultModel string `toml:"default_model" json:"default_model"`

	// Ollama server configuration
	Ollama OllamaConfig `toml:"ollama" json:"ollama"`

	// Chat behavior configuration
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Conversation storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// OllamaConfig contains settings for the local Ollama server.
type OllamaConfig struct {
	// URL is the Ollama API base URL
	URL string `toml:"url" json:"url"`
	// Model is the model used for chat and summarization
	Model string `toml:"model" json:"model"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// ChatConfig contains conversation loop settings.
type ChatConfig struct {
	// SystemPrompt seeds every new conversation as its first message
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`
	// MaxIterations caps tool rounds per user turn
	MaxIterations int `toml:"max_iterations" json:"max_iterations"`
	// KeepRecent is how many trailing messages compaction preserves verbatim
	KeepRecent int `toml:"keep_recent" json:"keep_recent"`
	// RenderMarkdown renders assistant replies through the markdown renderer
	RenderMarkdown bool `toml:"render_markdown" json:"render_markdown"`
}

// StorageConfig contains conversation persistence settings.
type StorageConfig struct {
	// Enabled controls whether conversations can be saved and loaded
	Enabled bool `toml:"enabled" json:"enabled"`
	// Dir overrides the storage directory (default: ~/.finsight/conversations)
	Dir string `toml:"dir" json:"dir"`
	// MaxConversations limits stored conversations (0 = unlimited)
	MaxConversations int `toml:"max_conversations" json:"max_conversations"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowStats displays generation statistics after each reply
	ShowStats bool `toml:"show_stats" json:"show_stats"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultSystemPrompt is the system message for new conversations when no
// prompt is configured. It frames the assistant's role and its tool use.
const DefaultSystemPrompt = `You are a professional financial analysis assistant. Your tasks:
1. Help the user analyze financial data and provide professional advice
2. Use the provided financial calculation tools for precise calculations
3. Explain financial metrics in clear, accessible terms
4. Point out risks and opportunities in the numbers

Keep a professional but friendly tone.`

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version:      "1.0.0",
		DefaultModel: "qwen3:8b",

		Ollama: OllamaConfig{
			URL:         "http://127.0.0.1:11434",
			Model:       "qwen3:8b",
			TimeoutSecs: 30,
		},

		Chat: ChatConfig{
			SystemPrompt:   DefaultSystemPrompt,
			MaxIterations:  10,
			KeepRecent:     2,
			RenderMarkdown: true,
		},

		Storage: StorageConfig{
			Enabled:          true,
			Dir:              "", // resolved to ~/.finsight/conversations
			MaxConversations: 100,
		},

		UI: UIConfig{
			Theme:     "dark",
			ShowStats: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the finsight configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".finsight"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// HistoryPath returns the path to the chat REPL history file.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chat_history"), nil
}

// ConversationsDir resolves the conversation storage directory, honoring
// the storage.dir override when set.
func (c *Config) ConversationsDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "conversations"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err // File doesn't exist or not accessible
	}

	// Check current permissions
	mode := info.Mode().Perm()

	// If permissions are too permissive (anything other than 0600), fix them
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				cfg.ApplyEnvOverrides()
				// Apply migration, defaults, and validation
				if err := cfg.Migrate(); err != nil {
					return nil, fmt.Errorf("config migration failed: %w", err)
				}
				cfg.SetDefaults()
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config: %w", err)
				}
				return cfg, nil
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				cfg.ApplyEnvOverrides()
				// Apply migration, defaults, and validation
				if err := cfg.Migrate(); err != nil {
					return nil, fmt.Errorf("config migration failed: %w", err)
				}
				cfg.SetDefaults()
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config: %w", err)
				}
				return cfg, nil
			}
		}
	}

	// Apply environment overrides to defaults
	cfg.ApplyEnvOverrides()

	// Apply migration, defaults, and validation for default config
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	// SECURITY: Check and fix file permissions if needed
	if err := ensureSecurePermissions(path); err != nil {
		// Log warning but don't fail - permissions might not be fixable on all systems
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	// SECURITY: Check and fix file permissions if needed
	if err := ensureSecurePermissions(path); err != nil {
		// Log warning but don't fail - permissions might not be fixable on all systems
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	// Determine file type and load accordingly
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	// Apply environment overrides
	cfg.ApplyEnvOverrides()

	// Apply migration, defaults, and validation
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	// General
	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaults.DefaultModel
	}

	// Ollama
	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = defaults.Ollama.URL
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = defaults.Ollama.Model
	}
	if cfg.Ollama.TimeoutSecs == 0 {
		cfg.Ollama.TimeoutSecs = defaults.Ollama.TimeoutSecs
	}

	// Chat
	if cfg.Chat.SystemPrompt == "" {
		cfg.Chat.SystemPrompt = defaults.Chat.SystemPrompt
	}
	if cfg.Chat.MaxIterations == 0 {
		cfg.Chat.MaxIterations = defaults.Chat.MaxIterations
	}
	if cfg.Chat.KeepRecent == 0 {
		cfg.Chat.KeepRecent = defaults.Chat.KeepRecent
	}

	// Storage
	if cfg.Storage.MaxConversations == 0 {
		cfg.Storage.MaxConversations = defaults.Storage.MaxConversations
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// SECURITY: Create file with restrictive permissions (0600 = owner read/write only)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// SECURITY: Ensure permissions are correct even if file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	// Write header comment
	fmt.Fprintln(file, "# finsight configuration file")
	fmt.Fprintln(file, "# Generated by finsight - edit with care")
	fmt.Fprintln(file, "#")
	fmt.Fprintln(file, "# Documentation: https://github.com/jeranaias/finsight")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	// SECURITY: Write with restrictive permissions (0600 = owner read/write only)
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Ollama Settings Validation
	// ==========================================================================

	// Validate Ollama URL
	if c.Ollama.URL != "" {
		parsed, err := url.Parse(c.Ollama.URL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "ollama.url",
				Message: fmt.Sprintf("invalid URL '%s', must include scheme and host", c.Ollama.URL),
			})
		}
	}

	// Validate request timeout (0 means "use default", negative is nonsense)
	if c.Ollama.TimeoutSecs < 0 || c.Ollama.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "ollama.timeout_secs",
			Message: fmt.Sprintf("timeout must be 0-3600 seconds, got %d", c.Ollama.TimeoutSecs),
		})
	}

	// ==========================================================================
	// Chat Settings Validation
	// ==========================================================================

	// Validate tool iteration cap
	if c.Chat.MaxIterations < 1 || c.Chat.MaxIterations > 100 {
		errs = append(errs, ValidationError{
			Field:   "chat.max_iterations",
			Message: fmt.Sprintf("max_iterations must be 1-100, got %d", c.Chat.MaxIterations),
		})
	}

	// Validate compaction tail size
	if c.Chat.KeepRecent < 0 || c.Chat.KeepRecent > 50 {
		errs = append(errs, ValidationError{
			Field:   "chat.keep_recent",
			Message: fmt.Sprintf("keep_recent must be 0-50, got %d", c.Chat.KeepRecent),
		})
	}

	// ==========================================================================
	// Storage Settings Validation
	// ==========================================================================

	// Validate conversation cap (0 = unlimited)
	if c.Storage.MaxConversations < 0 || c.Storage.MaxConversations > 10000 {
		errs = append(errs, ValidationError{
			Field:   "storage.max_conversations",
			Message: fmt.Sprintf("max_conversations must be 0-10000, got %d", c.Storage.MaxConversations),
		})
	}

	// ==========================================================================
	// UI Settings Validation
	// ==========================================================================

	// Validate UI theme
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	// General defaults
	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.DefaultModel == "" {
		c.DefaultModel = defaults.DefaultModel
	}

	// Ollama defaults
	if c.Ollama.URL == "" {
		c.Ollama.URL = defaults.Ollama.URL
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = c.DefaultModel
	}
	if c.Ollama.TimeoutSecs == 0 {
		c.Ollama.TimeoutSecs = defaults.Ollama.TimeoutSecs
	}

	// Chat defaults
	if c.Chat.SystemPrompt == "" {
		c.Chat.SystemPrompt = defaults.Chat.SystemPrompt
	}
	if c.Chat.MaxIterations == 0 {
		c.Chat.MaxIterations = defaults.Chat.MaxIterations
	}
	if c.Chat.KeepRecent == 0 {
		c.Chat.KeepRecent = defaults.Chat.KeepRecent
	}

	// Storage defaults
	if c.Storage.MaxConversations == 0 {
		c.Storage.MaxConversations = defaults.Storage.MaxConversations
	}

	// UI defaults
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// Migrate handles migration from old configuration formats to new ones.
func (c *Config) Migrate() error {
	// Handle "default" theme migration (deprecated, now aliased to "dark")
	if strings.ToLower(c.UI.Theme) == "default" {
		c.UI.Theme = "dark"
	}

	// Normalize trailing slash on the Ollama URL so path joins stay clean
	c.Ollama.URL = strings.TrimSuffix(c.Ollama.URL, "/")

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - FINSIGHT_MODEL: overrides default_model and ollama.model
//   - FINSIGHT_OLLAMA_URL: overrides ollama.url
//   - FINSIGHT_SYSTEM_PROMPT: overrides chat.system_prompt
func (c *Config) ApplyEnvOverrides() {
	// FINSIGHT_MODEL
	if model := os.Getenv("FINSIGHT_MODEL"); model != "" {
		c.DefaultModel = model
		c.Ollama.Model = model
	}

	// FINSIGHT_OLLAMA_URL
	if url := os.Getenv("FINSIGHT_OLLAMA_URL"); url != "" {
		c.Ollama.URL = url
	}

	// FINSIGHT_SYSTEM_PROMPT
	if prompt := os.Getenv("FINSIGHT_SYSTEM_PROMPT"); prompt != "" {
		c.Chat.SystemPrompt = prompt
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ollama.model").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		// Normalize the part name
		fieldName := normalizeFieldName(part)

		// Find the field
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		// If this is the last part, return the value
		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		// Otherwise, navigate into the struct
		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation (e.g., "ollama.model").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		// Normalize the part name
		fieldName := normalizeFieldName(part)

		// Find the field
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		// If this is the last part, set the value
		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		// Otherwise, navigate into the struct
		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	// Remove underscores and capitalize following letters
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	// Handle string input with type conversion
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		}
	}

	// Direct assignment for matching types
	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	// Type conversion for compatible types
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"default_model",
		"ollama.url",
		"ollama.model",
		"ollama.timeout_secs",
		"chat.system_prompt",
		"chat.max_iterations",
		"chat.keep_recent",
		"chat.render_markdown",
		"storage.enabled",
		"storage.dir",
		"storage.max_conversations",
		"ui.theme",
		"ui.show_stats",
	}
}

// Merge merges another config into this one, overwriting only non-zero values.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// General
	if other.Version != "" {
		c.Version = other.Version
	}
	if other.DefaultModel != "" {
		c.DefaultModel = other.DefaultModel
	}

	// Ollama
	if other.Ollama.URL != "" {
		c.Ollama.URL = other.Ollama.URL
	}
	if other.Ollama.Model != "" {
		c.Ollama.Model = other.Ollama.Model
	}
	if other.Ollama.TimeoutSecs != 0 {
		c.Ollama.TimeoutSecs = other.Ollama.TimeoutSecs
	}

	// Chat
	if other.Chat.SystemPrompt != "" {
		c.Chat.SystemPrompt = other.Chat.SystemPrompt
	}
	if other.Chat.MaxIterations != 0 {
		c.Chat.MaxIterations = other.Chat.MaxIterations
	}
	if other.Chat.KeepRecent != 0 {
		c.Chat.KeepRecent = other.Chat.KeepRecent
	}
	if other.Chat.RenderMarkdown {
		c.Chat.RenderMarkdown = true
	}

	// Storage
	if other.Storage.Enabled {
		c.Storage.Enabled = true
	}
	if other.Storage.Dir != "" {
		c.Storage.Dir = other.Storage.Dir
	}
	if other.Storage.MaxConversations != 0 {
		c.Storage.MaxConversations = other.Storage.MaxConversations
	}

	// UI
	if other.UI.Theme != "" {
		c.UI.Theme = other.UI.Theme
	}
	if other.UI.ShowStats {
		c.UI.ShowStats = true
	}
}

// Clone creates a copy of the configuration.
// The struct holds only value types, so an assignment copy is a full copy.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	// Use sync.Once to ensure initialization happens exactly once
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
