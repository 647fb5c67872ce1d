// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and ReloadGlobal()
// can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// 50 writers using SetGlobal, 50 readers using Global
	for i := 0; i < 50; i++ {
		wg.Add(2)

		// Writer goroutine
		go func(id int) {
			defer wg.Done()
			c := &Config{
				Version:      "test",
				DefaultModel: "test-model",
				Ollama: OllamaConfig{
					URL:   "http://127.0.0.1:11434",
					Model: "test-model",
				},
			}
			SetGlobal(c)
		}(i)

		// Reader goroutine
		go func(id int) {
			defer wg.Done()
			cfg := Global()
			if cfg == nil {
				t.Error("Global() returned nil")
			}
		}(i)
	}

	wg.Wait()
}

// TestConfig_GlobalInitialization tests that Global() properly initializes
// the config on first access.
func TestConfig_GlobalInitialization(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	cfg := Global()
	if cfg == nil {
		t.Fatal("Global() returned nil")
	}

	// Verify defaults are applied
	if cfg.Version == "" {
		t.Error("Config version should not be empty")
	}
	if cfg.Ollama.URL == "" {
		t.Error("Ollama URL should not be empty")
	}
}

// TestConfig_SetGlobalOverwrites tests that SetGlobal properly overwrites
// the existing global config.
func TestConfig_SetGlobalOverwrites(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	// Initialize with defaults
	_ = Global()

	// Set custom config
	customCfg := &Config{
		Version:      "custom-version",
		DefaultModel: "custom-model",
	}
	SetGlobal(customCfg)

	// Verify the custom config is returned
	result := Global()
	if result.Version != "custom-version" {
		t.Errorf("Expected version 'custom-version', got '%s'", result.Version)
	}
	if result.DefaultModel != "custom-model" {
		t.Errorf("Expected model 'custom-model', got '%s'", result.DefaultModel)
	}
}

// TestConfig_ConcurrentMixedOperations tests a mix of all global operations
// happening concurrently.
func TestConfig_ConcurrentMixedOperations(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// Mix of operations: Global, SetGlobal, ReloadGlobal
	for i := 0; i < 100; i++ {
		wg.Add(1)
		switch i % 3 {
		case 0:
			// Reader
			go func() {
				defer wg.Done()
				cfg := Global()
				if cfg == nil {
					t.Error("Global() returned nil")
				}
			}()
		case 1:
			// SetGlobal writer
			go func() {
				defer wg.Done()
				c := Default()
				c.Version = "concurrent-test"
				SetGlobal(c)
			}()
		case 2:
			// ReloadGlobal
			go func() {
				defer wg.Done()
				_ = ReloadGlobal()
			}()
		}
	}

	wg.Wait()
}

// TestConfig_Default tests that Default() returns a valid config with defaults.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Version == "" {
		t.Error("Default config should have a version")
	}

	if cfg.Ollama.URL != "http://127.0.0.1:11434" {
		t.Errorf("Expected default Ollama URL 'http://127.0.0.1:11434', got '%s'", cfg.Ollama.URL)
	}

	if cfg.Ollama.Model != cfg.DefaultModel {
		t.Errorf("Default Ollama model %q should match default_model %q", cfg.Ollama.Model, cfg.DefaultModel)
	}

	if cfg.Chat.MaxIterations != 10 {
		t.Errorf("Expected default max_iterations 10, got %d", cfg.Chat.MaxIterations)
	}

	if cfg.Chat.KeepRecent != 2 {
		t.Errorf("Expected default keep_recent 2, got %d", cfg.Chat.KeepRecent)
	}

	if cfg.Chat.SystemPrompt == "" {
		t.Error("Default config should have a system prompt")
	}

	if cfg.Storage.MaxConversations != 100 {
		t.Errorf("Expected default max_conversations 100, got %d", cfg.Storage.MaxConversations)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid default config",
			config:  Default(),
			wantErr: false,
		},
		{
			name: "url without scheme",
			config: func() *Config {
				c := Default()
				c.Ollama.URL = "127.0.0.1:11434"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "negative timeout",
			config: func() *Config {
				c := Default()
				c.Ollama.TimeoutSecs = -5
				return c
			}(),
			wantErr: true,
		},
		{
			name: "zero max_iterations",
			config: func() *Config {
				c := Default()
				c.Chat.MaxIterations = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "max_iterations above maximum",
			config: func() *Config {
				c := Default()
				c.Chat.MaxIterations = 500
				return c
			}(),
			wantErr: true,
		},
		{
			name: "negative keep_recent",
			config: func() *Config {
				c := Default()
				c.Chat.KeepRecent = -1
				return c
			}(),
			wantErr: true,
		},
		{
			name: "keep_recent zero is allowed",
			config: func() *Config {
				c := Default()
				c.Chat.KeepRecent = 0
				return c
			}(),
			wantErr: false,
		},
		{
			name: "invalid theme",
			config: func() *Config {
				c := Default()
				c.UI.Theme = "invalid"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "negative max_conversations",
			config: func() *Config {
				c := Default()
				c.Storage.MaxConversations = -1
				return c
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_ValidationError tests the error formatting of validation failures.
func TestConfig_ValidationError(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "neon"
	cfg.Chat.MaxIterations = -3

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should fail for two invalid fields")
	}

	errs, ok := err.(ValidateErrors)
	if !ok {
		t.Fatalf("expected ValidateErrors, got %T", err)
	}
	if len(errs) != 2 {
		t.Errorf("expected 2 validation errors, got %d: %v", len(errs), errs)
	}

	// Field names appear in the message
	msg := err.Error()
	for _, want := range []string{"ui.theme", "chat.max_iterations"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing field %q", msg, want)
		}
	}
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	// Test Get
	val, err := cfg.Get("ollama.model")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != "qwen3:8b" {
		t.Errorf("Get('ollama.model') = %v, want 'qwen3:8b'", val)
	}

	// Test Set
	err = cfg.Set("ollama.model", "llama3.2:3b")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, _ = cfg.Get("ollama.model")
	if val != "llama3.2:3b" {
		t.Errorf("Get('ollama.model') after Set = %v, want 'llama3.2:3b'", val)
	}

	// Set an integer from its string form
	err = cfg.Set("chat.max_iterations", "5")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.Chat.MaxIterations != 5 {
		t.Errorf("Set('chat.max_iterations', \"5\") = %d, want 5", cfg.Chat.MaxIterations)
	}

	// Set a bool from its string form
	err = cfg.Set("ui.show_stats", "false")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.UI.ShowStats {
		t.Error("Set('ui.show_stats', \"false\") should disable stats")
	}

	// Test Get with invalid key
	_, err = cfg.Get("invalid.key")
	if err == nil {
		t.Error("Get() with invalid key should return error")
	}

	// Test Set with invalid key
	err = cfg.Set("ollama.bogus", "x")
	if err == nil {
		t.Error("Set() with invalid key should return error")
	}
}

// TestConfig_GetAllKeys tests that every advertised key resolves through Get.
func TestConfig_GetAllKeys(t *testing.T) {
	cfg := Default()

	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) failed: %v", key, err)
		}
	}
}

// TestConfig_EnvOverrides tests environment variable overrides.
func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FINSIGHT_MODEL", "env-model:7b")
	t.Setenv("FINSIGHT_OLLAMA_URL", "http://10.0.0.5:11434")
	t.Setenv("FINSIGHT_SYSTEM_PROMPT", "You are a test prompt.")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.DefaultModel != "env-model:7b" {
		t.Errorf("FINSIGHT_MODEL should override default_model, got %q", cfg.DefaultModel)
	}
	if cfg.Ollama.Model != "env-model:7b" {
		t.Errorf("FINSIGHT_MODEL should override ollama.model, got %q", cfg.Ollama.Model)
	}
	if cfg.Ollama.URL != "http://10.0.0.5:11434" {
		t.Errorf("FINSIGHT_OLLAMA_URL should override ollama.url, got %q", cfg.Ollama.URL)
	}
	if cfg.Chat.SystemPrompt != "You are a test prompt." {
		t.Errorf("FINSIGHT_SYSTEM_PROMPT should override chat.system_prompt, got %q", cfg.Chat.SystemPrompt)
	}
}

// TestConfig_Migrate tests legacy value migration.
func TestConfig_Migrate(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "default"
	cfg.Ollama.URL = "http://127.0.0.1:11434/"

	if err := cfg.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if cfg.UI.Theme != "dark" {
		t.Errorf("legacy theme 'default' should migrate to 'dark', got %q", cfg.UI.Theme)
	}
	if cfg.Ollama.URL != "http://127.0.0.1:11434" {
		t.Errorf("trailing slash should be stripped, got %q", cfg.Ollama.URL)
	}
}

// TestConfig_SaveLoadTOML tests a TOML save/load round trip.
func TestConfig_SaveLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	original := Default()
	original.DefaultModel = "roundtrip:1b"
	original.Ollama.Model = "roundtrip:1b"
	original.Chat.MaxIterations = 7
	original.UI.Theme = "light"

	require.NoError(t, SaveTOML(original, path))

	// File must be private
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm(), "config file should be 0600")

	loaded := Default()
	require.NoError(t, LoadTOML(loaded, path))

	require.Equal(t, "roundtrip:1b", loaded.DefaultModel)
	require.Equal(t, "roundtrip:1b", loaded.Ollama.Model)
	require.Equal(t, 7, loaded.Chat.MaxIterations)
	require.Equal(t, "light", loaded.UI.Theme)
}

// TestConfig_SaveLoadJSON tests a JSON save/load round trip.
func TestConfig_SaveLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	original := Default()
	original.Chat.KeepRecent = 4
	original.Storage.MaxConversations = 25

	require.NoError(t, SaveJSON(original, path))

	loaded := Default()
	require.NoError(t, LoadJSON(loaded, path))

	require.Equal(t, 4, loaded.Chat.KeepRecent)
	require.Equal(t, 25, loaded.Storage.MaxConversations)
}

// TestConfig_LoadPartialTOML tests that unspecified fields keep their defaults.
func TestConfig_LoadPartialTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	partial := "[ollama]\nmodel = \"custom:3b\"\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0600))

	cfg := Default()
	require.NoError(t, LoadTOML(cfg, path))

	require.Equal(t, "custom:3b", cfg.Ollama.Model)
	// Everything else falls back to defaults
	require.Equal(t, "http://127.0.0.1:11434", cfg.Ollama.URL)
	require.Equal(t, 10, cfg.Chat.MaxIterations)
	require.NotEmpty(t, cfg.Chat.SystemPrompt)
}

// TestConfig_LoadFromPath tests explicit-path loading with format dispatch.
func TestConfig_LoadFromPath(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[chat]\nmax_iterations = 3\n"), 0600))

	cfg, err := LoadFromPath(tomlPath)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Chat.MaxIterations)
	// The full pipeline runs, so defaults are filled and validated
	require.NotEmpty(t, cfg.Ollama.URL)

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"chat":{"keep_recent":5}}`), 0600))

	cfg, err = LoadFromPath(jsonPath)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Chat.KeepRecent)

	_, err = LoadFromPath(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}

// TestConfig_Clone tests that Clone creates an independent copy.
func TestConfig_Clone(t *testing.T) {
	original := Default()
	original.Version = "original"

	clone := original.Clone()

	// Modify clone
	clone.Version = "cloned"
	clone.Ollama.Model = "other"

	// Verify original unchanged
	if original.Version != "original" {
		t.Error("Clone should create an independent copy")
	}
	if original.Ollama.Model == "other" {
		t.Error("Clone should not share nested struct values")
	}
	if clone.Version != "cloned" {
		t.Error("Clone version should be modified")
	}
}

// TestConfig_Merge tests merging two configs.
func TestConfig_Merge(t *testing.T) {
	base := Default()
	base.Version = "base"

	other := &Config{
		Version:      "merged",
		DefaultModel: "merged-model",
	}

	base.Merge(other)

	if base.Version != "merged" {
		t.Errorf("Merge should overwrite Version, got '%s'", base.Version)
	}
	if base.DefaultModel != "merged-model" {
		t.Errorf("Merge should overwrite DefaultModel, got '%s'", base.DefaultModel)
	}
	// Verify non-overwritten values remain
	if base.Ollama.URL != "http://127.0.0.1:11434" {
		t.Error("Merge should not overwrite unset fields")
	}
}

// TestConfig_ConversationsDir tests storage dir resolution.
func TestConfig_ConversationsDir(t *testing.T) {
	cfg := Default()

	dir, err := cfg.ConversationsDir()
	if err != nil {
		t.Fatalf("ConversationsDir() error = %v", err)
	}
	if filepath.Base(dir) != "conversations" {
		t.Errorf("default conversations dir should end in 'conversations', got %q", dir)
	}

	cfg.Storage.Dir = "/tmp/custom-conversations"
	dir, err = cfg.ConversationsDir()
	if err != nil {
		t.Fatalf("ConversationsDir() error = %v", err)
	}
	if dir != "/tmp/custom-conversations" {
		t.Errorf("storage.dir override ignored, got %q", dir)
	}
}
