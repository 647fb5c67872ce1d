// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for finsight.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - OllamaConfig: Local Ollama server settings (URL, model, timeout)
//   - ChatConfig: Conversation loop settings (system prompt, iteration cap)
//   - StorageConfig: Conversation persistence settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (FINSIGHT_*)
//   - ~/.finsight/config.toml
//   - ~/.finsight/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	model := cfg.Ollama.Model
//	prompt := cfg.Chat.SystemPrompt
package config
