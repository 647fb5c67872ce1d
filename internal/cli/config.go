// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for finsight.
//
// Command: config [subcommand]
// Short:   View and modify configuration
// Aliases: cfg
//
// Subcommands:
//   show (default)      Display current configuration
//   get <key>           Print a single configuration value
//   set <key> <value>   Set a configuration value
//   list                List every key with its current value
//   path                Show configuration file path
//   reset               Reset to default configuration (requires --confirm)
//
// Examples:
//   finsight config                               Show current config
//   finsight config get ollama.model              Print one value
//   finsight config set ollama.model llama3.1     Switch default model
//   finsight config set chat.max_iterations 5     Cap tool-calling rounds
//   finsight config set storage.enabled false     Disable session storage
//   finsight config list                          All keys and values
//   finsight config reset --confirm               Back to defaults
//
// Configuration Keys:
//   version                   Config schema version
//   default_model             Fallback model name
//   ollama.url                Ollama server URL
//   ollama.model              Chat model
//   ollama.timeout_secs       Request timeout in seconds
//   chat.system_prompt        System prompt for new conversations
//   chat.max_iterations       Tool-calling round cap per question
//   chat.keep_recent          Messages kept verbatim on /compact
//   chat.render_markdown      Render replies as markdown (true/false)
//   storage.enabled           Save sessions to disk (true/false)
//   storage.dir               Session directory override
//   storage.max_conversations Oldest sessions pruned past this count
//   ui.theme                  Color theme
//   ui.show_stats             Show generation stats after replies
//
// Flags:
//   --json              Output in JSON format
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/finsight/internal/config"
	"github.com/jeranaias/finsight/internal/util"
)

// =============================================================================
// CONFIG STYLES
// =============================================================================

var (
	// Config key style
	configKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Light gray
			Width(26)

	// Config value style
	configValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")) // Green

	// Path style
	configPathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

// =============================================================================
// HANDLE CONFIG
// =============================================================================

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(args)

	case "get":
		return handleConfigGet(args)

	case "set":
		return handleConfigSet(args)

	case "list":
		return handleConfigList(args)

	case "path":
		return handleConfigPath(args)

	case "reset":
		return handleConfigReset(args)

	default:
		return NewValidationErrorWithExample("config subcommand", args.Subcommand,
			"unknown subcommand", "finsight config list")
	}
}

// handleConfigShow displays the current configuration.
func handleConfigShow(args Args) error {
	cfg := config.Global()

	// JSON mode dumps the whole config; it carries no secrets
	if args.JSON {
		return NewJSONResponse("config show", cfg).Print()
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("finsight Configuration"))
	fmt.Println(RenderSeparator(41))
	fmt.Println()

	// General section
	fmt.Println(SectionStyle.Render("[general]"))
	printConfigValue("version:", fmt.Sprintf("%v", cfg.Version))
	printConfigValue("default_model:", cfg.DefaultModel)
	fmt.Println()

	// Ollama section
	fmt.Println(SectionStyle.Render("[ollama]"))
	printConfigValue("url:", cfg.Ollama.URL)
	printConfigValue("model:", cfg.Ollama.Model)
	printConfigValue("timeout_secs:", fmt.Sprintf("%d", cfg.Ollama.TimeoutSecs))
	fmt.Println()

	// Chat section
	fmt.Println(SectionStyle.Render("[chat]"))
	printConfigValue("system_prompt:", promptPreview(cfg.Chat.SystemPrompt))
	printConfigValue("max_iterations:", fmt.Sprintf("%d", cfg.Chat.MaxIterations))
	printConfigValue("keep_recent:", fmt.Sprintf("%d", cfg.Chat.KeepRecent))
	printConfigValue("render_markdown:", fmt.Sprintf("%t", cfg.Chat.RenderMarkdown))
	fmt.Println()

	// Storage section
	fmt.Println(SectionStyle.Render("[storage]"))
	printConfigValue("enabled:", fmt.Sprintf("%t", cfg.Storage.Enabled))
	storageDir := cfg.Storage.Dir
	if storageDir == "" {
		storageDir = "(default)"
	}
	printConfigValue("dir:", storageDir)
	printConfigValue("max_conversations:", fmt.Sprintf("%d", cfg.Storage.MaxConversations))
	fmt.Println()

	// UI section
	fmt.Println(SectionStyle.Render("[ui]"))
	printConfigValue("theme:", cfg.UI.Theme)
	printConfigValue("show_stats:", fmt.Sprintf("%t", cfg.UI.ShowStats))
	fmt.Println()

	// Config file path
	fmt.Println(SeparatorStyle.Render(strings.Repeat("-", 41)))
	fmt.Printf("Config file: %s\n", configPathStyle.Render(activeConfigPath()))
	fmt.Println()

	return nil
}

// handleConfigGet prints a single configuration value, unstyled so scripts
// can consume it directly.
func handleConfigGet(args Args) error {
	if args.ConfigKey == "" {
		err := ErrMissingArgument("key", "finsight config get <key>")
		if args.JSON {
			NewJSONErrorResponse("config get", err).Print()
		}
		return err
	}

	cfg := config.Global()
	key := strings.ToLower(args.ConfigKey)

	val, err := cfg.Get(key)
	if err != nil {
		err = fmt.Errorf("unknown config key: %s (see: finsight config list)", args.ConfigKey)
		if args.JSON {
			NewJSONErrorResponse("config get", err).Print()
		}
		return err
	}

	if args.JSON {
		return NewJSONResponse("config get", map[string]interface{}{
			"key":   key,
			"value": val,
		}).Print()
	}

	fmt.Printf("%v\n", val)
	return nil
}

// handleConfigSet sets a configuration value and persists it.
func handleConfigSet(args Args) error {
	key := args.ConfigKey
	value := args.ConfigVal

	if key == "" {
		return ErrMissingArgument("key", "finsight config set <key> <value>")
	}
	if value == "" {
		return ErrMissingArgument("value", fmt.Sprintf("finsight config set %s <value>", key))
	}

	// Mutate a fresh copy so a failed set never poisons the shared config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.Default()
	}

	key = strings.ToLower(key)

	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("unknown config key: %s (see: finsight config list)", key)
	}

	// Validate the updated config before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration value: %w", err)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if args.JSON {
		return NewJSONResponse("config set", map[string]interface{}{
			"key":   key,
			"value": value,
		}).Print()
	}

	fmt.Printf("%s %s = %s\n",
		SuccessStyle.Render("[OK]"),
		key,
		value)

	return nil
}

// handleConfigList lists every advertised key with its current value.
func handleConfigList(args Args) error {
	cfg := config.Global()

	if args.JSON {
		out := make(map[string]interface{}, len(config.GetAllKeys()))
		for _, key := range config.GetAllKeys() {
			if val, err := cfg.Get(key); err == nil {
				out[key] = val
			}
		}
		return NewJSONResponse("config list", out).Print()
	}

	for _, key := range config.GetAllKeys() {
		val, err := cfg.Get(key)
		if err != nil {
			continue
		}

		display := fmt.Sprintf("%v", val)
		if key == "chat.system_prompt" {
			display = promptPreview(display)
		}

		printConfigValue(key+":", display)
	}

	return nil
}

// handleConfigPath shows the config file path.
func handleConfigPath(args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return fmt.Errorf("could not resolve config path: %w", err)
	}

	_, statErr := os.Stat(path)
	exists := !os.IsNotExist(statErr)

	if args.JSON {
		return NewJSONResponse("config path", map[string]interface{}{
			"path":   path,
			"exists": exists,
		}).Print()
	}

	fmt.Println(path)
	if !exists {
		fmt.Fprintf(os.Stderr, "%s (file does not exist - will be created on first use)\n",
			DimStyle.Render("Note"))
	}

	return nil
}

// handleConfigReset resets configuration to defaults.
func handleConfigReset(args Args) error {
	confirmed, err := RequireConfirmation(rawHasFlag(args.Raw, "--confirm"),
		"reset configuration to defaults", args.JSON)
	if err != nil {
		return err
	}
	if !confirmed {
		ShowCancellationMessage()
		return nil
	}

	cfg := config.Default()
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	path, _ := config.ConfigPathTOML()

	if args.JSON {
		return NewJSONResponse("config reset", map[string]interface{}{
			"reset": true,
			"path":  path,
		}).Print()
	}

	fmt.Printf("%s Configuration reset to defaults\n", SuccessStyle.Render("[OK]"))
	fmt.Printf("Config file: %s\n", configPathStyle.Render(path))

	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// printConfigValue prints one aligned key/value row.
func printConfigValue(key, value string) {
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render(key),
		configValueStyle.Render(value))
}

// promptPreview flattens and truncates the system prompt so config listings
// stay one line per key.
func promptPreview(prompt string) string {
	flat := strings.ReplaceAll(prompt, "\n", " ")
	return util.TruncateRunes(flat, 60)
}
