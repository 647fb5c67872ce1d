// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command implementation for finsight.
//
// Command: status
// Short:   Display system status
// Aliases: s
//
// Examples:
//   finsight status               Show system status
//   finsight s                    Show status (short alias)
//   finsight status --json        Status in JSON format
//
// Status Sections:
//   Ollama:    Server URL, reachability, version, installed model count
//   Model:     Configured chat model and local availability
//   Storage:   Session storage location, saved session count and size
//   Config:    Active config file, tool iteration and compaction settings
//
// Flags:
//   --json              Output in JSON format
package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/finsight/internal/config"
	"github.com/jeranaias/finsight/internal/ollama"
	"github.com/jeranaias/finsight/internal/storage"
)

// =============================================================================
// HANDLE STATUS
// =============================================================================

// HandleStatus handles the "status" command.
// Displays Ollama reachability, model availability, session storage, and the
// active configuration.
func HandleStatus(args Args) error {
	cfg := config.Global()
	data := collectStatusData(cfg)

	// JSON output mode for scripting
	if args.JSON {
		return NewJSONResponse("status", data).Print()
	}

	// Print header
	fmt.Println()
	fmt.Println(TitleStyle.Render("finsight Status"))
	fmt.Println(RenderSeparator(41))
	fmt.Println()

	// Ollama section
	fmt.Println(SectionStyle.Render("Ollama"))
	fmt.Println(formatOllamaSection(data.Ollama))
	fmt.Println()

	// Model section
	fmt.Println(SectionStyle.Render("Model"))
	fmt.Println(formatModelSection(data.Model))
	fmt.Println()

	// Storage section
	fmt.Println(SectionStyle.Render("Storage"))
	fmt.Println(formatStorageSection(data.Storage))
	fmt.Println()

	// Config section
	fmt.Println(SectionStyle.Render("Config"))
	fmt.Println(formatConfigSection(data.Config))
	fmt.Println()

	return nil
}

// =============================================================================
// DATA COLLECTION
// =============================================================================

// collectStatusData gathers every status section in one pass so the text and
// JSON renderings agree.
func collectStatusData(cfg *config.Config) StatusData {
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		DefaultModel: cfg.Ollama.Model,
		Timeout:      time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var data StatusData

	// Ollama server
	data.Ollama.URL = cfg.Ollama.URL
	var models []ollama.ModelInfo
	if err := client.CheckRunning(ctx); err == nil {
		data.Ollama.Running = true
		data.Ollama.Version = getOllamaVersion()
		if list, listErr := client.ListModels(ctx); listErr == nil {
			models = list
			data.Ollama.ModelCount = len(list)
		}
	}

	// Configured model and its availability; a tag-less name matches any
	// local tag of that model
	modelName := cfg.Ollama.Model
	if modelName == "" {
		modelName = cfg.DefaultModel
	}
	if modelName == "" {
		modelName = client.GetDefaultModel()
	}
	data.Model.Configured = modelName
	for i := range models {
		m := &models[i]
		if m.Name == modelName || strings.HasPrefix(m.Name, modelName+":") {
			data.Model.Available = true
			data.Model.SizeBytes = m.Size
			break
		}
	}

	// Session storage
	data.Storage.Enabled = cfg.Storage.Enabled
	if dir, err := cfg.ConversationsDir(); err == nil {
		data.Storage.Location = dir
	}
	if cfg.Storage.Enabled {
		if store, err := storage.NewConversationStore(); err == nil {
			if metas, listErr := store.List(); listErr == nil {
				data.Storage.Sessions = len(metas)
			}
		}
		data.Storage.SizeBytes = storageDirSize(data.Storage.Location)
	}

	// Configuration
	data.Config.Path = activeConfigPath()
	data.Config.MaxIterations = cfg.Chat.MaxIterations
	data.Config.KeepRecent = cfg.Chat.KeepRecent

	return data
}

// =============================================================================
// SECTION FORMATTING
// =============================================================================

// formatOllamaSection returns the formatted Ollama server section.
func formatOllamaSection(info StatusOllamaInfo) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("  %s%s",
		RenderLabel("URL:", 14),
		ValueStyle.Render(info.URL)))

	var statusStr string
	if info.Running {
		if info.Version != "" {
			statusStr = SuccessStyle.Render(fmt.Sprintf("Running (v%s)", info.Version))
		} else {
			statusStr = SuccessStyle.Render("Running")
		}
	} else {
		statusStr = ErrorStyle.Render("Not running (start with: ollama serve)")
	}
	lines = append(lines, fmt.Sprintf("  %s%s",
		RenderLabel("Status:", 14),
		statusStr))

	if info.Running {
		lines = append(lines, fmt.Sprintf("  %s%s",
			RenderLabel("Models:", 14),
			ValueStyle.Render(fmt.Sprintf("%d installed", info.ModelCount))))
	}

	return strings.Join(lines, "\n")
}

// formatModelSection returns the formatted model section.
func formatModelSection(info StatusModelInfo) string {
	var lines []string

	var modelStr string
	if info.Available {
		if info.SizeBytes > 0 {
			modelStr = SuccessStyle.Render(fmt.Sprintf("%s (%s)",
				info.Configured, formatBytes(info.SizeBytes)))
		} else {
			modelStr = SuccessStyle.Render(info.Configured)
		}
	} else {
		modelStr = WarningStyle.Render(fmt.Sprintf("%s (not downloaded)", info.Configured))
	}
	lines = append(lines, fmt.Sprintf("  %s%s",
		RenderLabel("Configured:", 14),
		modelStr))

	if !info.Available {
		lines = append(lines, fmt.Sprintf("  %s%s",
			RenderLabel("", 14),
			DimStyle.Render(fmt.Sprintf("Pull it with: ollama pull %s", info.Configured))))
	}

	return strings.Join(lines, "\n")
}

// formatStorageSection returns the formatted storage section.
func formatStorageSection(info StatusStorageInfo) string {
	var lines []string

	var enabledStr string
	if info.Enabled {
		enabledStr = SuccessStyle.Render("Enabled")
	} else {
		enabledStr = DimStyle.Render("Disabled")
	}
	lines = append(lines, fmt.Sprintf("  %s%s",
		RenderLabel("Status:", 14),
		enabledStr))
	lines = append(lines, fmt.Sprintf("  %s%s",
		RenderLabel("Location:", 14),
		ValueStyle.Render(info.Location)))

	if info.Enabled {
		lines = append(lines, fmt.Sprintf("  %s%s",
			RenderLabel("Sessions:", 14),
			ValueStyle.Render(fmt.Sprintf("%d", info.Sessions))))
		lines = append(lines, fmt.Sprintf("  %s%s",
			RenderLabel("Size:", 14),
			ValueStyle.Render(formatBytes(info.SizeBytes))))
	}

	return strings.Join(lines, "\n")
}

// formatConfigSection returns the formatted config section.
func formatConfigSection(info StatusConfigInfo) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("  %s%s",
		RenderLabel("File:", 14),
		ValueStyle.Render(info.Path)))
	lines = append(lines, fmt.Sprintf("  %s%s",
		RenderLabel("Max Iter:", 14),
		ValueStyle.Render(fmt.Sprintf("%d tool rounds", info.MaxIterations))))
	lines = append(lines, fmt.Sprintf("  %s%s",
		RenderLabel("Keep Recent:", 14),
		ValueStyle.Render(fmt.Sprintf("%d messages on compact", info.KeepRecent))))

	return strings.Join(lines, "\n")
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// getOllamaVersion attempts to get the Ollama version from CLI.
func getOllamaVersion() string {
	// Try to execute ollama --version
	cmd := exec.Command("ollama", "--version")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}

	// Parse version string - typically "ollama version 0.5.4"
	parts := strings.Fields(string(output))
	if len(parts) > 0 {
		// Return the last part which should be the version number
		return strings.TrimSpace(parts[len(parts)-1])
	}
	return ""
}

// activeConfigPath reports which config file is in effect, mirroring the
// TOML-then-JSON order the loader uses.
func activeConfigPath() string {
	if p, err := config.ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(p); statErr == nil {
			return p
		}
	}
	if p, err := config.ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(p); statErr == nil {
			return p
		}
	}

	p, err := config.ConfigPathTOML()
	if err != nil {
		return "(built-in defaults)"
	}
	return p + " (defaults)"
}

// storageDirSize sums the size of session files under dir.
func storageDirSize(dir string) int64 {
	var total int64
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			total += info.Size()
		}
		return nil
	})
	return total
}
