// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the finsight CLI.
//
// Handles the "finsight ask" command which runs one question through the
// full tool-calling loop and prints the final reply to stdout.
//
// Command: ask [question]
// Short:   Ask a single question
//
// Examples:
//   finsight ask "What does a current ratio of 0.9 tell me?"
//   finsight ask "Analyze this statement:" --file q3_income.txt
//   finsight ask "..." -m llama3.1:8b
//   finsight ask "..." --max-iter 5
//   cat notes.txt | finsight ask
//
// Flags:
//   -f, --file FILE     Include file content with the question
//   -m, --model NAME    Use specific model (overrides config)
//   --max-iter N        Cap tool-calling rounds for this question
//   --no-markdown       Plain text output
//   --json              Output response as JSON
//   -v, --verbose       Verbose output
//   -q, --quiet         Minimal output
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/finsight/internal/assistant"
	"github.com/jeranaias/finsight/internal/config"
	"github.com/jeranaias/finsight/internal/model"
	"github.com/jeranaias/finsight/internal/ollama"
	"github.com/jeranaias/finsight/internal/tools"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// MaxFileSize is the maximum file size to include (50KB).
	MaxFileSize = 50 * 1024
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
var markdownRenderer *glamour.TermRenderer

func init() {
	// Wrap to the terminal width, capped so very wide terminals stay readable.
	width := GetTerminalWidth()
	if width > 100 {
		width = 100
	}

	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse displays a reply with markdown rendering when appropriate.
// Only renders markdown when stdout is a TTY to avoid corrupting piped output.
func displayResponse(response string, noMarkdown bool) {
	if !noMarkdown && IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
		return
	}
	fmt.Print(response)
	if !strings.HasSuffix(response, "\n") {
		fmt.Println()
	}
}

// =============================================================================
// STYLES
// =============================================================================

var (
	// Note style for [+] status lines on stderr
	askNoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")) // Blue

	// Tool activity style
	askToolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("140")) // Purple

	// Stats footer style
	askStatsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim gray
)

// =============================================================================
// FILE READING
// =============================================================================

// readFileForContext reads a file and formats it for inclusion in a prompt.
// Returns the formatted content or an error.
// Files larger than MaxFileSize are rejected.
func readFileForContext(path string) (string, error) {
	// Check file info
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("cannot access file: %w", err)
	}

	// Check size
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("file too large: %d bytes (max %d bytes)", info.Size(), MaxFileSize)
	}

	// Read content
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	// Format with header
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("\n--- File: %s ---\n", path))
	builder.Write(content)
	builder.WriteString("\n--- End of file ---\n")

	return builder.String(), nil
}

// readQuestionFromStdin reads a piped question from stdin.
// Returns empty string when stdin is a terminal (nothing piped).
func readQuestionFromStdin() string {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return ""
	}
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return ""
	}

	reader := bufio.NewReader(os.Stdin)
	data, err := io.ReadAll(reader)
	if err != nil || len(data) == 0 {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAskCommand handles the "ask" command: one question through the full
// tool-calling loop, reply to stdout, done.
func HandleAskCommand(args Args) error {
	cfg := config.Global()

	// Question comes from positional args, falling back to piped stdin
	question := args.Query
	if question == "" {
		question = readQuestionFromStdin()
		if question != "" && !args.Quiet && !args.JSON {
			fmt.Fprintf(os.Stderr, "%s Read question from stdin (%d bytes)\n",
				askNoteStyle.Render("[+]"), len(question))
		}
	}

	if question == "" {
		err := ErrMissingArgument("question", `finsight ask "your question"`)
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	// If a file is specified, read and append to the question
	if args.File != "" {
		fileContent, err := readFileForContext(args.File)
		if err != nil {
			if args.JSON {
				NewJSONErrorResponse("ask", err).Print()
			}
			return err
		}
		question = question + "\n" + fileContent

		if !args.Quiet && !args.JSON {
			fmt.Fprintf(os.Stderr, "%s Including file: %s\n",
				askNoteStyle.Render("[+]"), args.File)
		}
	}

	// Create the Ollama client from config
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		DefaultModel: cfg.Ollama.Model,
		Timeout:      time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
	})

	ctx := context.Background()
	if err := client.CheckRunning(ctx); err != nil {
		err = fmt.Errorf("Ollama is not running. Start it with: ollama serve")
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	// Determine model to use (CLI arg > config > client default)
	modelName := args.Model
	if modelName == "" {
		modelName = cfg.Ollama.Model
	}
	if modelName == "" {
		modelName = cfg.DefaultModel
	}
	if modelName == "" {
		modelName = client.GetDefaultModel()
	}

	// The model must exist before the conversation starts; a missing model
	// is fatal here, not something to discover mid-loop.
	if !client.ModelExists(ctx, modelName) {
		err := fmt.Errorf("model %q is not available. Pull it with: ollama pull %s", modelName, modelName)
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	// Seed a fresh conversation with the configured system prompt
	systemPrompt := cfg.Chat.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}
	conv := model.NewConversation(systemPrompt, modelName)

	// Tool rounds: flag beats config beats built-in default
	maxIter := cfg.Chat.MaxIterations
	if args.MaxIter > 0 {
		maxIter = args.MaxIter
	}

	registry := tools.NewDefaultRegistry()
	// Failures are reported below, so the loop's own error log is silenced
	// to avoid printing every failure twice.
	asst := assistant.New(client, conv, registry, assistant.Options{
		MaxToolRounds: maxIter,
		ErrLog:        io.Discard,
	})

	// Show tool activity on stderr so stdout stays clean for the reply
	if !args.Quiet && !args.JSON {
		asst.SetCallbacks(
			func(name string, toolArgs map[string]interface{}) {
				fmt.Fprintf(os.Stderr, "%s %s\n", askToolStyle.Render("[tool]"), name)
			},
			func(name string, payload map[string]interface{}) {
				if errMsg, ok := payload["error"].(string); ok {
					fmt.Fprintf(os.Stderr, "%s %s failed: %s\n",
						WarningStyle.Render("[tool]"), name, errMsg)
				}
			},
		)
	}

	start := time.Now()
	reply, err := asst.Chat(ctx, question)
	if err != nil {
		err = describeChatError(err, modelName)
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	// JSON mode: structured envelope with generation metrics
	if args.JSON {
		data := AskData{
			Response:   reply,
			Model:      modelName,
			ToolCalls:  asst.Executor().Stats().TotalExecutions,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if last := conv.GetLastAssistantMessage(); last != nil {
			data.OutputTokens = last.TokenCount
			data.TokensPerSec = last.TokensPerSec
		}
		return NewJSONResponse("ask", data).Print()
	}

	displayResponse(reply, args.NoMarkdown)

	// Stats footer on stderr (suppressed by --quiet or ui.show_stats = false)
	if !args.Quiet && cfg.UI.ShowStats {
		if last := conv.GetLastAssistantMessage(); last != nil {
			if stats := last.FormatStats(); stats != "" {
				fmt.Fprintln(os.Stderr, askStatsStyle.Render(stats))
			}
		}
	}

	return nil
}

// describeChatError rewrites low-level client failures into actionable
// messages for one-shot use.
func describeChatError(err error, modelName string) error {
	switch {
	case ollama.IsModelNotFound(err):
		return fmt.Errorf("model %q is not available. Pull it with: ollama pull %s", modelName, modelName)
	case ollama.IsContextExceeded(err):
		return fmt.Errorf("the question exceeds the model's context window; try a shorter question or a smaller --file")
	case ollama.IsNotRunning(err):
		return fmt.Errorf("Ollama is not running. Start it with: ollama serve")
	default:
		return err
	}
}
