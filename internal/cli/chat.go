// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the finsight CLI.
//
// Handles the "finsight chat" command which provides an interactive REPL
// for conversing with the assistant. This is also the default command when
// finsight is invoked with no arguments.
//
// Command: chat
// Short:   Start an interactive chat session
// Aliases: repl
//
// Examples:
//   finsight                          Start interactive chat (default model)
//   finsight chat --model llama3.1    Use specific model
//   finsight chat --no-markdown       Plain text replies
//
// Flags:
//   -m, --model NAME    Use specific model (overrides config)
//   --no-markdown       Disable markdown rendering
//   -v, --verbose       Verbose output
//   -q, --quiet         Minimal output
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear conversation history
//   /compact            Summarize older messages to free context
//   /model [name]       Show or switch model
//   /status, /s         Show session statistics
//   /history            Show conversation history
//   /save               Save session to disk
//   /sessions           List saved sessions
//   /load <n|id>        Load a saved session
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel current generation
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/finsight/internal/assistant"
	"github.com/jeranaias/finsight/internal/config"
	convctx "github.com/jeranaias/finsight/internal/context"
	"github.com/jeranaias/finsight/internal/model"
	"github.com/jeranaias/finsight/internal/ollama"
	"github.com/jeranaias/finsight/internal/storage"
	"github.com/jeranaias/finsight/internal/tools"
	"github.com/jeranaias/finsight/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	// Prompt style
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // Cyan
			Bold(true)

	// Welcome banner style
	welcomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("140")). // Purple
			Bold(true)

	// Info style
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // Gray

	// Command style
	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // Green

	// Warning style
	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Amber

	// Error style
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // Red

	// Tool activity style
	toolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("140")) // Purple

	// Session summary header
	summaryHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")). // Cyan
				Bold(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile, err := config.HistoryPath()
	if err != nil {
		// Fallback to temp directory if config dir unavailable
		historyFile = filepath.Join(os.TempDir(), "finsight_history")
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}

	// Load existing history
	cli.LoadHistory()

	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	// Add non-empty input to history
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}

	return input, nil
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	// Ensure config directory exists
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	// Create file with secure permissions (0600 - owner read/write only)
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	// Conversation history; element 0 is the system prompt
	Conv *model.Conversation

	// Assistant drives the tool-calling loop for Conv
	Assistant *assistant.Assistant

	// Tool catalog shared across assistant rebuilds
	Registry *tools.Registry

	// Persistent session store; nil when storage is disabled
	Store *storage.ConversationStore

	// Compactor folds older history into a summary on /compact
	Compactor *convctx.Compactor

	// Configuration
	Config     *config.Config
	Model      string
	Quiet      bool
	NoMarkdown bool
	MaxIter    int

	// Tracking
	StartTime time.Time
	Turns     int

	// Clients
	Client *ollama.Client

	// Cancel function for the in-flight generation
	CancelFunc context.CancelFunc

	// Input history handler
	InputCLI *ChatCLI
}

// NewChatSession creates a new chat session from parsed CLI arguments.
func NewChatSession(args Args) *ChatSession {
	cfg := config.Global()

	// Create Ollama client with config
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		DefaultModel: cfg.Ollama.Model,
		Timeout:      time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
	})

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

	systemPrompt := cfg.Chat.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}

	maxIter := cfg.Chat.MaxIterations
	if args.MaxIter > 0 {
		maxIter = args.MaxIter
	}

	// Session store only when enabled; a failed open degrades to no storage
	var store *storage.ConversationStore
	if cfg.Storage.Enabled {
		if s, err := storage.NewConversationStore(); err == nil {
			store = s
		} else if !args.Quiet {
			fmt.Fprintf(os.Stderr, "%s Session storage unavailable: %v\n",
				warningStyle.Render("[Warning]"), err)
		}
	}

	session := &ChatSession{
		Conv:       model.NewConversation(systemPrompt, modelName),
		Registry:   tools.NewDefaultRegistry(),
		Store:      store,
		Compactor:  convctx.NewCompactor(client, convctx.Config{Model: modelName}),
		Config:     cfg,
		Model:      modelName,
		Quiet:      args.Quiet,
		NoMarkdown: args.NoMarkdown,
		MaxIter:    maxIter,
		StartTime:  time.Now(),
		Client:     client,
		InputCLI:   NewChatCLI(),
	}
	session.rebuildAssistant()

	return session
}

// systemPrompt returns the configured system prompt with fallback.
func (s *ChatSession) systemPrompt() string {
	if s.Config.Chat.SystemPrompt != "" {
		return s.Config.Chat.SystemPrompt
	}
	return config.DefaultSystemPrompt
}

// rebuildAssistant recreates the assistant around the session's current
// conversation. Needed after /load swaps the conversation out.
func (s *ChatSession) rebuildAssistant() {
	// The REPL reports failures itself, so the loop's own error log is
	// silenced to avoid printing every failure twice.
	s.Assistant = assistant.New(s.Client, s.Conv, s.Registry, assistant.Options{
		MaxToolRounds: s.MaxIter,
		ErrLog:        io.Discard,
	})

	s.Assistant.SetCallbacks(
		func(name string, toolArgs map[string]interface{}) {
			if s.Quiet {
				return
			}
			fmt.Fprintf(os.Stderr, "%s %s\n", toolStyle.Render("[tool]"), name)
		},
		func(name string, payload map[string]interface{}) {
			if s.Quiet {
				return
			}
			if errMsg, ok := payload["error"].(string); ok {
				fmt.Fprintf(os.Stderr, "%s %s failed: %s\n",
					warningStyle.Render("[tool]"), name, errMsg)
			}
		},
	)
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command with full interactive support.
func HandleChatCommand(args Args) error {
	session := NewChatSession(args)

	// Check if Ollama is running
	ctx := context.Background()
	if err := session.Client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("Ollama is not running. Start it with: ollama serve")
	}

	// A missing model is fatal before the REPL opens; discovering it on the
	// first message would fail every turn anyway.
	if !session.Client.ModelExists(ctx, session.Model) {
		return fmt.Errorf("model %q is not available. Pull it with: ollama pull %s",
			session.Model, session.Model)
	}

	// Show welcome message
	if !session.Quiet {
		printWelcome(session)
	}

	// Ensure input history is saved on exit
	defer session.InputCLI.Close()

	// Set up signal handling for graceful Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Handle signals in a goroutine
	go func() {
		for sig := range sigChan {
			if sig == os.Interrupt || sig == syscall.SIGTERM {
				// First Ctrl+C cancels current operation
				if session.CancelFunc != nil {
					session.CancelFunc()
					session.CancelFunc = nil
					fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
				}
			}
		}
	}()

	// Main REPL loop using liner for input history
	for {
		// Read input with history support
		input, err := session.InputCLI.ReadInput(promptStyle.Render("finsight> "))
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C pressed - exit gracefully
				fmt.Println()
				printExitSummary(session)
				return nil
			}
			// EOF (Ctrl+D) or other error - exit gracefully
			fmt.Println()
			printExitSummary(session)
			return nil
		}

		input = strings.TrimSpace(input)

		// Skip empty input
		if input == "" {
			continue
		}

		// Handle slash commands
		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, session)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n",
					errorStyle.Render("[Error]"),
					err)
			}
			if !shouldContinue {
				printExitSummary(session)
				return nil
			}
			continue
		}

		// Handle exit/quit without slash
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(session)
			return nil
		}

		// Process the message
		if err := processMessage(session, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n",
				errorStyle.Render("[Error]"),
				err)
		}
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage runs one user turn through the tool-calling loop and
// displays the reply.
func processMessage(session *ChatSession, input string) error {
	// Create cancellable context so Ctrl+C can stop the generation
	ctx, cancel := context.WithCancel(context.Background())
	session.CancelFunc = cancel
	defer func() {
		session.CancelFunc = nil
		cancel()
	}()

	fmt.Println() // Space before response

	start := time.Now()
	reply, err := session.Assistant.Chat(ctx, input)
	if err != nil {
		// User cancelled; the signal handler already printed [Cancelled]
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil
		}
		if ollama.IsContextExceeded(err) {
			return fmt.Errorf("context window exceeded; run /compact to summarize older messages")
		}
		if ollama.IsModelNotFound(err) {
			return fmt.Errorf("model %q is not available. Pull it with: ollama pull %s",
				session.Model, session.Model)
		}
		return err
	}

	displayResponse(reply, session.NoMarkdown)
	fmt.Println() // Extra space after response

	session.Turns++

	// Show brief stats (unless quiet)
	if !session.Quiet && session.Config.UI.ShowStats {
		showTurnStats(session, start)
	}

	// Nudge toward compaction before the context actually overflows
	if !session.Quiet && session.Conv.IsContextNearLimit() {
		fmt.Fprintf(os.Stderr, "%s Context is %.0f%% full - use /compact to summarize older messages\n",
			warningStyle.Render("[!]"),
			session.Conv.GetContextPercent())
	}

	return nil
}

// showTurnStats shows brief stats after a reply.
func showTurnStats(session *ChatSession, start time.Time) {
	last := session.Conv.GetLastAssistantMessage()
	if last == nil {
		return
	}

	stats := last.FormatStats()
	if stats == "" {
		stats = time.Since(start).Round(time.Millisecond).String()
	}

	fmt.Fprintf(os.Stderr, "%s %s\n",
		infoStyle.Render("[Stats]"),
		stats)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, session *ChatSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?":
		printHelp()
		return true, nil

	case "/clear", "/c":
		session.Conv.Clear()
		fmt.Println(commandStyle.Render("[Conversation cleared]"))
		return true, nil

	case "/compact":
		return handleCompactCommand(session)

	case "/model", "/m":
		return handleModelCommand(session, args)

	case "/status", "/s":
		printStatus(session)
		return true, nil

	case "/history":
		printHistory(session)
		return true, nil

	case "/save":
		return handleSaveCommand(session)

	case "/sessions":
		return handleSessionsCommand(session)

	case "/load":
		return handleLoadCommand(session, args)

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		// Just "/" shows help
		printHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// handleCompactCommand summarizes older messages to reclaim context.
func handleCompactCommand(session *ChatSession) (bool, error) {
	if !session.Quiet {
		fmt.Println(infoStyle.Render("[Compacting conversation...]"))
	}

	// Compaction makes a model round trip, so it is cancellable too
	ctx, cancel := context.WithCancel(context.Background())
	session.CancelFunc = cancel
	defer func() {
		session.CancelFunc = nil
		cancel()
	}()

	result, err := session.Compactor.Compact(ctx, session.Conv, session.Config.Chat.KeepRecent)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return true, nil
		}
		return true, fmt.Errorf("compaction failed: %w", err)
	}

	if !result.Compacted {
		fmt.Println(infoStyle.Render("[Nothing to compact - conversation is still short]"))
		return true, nil
	}

	fmt.Printf("%s %d messages summarized (%d -> %d), context now %.0f%%\n",
		commandStyle.Render("[Compacted]"),
		result.Summarized,
		result.Before,
		result.After,
		session.Conv.GetContextPercent())

	return true, nil
}

// handleModelCommand handles the /model command.
func handleModelCommand(session *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		fmt.Printf("%s Current model: %s\n",
			infoStyle.Render("[Model]"),
			commandStyle.Render(session.Model))
		return true, nil
	}

	newModel := args[0]

	// Everything runs locally, so a missing model is a hard failure later;
	// refuse the switch up front
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !session.Client.ModelExists(ctx, newModel) {
		fmt.Fprintf(os.Stderr, "%s Model '%s' not found. Pull it with: ollama pull %s\n",
			warningStyle.Render("[Warning]"),
			newModel,
			newModel)
		return true, nil
	}

	session.Model = newModel
	session.Conv.Model = newModel
	session.Compactor = convctx.NewCompactor(session.Client, convctx.Config{Model: newModel})

	fmt.Printf("%s Switched to model: %s\n",
		commandStyle.Render("[OK]"),
		newModel)

	return true, nil
}

// handleSaveCommand persists the current conversation.
func handleSaveCommand(session *ChatSession) (bool, error) {
	if session.Store == nil {
		return true, fmt.Errorf("session storage is disabled (set storage.enabled = true)")
	}

	if session.Conv.IsEmpty() {
		fmt.Println(infoStyle.Render("[Nothing to save yet]"))
		return true, nil
	}

	id, err := session.Store.Save(storage.FromConversation(session.Conv))
	if err != nil {
		return true, fmt.Errorf("save failed: %w", err)
	}

	fmt.Printf("%s session %s\n", commandStyle.Render("[Saved]"), id)
	return true, nil
}

// handleSessionsCommand lists saved sessions.
func handleSessionsCommand(session *ChatSession) (bool, error) {
	if session.Store == nil {
		return true, fmt.Errorf("session storage is disabled (set storage.enabled = true)")
	}

	metas, err := session.Store.List()
	if err != nil {
		return true, fmt.Errorf("listing sessions failed: %w", err)
	}

	fmt.Print(storage.FormatSessionList(metas))
	return true, nil
}

// handleLoadCommand swaps the current conversation for a saved one.
func handleLoadCommand(session *ChatSession, args []string) (bool, error) {
	if session.Store == nil {
		return true, fmt.Errorf("session storage is disabled (set storage.enabled = true)")
	}
	if len(args) == 0 {
		return true, fmt.Errorf("usage: /load <number|id> (see /sessions)")
	}

	stored, err := loadSessionByIDOrIndex(session.Store, args[0])
	if err != nil {
		return true, err
	}

	conv := stored.ToConversation(session.systemPrompt())
	if conv.Model != "" {
		session.Model = conv.Model
	} else {
		conv.Model = session.Model
	}

	session.Conv = conv
	session.rebuildAssistant()

	fmt.Printf("%s %s (%d messages)\n",
		commandStyle.Render("[Loaded]"),
		stored.ID,
		conv.MessageCount())

	return true, nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(session *ChatSession) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("finsight interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Model:"),
		commandStyle.Render(session.Model))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Tools:"),
		commandStyle.Render(strings.Join(session.Registry.Names(), ", ")))

	if session.Store != nil {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Storage:"),
			commandStyle.Render("enabled (/save, /sessions, /load)"))
	} else {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Storage:"),
			warningStyle.Render("disabled"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printHelp prints available commands.
func printHelp() {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/clear, /c", "Clear conversation history"},
		{"/compact", "Summarize older messages to free context"},
		{"/model [name]", "Show or switch model"},
		{"/status, /s", "Show session statistics"},
		{"/history", "Show conversation history"},
		{"/save", "Save session to disk"},
		{"/sessions", "List saved sessions"},
		{"/load <n|id>", "Load a saved session"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-15s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels current generation, Ctrl+D exits"))
	fmt.Println()
}

// printStatus prints session statistics.
func printStatus(session *ChatSession) {
	elapsed := time.Since(session.StartTime)
	stats := session.Assistant.Executor().Stats()

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	fmt.Printf("  %s %s\n",
		infoStyle.Render("Model:"),
		commandStyle.Render(session.Model))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		formatDurationShort(elapsed))
	fmt.Printf("  %s %d messages\n",
		infoStyle.Render("History:"),
		session.Conv.MessageCount())
	fmt.Printf("  %s %.0f%% of ~%d tokens\n",
		infoStyle.Render("Context:"),
		session.Conv.GetContextPercent(),
		session.Conv.MaxTokens)

	fmt.Println()
	fmt.Println(infoStyle.Render("Statistics:"))
	fmt.Printf("  %s %d\n",
		infoStyle.Render("Turns:"),
		session.Turns)
	fmt.Printf("  %s %d (%d failed)\n",
		infoStyle.Render("Tool calls:"),
		stats.TotalExecutions,
		stats.Failed)

	if session.Store != nil {
		fmt.Printf("  %s %s\n",
			infoStyle.Render("Storage:"),
			commandStyle.Render("enabled"))
	} else {
		fmt.Printf("  %s %s\n",
			infoStyle.Render("Storage:"),
			warningStyle.Render("disabled"))
	}

	fmt.Println()
}

// printHistory prints conversation history.
func printHistory(session *ChatSession) {
	history := session.Conv.GetHistory()
	if len(history) <= 1 {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Conversation History"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 25)))
	fmt.Println()

	for i, msg := range history {
		var role string
		switch msg.Role {
		case model.RoleUser:
			role = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render("You")
		case model.RoleAssistant:
			role = lipgloss.NewStyle().Foreground(lipgloss.Color("140")).Render("AI")
		case model.RoleSystem:
			role = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("System")
		case model.RoleTool:
			role = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("Tool")
		default:
			role = string(msg.Role)
		}

		// Truncate long messages using rune-based truncation for Unicode safety
		content := util.TruncateRunes(msg.Content, 100)
		content = strings.ReplaceAll(content, "\n", " ")

		fmt.Printf("  %d. %s: %s\n", i+1, role, content)
	}

	fmt.Println()
}

// printExitSummary prints the session summary on exit.
func printExitSummary(session *ChatSession) {
	// Skip if nothing happened
	if session.Turns == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}

	elapsed := time.Since(session.StartTime)
	stats := session.Assistant.Executor().Stats()

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Summary"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 15)))

	fmt.Printf("  %s %d\n",
		infoStyle.Render("Turns:"),
		session.Turns)
	fmt.Printf("  %s %d messages\n",
		infoStyle.Render("History:"),
		session.Conv.MessageCount())
	fmt.Printf("  %s %d (%d failed)\n",
		infoStyle.Render("Tool calls:"),
		stats.TotalExecutions,
		stats.Failed)
	fmt.Printf("  %s ~%d tokens\n",
		infoStyle.Render("Context:"),
		session.Conv.EstimateTokens())
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		formatDurationShort(elapsed))

	if session.Store != nil && !session.Conv.IsEmpty() {
		fmt.Println()
		fmt.Println(infoStyle.Render("Tip: /save persists a session; list them with 'finsight sessions'"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}
