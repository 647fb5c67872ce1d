// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for finsight.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota // Interactive chat REPL (default)
	CmdAsk                 // One-shot question
	CmdStatus              // Ollama, model, and storage status
	CmdConfig              // Configuration management
	CmdSessions            // Saved conversation management
	CmdVersion
	CmdHelp
	CmdUnknown // Unrecognized command (handled with a suggestion)
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Model   string
	JSON    bool // Output in JSON format

	// Command-specific
	Query      string // Question text for ask
	File       string // File to include with the question
	ConfigKey  string
	ConfigVal  string
	Subcommand string
	NoMarkdown bool // Disable markdown rendering of replies
	MaxIter    int  // Cap on tool-calling rounds (0 = use config)

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `finsight - conversational financial analysis in your terminal

FinSight is a local-first financial assistant. It talks to an Ollama
server on your machine, and the model calls finsight's financial
calculation tools (return on equity, income statement analysis) to
ground its answers in real arithmetic.

Usage:
  finsight                    Start interactive chat (default)
  finsight chat               Start interactive chat
  finsight ask "question"     Ask a single question
  finsight status, s          Show Ollama, model, and storage status
  finsight config <action>    Configuration (get|set|list|path|reset)
  finsight sessions <action>  Saved conversations (list|show|export|delete|search|stats)
  finsight version            Show version information
  finsight help               Show this help

Ask Command:
  finsight ask "What does a debt ratio of 0.8 mean?"
  finsight ask "Analyze this:" --file q3_income.txt
                                     Include a file with the question
  finsight ask "..." -m llama3.1:8b  Override the model
  finsight ask "..." --max-iter 5    Cap tool-calling rounds
  finsight ask "..." --no-markdown   Plain text output
  cat notes.txt | finsight ask       Read the question from stdin

Chat Commands (inside the REPL):
  /help       Show available commands
  /clear      Clear conversation history
  /compact    Summarize older messages to free context
  /model      Show or switch the model (/model llama3.1:8b)
  /status     Show session status
  /history    Show conversation history
  /save       Save the conversation
  /sessions   List saved conversations
  /load <n>   Load a saved conversation by index or ID
  /quit       Exit (also: exit, quit, Ctrl-D)

Config Commands:
  finsight config list               Show all configuration values
  finsight config get ollama.model   Show a single value
  finsight config set ollama.model llama3.1:8b
  finsight config set chat.max_iterations 5
  finsight config path               Show the config file path
  finsight config reset --confirm    Restore defaults

Session Commands:
  finsight sessions list             List saved conversations
  finsight sessions show 1           Show a conversation (index or ID)
  finsight sessions export 1 --format md
                                     Export (formats: json, md, txt)
  finsight sessions search "cash flow"
                                     Search titles and message bodies
  finsight sessions delete 1 --confirm
  finsight sessions delete-all --confirm
  finsight sessions stats            Storage statistics

Global Flags:
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --model NAME    Override the configured model
  --json          Machine-readable JSON output

Environment:
  FINSIGHT_MODEL           Overrides the configured model
  FINSIGHT_OLLAMA_URL      Overrides the Ollama server URL
  FINSIGHT_SYSTEM_PROMPT   Overrides the system prompt

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("finsight version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(args)

	// No arguments: the chat REPL is the default experience
	if len(remaining) == 0 {
		return CmdChat, parsedArgs
	}

	// Check first argument for command
	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "chat", "repl":
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "config", "cfg":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "sessions", "session":
		// Detailed argument parsing is done in session_cmd.go HandleSessions
		parseSessionArgs(&parsedArgs, remaining)
		return CmdSessions, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: keep it for the error message and suggestion
		parsedArgs.Subcommand = cmd
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--no-markdown":
			parsedArgs.NoMarkdown = true
		case "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		default:
			// Check for --model=value format
			if strings.HasPrefix(arg, "--model=") {
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		case "--no-markdown":
			args.NoMarkdown = true
		case "--max-iter":
			if i+1 < len(remaining) {
				i++
				if n, err := strconv.Atoi(remaining[i]); err == nil && n > 0 {
					args.MaxIter = n
				}
			}
		default:
			// Check for --file=value or --model=value format
			if strings.HasPrefix(arg, "--file=") {
				args.File = strings.TrimPrefix(arg, "--file=")
			} else if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			} else if strings.HasPrefix(arg, "--max-iter=") {
				if n, err := strconv.Atoi(strings.TrimPrefix(arg, "--max-iter=")); err == nil && n > 0 {
					args.MaxIter = n
				}
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		case "--no-markdown":
			args.NoMarkdown = true
		default:
			if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			}
		}
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	// Skip flags when picking out subcommand, key, and value
	var positional []string
	for _, arg := range remaining {
		if !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
		}
	}

	if len(positional) > 0 {
		args.Subcommand = positional[0]
	}
	if len(positional) > 1 {
		args.ConfigKey = positional[1]
	}
	if len(positional) > 2 {
		args.ConfigVal = strings.Join(positional[2:], " ")
	}
}

// parseSessionArgs parses sessions command specific arguments.
// Detailed argument parsing is done in session_cmd.go.
func parseSessionArgs(args *Args, remaining []string) {
	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		args.Subcommand = remaining[0]
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		resp := NewJSONResponse("version", data)
		resp.Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}

// HandleUnknown reports an unrecognized command, suggesting a close match
// when one exists.
func HandleUnknown(args Args) error {
	reason := "unknown command"
	if suggestion := SuggestCommand(args.Subcommand); suggestion != "" {
		reason += fmt.Sprintf("; did you mean 'finsight %s'?", suggestion)
	}
	return NewValidationErrorWithExample("command", args.Subcommand, reason, "finsight help")
}
