// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution.
//
// This test file covers argument parsing, command dispatch, typo
// suggestions, and exit code mapping. These are the user-facing entry
// points that must work reliably.
package cli

import (
	"errors"
	"os"
	"testing"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"export", "--format", "md"},
			wantSub: "export",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("format") != "md" {
					t.Errorf("Flag(format) = %q, want %q", p.Flag("format"), "md")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"export", "--format=json"},
			wantSub: "export",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("format") != "json" {
					t.Errorf("Flag(format) = %q, want %q", p.Flag("format"), "json")
				}
			},
		},
		{
			name:    "boolean flag",
			args:    []string{"show", "--json"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be true")
				}
			},
		},
		{
			name:    "multiple positional args",
			args:    []string{"search", "dividend", "yield", "analysis"},
			wantSub: "search",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 4 {
					t.Errorf("PositionalCount() = %d, want 4", p.PositionalCount())
				}
				joined := JoinPositionalArgs(p, 1)
				if joined != "dividend yield analysis" {
					t.Errorf("JoinPositionalArgs(p, 1) = %q, want %q", joined, "dividend yield analysis")
				}
			},
		},
		{
			name:    "mixed flags and positional",
			args:    []string{"ask", "--model", "llama3.1:8b", "Explain", "ROE"},
			wantSub: "ask",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("model") != "llama3.1:8b" {
					t.Errorf("Flag(model) = %q, want %q", p.Flag("model"), "llama3.1:8b")
				}
				// Positional should be: ask, Explain, ROE
				if p.Positional(1) != "Explain" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "Explain")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		flagName   string
		defaultVal int
		want       int
	}{
		{
			name:       "flag present",
			args:       []string{"cmd", "--max-iter", "10"},
			flagName:   "max-iter",
			defaultVal: 5,
			want:       10,
		},
		{
			name:       "flag missing uses default",
			args:       []string{"cmd"},
			flagName:   "max-iter",
			defaultVal: 5,
			want:       5,
		},
		{
			name:       "invalid int uses default",
			args:       []string{"cmd", "--max-iter", "abc"},
			flagName:   "max-iter",
			defaultVal: 5,
			want:       5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			got := parser.FlagIntOrDefault(tt.flagName, tt.defaultVal)
			if got != tt.want {
				t.Errorf("FlagIntOrDefault(%q, %d) = %d, want %d", tt.flagName, tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestArgParser_HasFlag(t *testing.T) {
	parser := NewArgParser([]string{"cmd", "--verbose", "--format", "md"})

	if !parser.HasFlag("verbose") {
		t.Error("HasFlag(verbose) should be true")
	}
	if !parser.HasFlag("format") {
		t.Error("HasFlag(format) should be true")
	}
	if parser.HasFlag("nonexistent") {
		t.Error("HasFlag(nonexistent) should be false")
	}
}

// =============================================================================
// RAW FLAG HELPER TESTS
// =============================================================================

func TestRawHasFlag(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		flag string
		want bool
	}{
		{"flag present", []string{"delete", "3", "--confirm"}, "--confirm", true},
		{"flag absent", []string{"delete", "3"}, "--confirm", false},
		{"empty args", []string{}, "--confirm", false},
		{"prefix does not match", []string{"export", "--format=md"}, "--format", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rawHasFlag(tt.raw, tt.flag); got != tt.want {
				t.Errorf("rawHasFlag(%v, %q) = %v, want %v", tt.raw, tt.flag, got, tt.want)
			}
		})
	}
}

func TestRawFlagValue(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		flag string
		want string
	}{
		{"separate value", []string{"export", "--format", "md"}, "--format", "md"},
		{"equals value", []string{"export", "--format=json"}, "--format", "json"},
		{"flag absent", []string{"export"}, "--format", ""},
		{"flag at end without value", []string{"export", "--format"}, "--format", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rawFlagValue(tt.raw, tt.flag); got != tt.want {
				t.Errorf("rawFlagValue(%v, %q) = %q, want %q", tt.raw, tt.flag, got, tt.want)
			}
		})
	}
}

// =============================================================================
// COMMAND SUGGESTION TESTS
// =============================================================================

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"stauts", "status"},
		{"sesions", "sessions"},
		{"confg", "config"},
		{"chta", "chat"},
		{"verison", "version"},
		{"xyzzy", ""},    // Nothing close
		{"a", ""},        // Too short to suggest
		{"ask", ""},      // Exact match yields no suggestion
		{"sessions", ""}, // Exact match yields no suggestion
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SuggestCommand(tt.input); got != tt.want {
				t.Errorf("SuggestCommand(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// =============================================================================
// EXIT CODE TESTS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"validation error", NewValidationError("model", "", "model name is required"), ExitUsageError},
		{"not found error", NewNotFoundError("session", "42"), ExitNotFoundError},
		{"config error", errors.New("failed to save config: disk full"), ExitConfigError},
		{"network error", errors.New("Ollama is not running"), ExitNetworkError},
		{"timeout error", errors.New("request timed out after 30s"), ExitTimeoutError},
		{"plain not found", errors.New("model 'llama3:8b' not found"), ExitNotFoundError},
		{"general error", errors.New("something went wrong"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// =============================================================================
// PARSE BOOL STRING TESTS
// =============================================================================

func TestParseBoolString(t *testing.T) {
	trueValues := []string{"true", "TRUE", "True", "yes", "YES", "y", "Y", "1", "on", "ON"}
	falseValues := []string{"false", "FALSE", "False", "no", "NO", "n", "N", "0", "off", "OFF"}

	for _, v := range trueValues {
		t.Run("true_"+v, func(t *testing.T) {
			got, err := ParseBoolString(v)
			if err != nil {
				t.Errorf("ParseBoolString(%q) error = %v", v, err)
			}
			if !got {
				t.Errorf("ParseBoolString(%q) = false, want true", v)
			}
		})
	}

	for _, v := range falseValues {
		t.Run("false_"+v, func(t *testing.T) {
			got, err := ParseBoolString(v)
			if err != nil {
				t.Errorf("ParseBoolString(%q) error = %v", v, err)
			}
			if got {
				t.Errorf("ParseBoolString(%q) = true, want false", v)
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseBoolString("maybe")
		if err == nil {
			t.Error("ParseBoolString(maybe) should error")
		}
	})
}

// =============================================================================
// PARSE INT WITH VALIDATION TESTS
// =============================================================================

func TestParseIntWithValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		field   string
		want    int
		wantErr bool
	}{
		{"valid positive", "42", "count", 42, false},
		{"valid one", "1", "count", 1, false},
		{"zero is invalid", "0", "count", 0, true},
		{"negative is invalid", "-5", "count", 0, true},
		{"empty is invalid", "", "count", 0, true},
		{"non-numeric is invalid", "abc", "count", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIntWithValidation(tt.input, tt.field)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseIntWithValidation(%q, %q) error = %v, wantErr %v", tt.input, tt.field, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseIntWithValidation(%q, %q) = %d, want %d", tt.input, tt.field, got, tt.want)
			}
		})
	}
}

// =============================================================================
// SESSION ARG PARSING TESTS
// =============================================================================

func TestParseSessionCmdArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     Args
		validate func(*testing.T, SessionArgs)
	}{
		{
			name: "show with index",
			args: Args{Subcommand: "show", Raw: []string{"show", "3"}},
			validate: func(t *testing.T, sa SessionArgs) {
				if sa.SessionID != "3" {
					t.Errorf("SessionID = %q, want %q", sa.SessionID, "3")
				}
			},
		},
		{
			name: "export with format",
			args: Args{Subcommand: "export", Raw: []string{"export", "abc123", "--format", "md"}},
			validate: func(t *testing.T, sa SessionArgs) {
				if sa.SessionID != "abc123" {
					t.Errorf("SessionID = %q, want %q", sa.SessionID, "abc123")
				}
				if sa.Format != "md" {
					t.Errorf("Format = %q, want %q", sa.Format, "md")
				}
			},
		},
		{
			name: "export format equals form",
			args: Args{Subcommand: "export", Raw: []string{"export", "1", "--format=json"}},
			validate: func(t *testing.T, sa SessionArgs) {
				if sa.Format != "json" {
					t.Errorf("Format = %q, want %q", sa.Format, "json")
				}
			},
		},
		{
			name: "default format is txt",
			args: Args{Subcommand: "export", Raw: []string{"export", "1"}},
			validate: func(t *testing.T, sa SessionArgs) {
				if sa.Format != "txt" {
					t.Errorf("Format = %q, want %q", sa.Format, "txt")
				}
			},
		},
		{
			name: "search joins query words",
			args: Args{Subcommand: "search", Raw: []string{"search", "cash", "flow"}},
			validate: func(t *testing.T, sa SessionArgs) {
				if sa.Query != "cash flow" {
					t.Errorf("Query = %q, want %q", sa.Query, "cash flow")
				}
			},
		},
		{
			name: "delete with confirm",
			args: Args{Subcommand: "delete", Raw: []string{"delete", "2", "--confirm"}},
			validate: func(t *testing.T, sa SessionArgs) {
				if !sa.Confirm {
					t.Error("Confirm should be true")
				}
				if sa.SessionID != "2" {
					t.Errorf("SessionID = %q, want %q", sa.SessionID, "2")
				}
			},
		},
		{
			name: "json flag",
			args: Args{Subcommand: "stats", Raw: []string{"stats", "--json"}},
			validate: func(t *testing.T, sa SessionArgs) {
				if !sa.JSON {
					t.Error("JSON should be true")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sa := parseSessionCmdArgs(tt.args)
			if sa.Subcommand != tt.args.Subcommand {
				t.Errorf("Subcommand = %q, want %q", sa.Subcommand, tt.args.Subcommand)
			}
			if tt.validate != nil {
				tt.validate(t, sa)
			}
		})
	}
}

// =============================================================================
// INTEGRATION-STYLE TESTS (testing Parse() with os.Args simulation)
// =============================================================================

// TestParse_Integration tests the actual Parse() function by temporarily
// modifying os.Args. This is an integration test of the full CLI parsing.
func TestParse_Integration(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	tests := []struct {
		name        string
		args        []string
		wantCommand Command
		validate    func(*testing.T, Args)
	}{
		{
			name:        "no arguments defaults to chat",
			args:        []string{"finsight"},
			wantCommand: CmdChat,
		},
		{
			name:        "ask command",
			args:        []string{"finsight", "ask", "What", "is", "ROE?"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Query != "What is ROE?" {
					t.Errorf("Query = %q, want %q", a.Query, "What is ROE?")
				}
			},
		},
		{
			name:        "ask with model flag",
			args:        []string{"finsight", "ask", "--model", "llama3.1:8b", "Hello"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Model != "llama3.1:8b" {
					t.Errorf("Model = %q, want %q", a.Model, "llama3.1:8b")
				}
			},
		},
		{
			name:        "ask with file flag",
			args:        []string{"finsight", "ask", "Analyze", "this", "--file", "q3_income.txt"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.File != "q3_income.txt" {
					t.Errorf("File = %q, want %q", a.File, "q3_income.txt")
				}
				if a.Query != "Analyze this" {
					t.Errorf("Query = %q, want %q", a.Query, "Analyze this")
				}
			},
		},
		{
			name:        "ask with max-iter",
			args:        []string{"finsight", "ask", "--max-iter", "5", "Question"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.MaxIter != 5 {
					t.Errorf("MaxIter = %d, want 5", a.MaxIter)
				}
			},
		},
		{
			name:        "ask with quiet flag",
			args:        []string{"finsight", "ask", "-q", "Question"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if !a.Quiet {
					t.Error("Quiet should be true")
				}
			},
		},
		{
			name:        "ask with no-markdown",
			args:        []string{"finsight", "ask", "--no-markdown", "Question"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if !a.NoMarkdown {
					t.Error("NoMarkdown should be true")
				}
			},
		},
		{
			name:        "chat command",
			args:        []string{"finsight", "chat"},
			wantCommand: CmdChat,
		},
		{
			name:        "chat with model",
			args:        []string{"finsight", "chat", "--model", "llama3:8b"},
			wantCommand: CmdChat,
			validate: func(t *testing.T, a Args) {
				if a.Model != "llama3:8b" {
					t.Errorf("Model = %q, want %q", a.Model, "llama3:8b")
				}
			},
		},
		{
			name:        "repl alias",
			args:        []string{"finsight", "repl"},
			wantCommand: CmdChat,
		},
		{
			name:        "status command",
			args:        []string{"finsight", "status"},
			wantCommand: CmdStatus,
		},
		{
			name:        "status alias",
			args:        []string{"finsight", "s"},
			wantCommand: CmdStatus,
		},
		{
			name:        "status with json flag",
			args:        []string{"finsight", "--json", "status"},
			wantCommand: CmdStatus,
			validate: func(t *testing.T, a Args) {
				if !a.JSON {
					t.Error("JSON should be true")
				}
			},
		},
		{
			name:        "config show",
			args:        []string{"finsight", "config", "show"},
			wantCommand: CmdConfig,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "show" {
					t.Errorf("Subcommand = %q, want %q", a.Subcommand, "show")
				}
			},
		},
		{
			name:        "config set",
			args:        []string{"finsight", "config", "set", "ollama.model", "llama3.1:8b"},
			wantCommand: CmdConfig,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "set" {
					t.Errorf("Subcommand = %q, want %q", a.Subcommand, "set")
				}
				if a.ConfigKey != "ollama.model" {
					t.Errorf("ConfigKey = %q, want %q", a.ConfigKey, "ollama.model")
				}
				if a.ConfigVal != "llama3.1:8b" {
					t.Errorf("ConfigVal = %q, want %q", a.ConfigVal, "llama3.1:8b")
				}
			},
		},
		{
			name:        "sessions command",
			args:        []string{"finsight", "sessions"},
			wantCommand: CmdSessions,
		},
		{
			name:        "sessions show",
			args:        []string{"finsight", "sessions", "show", "3"},
			wantCommand: CmdSessions,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "show" {
					t.Errorf("Subcommand = %q, want %q", a.Subcommand, "show")
				}
			},
		},
		{
			name:        "session alias",
			args:        []string{"finsight", "session", "list"},
			wantCommand: CmdSessions,
		},
		{
			name:        "version command",
			args:        []string{"finsight", "version"},
			wantCommand: CmdVersion,
		},
		{
			name:        "version flag",
			args:        []string{"finsight", "--version"},
			wantCommand: CmdVersion,
		},
		{
			name:        "help command",
			args:        []string{"finsight", "help"},
			wantCommand: CmdHelp,
		},
		{
			name:        "unknown command",
			args:        []string{"finsight", "frobnicate"},
			wantCommand: CmdUnknown,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "frobnicate" {
					t.Errorf("Subcommand = %q, want %q", a.Subcommand, "frobnicate")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			cmd, args := Parse()

			if cmd != tt.wantCommand {
				t.Errorf("Command = %v, want %v", cmd, tt.wantCommand)
			}

			if tt.validate != nil {
				tt.validate(t, args)
			}
		})
	}
}

// =============================================================================
// EDGE CASES
// =============================================================================

func TestArgParser_EmptyArgs(t *testing.T) {
	parser := NewArgParser([]string{})
	if parser.Subcommand() != "" {
		t.Errorf("Subcommand() = %q, want empty", parser.Subcommand())
	}
	if parser.PositionalCount() != 0 {
		t.Errorf("PositionalCount() = %d, want 0", parser.PositionalCount())
	}
}

func TestArgParser_OnlyFlags(t *testing.T) {
	parser := NewArgParser([]string{"--verbose", "--json"})
	if parser.Subcommand() != "" {
		t.Errorf("Subcommand() = %q, want empty", parser.Subcommand())
	}
	if !parser.BoolFlag("verbose") {
		t.Error("BoolFlag(verbose) should be true")
	}
	if !parser.BoolFlag("json") {
		t.Error("BoolFlag(json) should be true")
	}
}

func TestArgParser_FlagOrDefault(t *testing.T) {
	parser := NewArgParser([]string{"cmd", "--present", "value"})

	if parser.FlagOrDefault("present", "default") != "value" {
		t.Error("FlagOrDefault should return actual value when present")
	}
	if parser.FlagOrDefault("missing", "default") != "default" {
		t.Error("FlagOrDefault should return default when missing")
	}
}

// =============================================================================
// BENCHMARKS
// =============================================================================

func BenchmarkArgParser_Simple(b *testing.B) {
	args := []string{"ask", "What is a good debt ratio?"}
	for i := 0; i < b.N; i++ {
		NewArgParser(args)
	}
}

func BenchmarkArgParser_Complex(b *testing.B) {
	args := []string{"ask", "--model", "llama3.1:8b", "--max-iter", "10", "-q", "Analyze quarterly revenue growth"}
	for i := 0; i < b.N; i++ {
		NewArgParser(args)
	}
}

func BenchmarkSuggestCommand(b *testing.B) {
	for i := 0; i < b.N; i++ {
		SuggestCommand("sesions")
	}
}
