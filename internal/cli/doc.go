// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for finsight.
//
// This package implements all CLI commands for the finsight financial
// assistant, covering both the interactive chat REPL and the one-shot
// non-interactive modes used in scripts and pipelines.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - JSONResponse: Standard envelope for --json output
//
// # Usage
//
// Parse and execute commands:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    return cli.HandleAskCommand(args)
//	case cli.CmdChat:
//	    return cli.HandleChatCommand(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - chat: Interactive chat session (default when run with no arguments)
//   - ask: Single question query, suitable for scripting
//   - status: Ollama, model, and storage status display
//   - config: Configuration management (show, get, set, list, path, reset)
//   - sessions: Saved session management (list, show, export, search, delete, stats)
//   - version: Version information
//
// All commands support a --json flag for machine-readable output.
package cli
