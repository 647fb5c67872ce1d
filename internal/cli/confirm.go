// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Unified confirmation handling for all CLI commands in finsight.
//
// Every destructive command follows a single pattern:
//  1. If --confirm flag is present, proceed without prompting
//  2. If --json mode, require --confirm flag (no interactive prompts in JSON mode)
//  3. If stdin is not a TTY, require --confirm flag (can't prompt)
//  4. Otherwise, show interactive prompt for confirmation

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// =============================================================================
// UNIFIED CONFIRMATION HANDLING
// =============================================================================

// RequireConfirmation checks if the user has confirmed a destructive action.
// It implements a consistent confirmation pattern across all CLI commands.
//
// Parameters:
//
//	confirmFlag - true if --confirm flag was passed
//	action      - description of the action (e.g., "delete all sessions")
//	jsonMode    - true if --json flag was passed
//
// Returns:
//
//	bool  - true if confirmed, false if cancelled
//	error - non-nil if confirmation is required but not provided
//
// Example:
//
//	confirmed, err := RequireConfirmation(confirmFlag, "delete all sessions", jsonMode)
//	if err != nil {
//	    return err  // JSON mode without --confirm
//	}
//	if !confirmed {
//	    ShowCancellationMessage()
//	    return nil
//	}
//	// Proceed with destructive action
func RequireConfirmation(confirmFlag bool, action string, jsonMode bool) (bool, error) {
	// If --confirm flag is present, proceed without prompting
	if confirmFlag {
		return true, nil
	}

	// In JSON mode, --confirm flag is required (no interactive prompts)
	if jsonMode {
		return false, fmt.Errorf("confirmation required: use --confirm flag for destructive actions in JSON mode")
	}

	// Can't prompt if stdin is not a TTY (e.g., piped input, cron jobs, CI/CD)
	if !IsTTY() {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; use --confirm flag")
	}

	// Show interactive prompt
	fmt.Println()
	fmt.Printf("Are you sure you want to %s? [y/N]: ", action)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	// Parse response
	response := strings.ToLower(strings.TrimSpace(input))
	confirmed := response == "y" || response == "yes"

	return confirmed, nil
}

// RequireConfirmationWithDetails is like RequireConfirmation but shows
// additional details before prompting.
//
// Parameters:
//
//	confirmFlag - true if --confirm flag was passed
//	action      - description of the action (e.g., "delete session")
//	details     - map of detail labels to values (e.g., {"Session ID": "abc123"})
//	jsonMode    - true if --json flag was passed
//
// Example:
//
//	details := map[string]string{
//	    "Session ID": session.ID,
//	    "Created":    session.CreatedAt.String(),
//	}
//	confirmed, err := RequireConfirmationWithDetails(confirmFlag, "delete this session", details, jsonMode)
func RequireConfirmationWithDetails(confirmFlag bool, action string, details map[string]string, jsonMode bool) (bool, error) {
	// If --confirm flag is present, proceed without prompting
	if confirmFlag {
		return true, nil
	}

	// In JSON mode, --confirm flag is required
	if jsonMode {
		return false, fmt.Errorf("confirmation required: use --confirm flag for destructive actions in JSON mode")
	}

	// Can't prompt if stdin is not a TTY (e.g., piped input, cron jobs, CI/CD)
	if !IsTTY() {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; use --confirm flag")
	}

	// Show details
	fmt.Println()
	fmt.Println(WarningStyle.Render("WARNING: Destructive Action"))
	fmt.Println(RenderSeparator(50))
	fmt.Println()

	// Display details in consistent format
	for label, value := range details {
		fmt.Printf("  %s%s\n", RenderLabel(label+":", 20), value)
	}

	fmt.Println()
	fmt.Println(ErrorStyle.Render("This action cannot be undone."))
	fmt.Println()
	fmt.Printf("Are you sure you want to %s? [y/N]: ", action)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	// Parse response
	response := strings.ToLower(strings.TrimSpace(input))
	confirmed := response == "y" || response == "yes"

	return confirmed, nil
}

// =============================================================================
// HELPER FUNCTIONS FOR COMMON CONFIRMATION PATTERNS
// =============================================================================

// ShowCancellationMessage displays a standard cancellation message.
// Use this after RequireConfirmation returns false.
func ShowCancellationMessage() {
	fmt.Println()
	fmt.Println(DimStyle.Render("Cancelled."))
	fmt.Println()
}
