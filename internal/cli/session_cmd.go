// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - Session management CLI commands for finsight.
//
// Provides listing, viewing, export, search, and deletion of saved chat
// sessions. Sessions are saved with /save during chat and live as JSON
// files under the conversations directory.
//
// Command: sessions [subcommand]
// Short:   Manage saved chat sessions
// Aliases: session
//
// Subcommands:
//   list (default)      List all saved sessions (aliases: ls, l)
//   show <id>           Show session details
//   export <id>         Export session transcript
//   search <query>      Find sessions by content
//   delete <id>         Delete a session
//   delete-all          Delete all sessions
//   stats               Show session statistics
//
// Examples:
//   finsight sessions                          List all sessions (default)
//   finsight sessions show 1                   Show first session details
//   finsight sessions show abc123              Show session by ID
//   finsight sessions export 1 --format json   Export as JSON
//   finsight sessions export 1 --format md     Export as Markdown
//   finsight sessions search dividend yield    Find sessions mentioning a topic
//   finsight sessions delete 1 --confirm       Delete first session
//   finsight sessions delete-all --confirm     Delete all sessions
//   finsight sessions stats                    Show statistics
//
// Flags:
//   --format FORMAT     Export format: json, md, txt (default: txt)
//   --confirm           Required for delete operations
//   --json              Output in JSON format

package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/finsight/internal/storage"
	"github.com/jeranaias/finsight/internal/util"
)

// =============================================================================
// SESSION COMMAND HANDLER
// =============================================================================

// SessionArgs holds parsed session command arguments.
type SessionArgs struct {
	Subcommand string   // list, show, export, search, delete, delete-all, stats
	SessionID  string   // Session ID or 1-based index for show, export, delete
	Query      string   // Search query (all positional args joined)
	Format     string   // Export format: json, md, txt
	Confirm    bool     // Confirmation flag for delete operations
	JSON       bool     // Output in JSON format
	Raw        []string // Raw remaining arguments
}

// HandleSessions handles the "sessions" command with various subcommands.
func HandleSessions(args Args) error {
	sessionArgs := parseSessionCmdArgs(args)

	switch sessionArgs.Subcommand {
	case "", "list", "ls", "l":
		return handleSessionList(sessionArgs)
	case "show":
		return handleSessionShow(sessionArgs)
	case "export":
		return handleSessionExport(sessionArgs)
	case "search":
		return handleSessionSearch(sessionArgs)
	case "delete":
		return handleSessionDelete(sessionArgs)
	case "delete-all":
		return handleSessionDeleteAll(sessionArgs)
	case "stats":
		return handleSessionStats(sessionArgs)
	default:
		return NewValidationErrorWithExample("sessions subcommand", sessionArgs.Subcommand,
			"unknown subcommand", "finsight sessions [list|show|export|search|delete|delete-all|stats]")
	}
}

// parseSessionCmdArgs parses detailed session command arguments from the Args struct.
func parseSessionCmdArgs(args Args) SessionArgs {
	sessionArgs := SessionArgs{
		Subcommand: args.Subcommand,
		Format:     "txt", // Default export format
		Raw:        args.Raw,
		JSON:       args.JSON, // Inherit global JSON flag
	}

	seenSubcommand := false
	var positional []string

	for i := 0; i < len(args.Raw); i++ {
		arg := args.Raw[i]

		switch {
		case arg == "--format":
			if i+1 < len(args.Raw) {
				i++
				sessionArgs.Format = strings.ToLower(args.Raw[i])
			}
		case strings.HasPrefix(arg, "--format="):
			sessionArgs.Format = strings.ToLower(strings.TrimPrefix(arg, "--format="))
		case arg == "--confirm":
			sessionArgs.Confirm = true
		case arg == "--json":
			sessionArgs.JSON = true
		case strings.HasPrefix(arg, "-"):
			// Other flags are handled by global parsing
		default:
			// The subcommand token itself is not a positional argument
			if !seenSubcommand && arg == sessionArgs.Subcommand {
				seenSubcommand = true
				continue
			}
			positional = append(positional, arg)
		}
	}

	if len(positional) > 0 {
		sessionArgs.SessionID = positional[0]
		sessionArgs.Query = strings.Join(positional, " ")
	}

	return sessionArgs
}

// =============================================================================
// SESSION LIST
// =============================================================================

// SessionListOutput is the JSON output format for session list.
type SessionListOutput struct {
	Sessions []SessionInfo `json:"sessions"`
	Count    int           `json:"count"`
}

// SessionInfo is the JSON output format for a single session.
type SessionInfo struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	Model        string    `json:"model"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Preview      string    `json:"preview,omitempty"`
}

// handleSessionList lists all saved sessions.
func handleSessionList(args SessionArgs) error {
	store, err := storage.NewConversationStore()
	if err != nil {
		return fmt.Errorf("failed to initialize session storage: %w", err)
	}

	sessions, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if args.JSON {
		return NewJSONResponse("sessions list", sessionListOutput(sessions)).Print()
	}

	return outputSessionListText(sessions)
}

// sessionListOutput converts session metadata into the JSON output shape.
func sessionListOutput(sessions []storage.ConversationMeta) SessionListOutput {
	output := SessionListOutput{
		Sessions: make([]SessionInfo, 0, len(sessions)),
		Count:    len(sessions),
	}

	for _, s := range sessions {
		output.Sessions = append(output.Sessions, SessionInfo{
			ID:           s.ID,
			Summary:      s.Summary,
			Model:        s.Model,
			MessageCount: s.MessageCount,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
			Preview:      s.Preview,
		})
	}

	return output
}

// outputSessionListText outputs sessions in human-readable format.
func outputSessionListText(sessions []storage.ConversationMeta) error {
	if len(sessions) == 0 {
		fmt.Println()
		fmt.Println("No saved sessions found.")
		fmt.Println()
		fmt.Println("Sessions are saved with /save during chat.")
		fmt.Println()
		return nil
	}

	fmt.Println()
	fmt.Println("Saved Sessions")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	// Table header
	fmt.Printf("%-4s %-20s %-20s %-6s %-12s\n", "ID", "Summary", "Model", "Msgs", "Updated")
	fmt.Println(strings.Repeat("-", 60))

	for i, s := range sessions {
		// Rune-aware truncation preserves multi-byte characters
		summary := util.TruncateRunes(s.Summary, 18)
		model := util.TruncateRunes(s.Model, 18)

		// Format update time
		updated := formatTimeAgo(s.UpdatedAt)
		if len(updated) > 10 {
			updated = s.UpdatedAt.Format("01/02")
		}

		fmt.Printf("%-4d %-20s %-20s %-6d %-12s\n",
			i+1,
			summary,
			model,
			s.MessageCount,
			updated,
		)
	}

	fmt.Println()
	fmt.Printf("Total: %d session(s)\n", len(sessions))
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  finsight sessions show <id>              View session details")
	fmt.Println("  finsight sessions export <id> --format   Export transcript (json|md|txt)")
	fmt.Println("  finsight sessions delete <id> --confirm  Delete session")
	fmt.Println()

	return nil
}

// =============================================================================
// SESSION SHOW
// =============================================================================

// handleSessionShow shows details of a specific session.
func handleSessionShow(args SessionArgs) error {
	if args.SessionID == "" {
		return ErrMissingArgument("session ID", "finsight sessions show <id>")
	}

	store, err := storage.NewConversationStore()
	if err != nil {
		return fmt.Errorf("failed to initialize session storage: %w", err)
	}

	conv, err := loadSessionByIDOrIndex(store, args.SessionID)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("sessions show", conv).Print()
	}

	return outputSessionShowText(conv)
}

// outputSessionShowText outputs session details in human-readable format.
func outputSessionShowText(conv *storage.StoredConversation) error {
	fmt.Println()
	fmt.Printf("Session: %s\n", conv.Summary)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	fmt.Printf("ID:           %s\n", conv.ID)
	fmt.Printf("Model:        %s\n", conv.Model)
	fmt.Printf("Messages:     %d\n", len(conv.Messages))
	fmt.Printf("Created:      %s\n", conv.CreatedAt.Format(time.RFC1123))
	fmt.Printf("Updated:      %s\n", conv.UpdatedAt.Format(time.RFC1123))
	if conv.TokensUsed > 0 {
		fmt.Printf("Tokens Used:  %d\n", conv.TokensUsed)
	}
	fmt.Println()

	// Show message preview
	fmt.Println("Messages:")
	fmt.Println(strings.Repeat("-", 60))

	for i, msg := range conv.Messages {
		role := strings.ToUpper(msg.Role)

		// Truncate long content for single-line preview
		content := util.TruncateRunes(msg.Content, 100)
		content = strings.ReplaceAll(content, "\n", " ")

		fmt.Printf("[%d] %s: %s\n", i+1, role, content)
	}

	fmt.Println()
	fmt.Printf("Use 'finsight sessions export %s' to export the full transcript.\n", conv.ID)
	fmt.Println()

	return nil
}

// =============================================================================
// SESSION EXPORT
// =============================================================================

// handleSessionExport exports a session transcript to stdout.
func handleSessionExport(args SessionArgs) error {
	if args.SessionID == "" {
		return ErrMissingArgument("session ID", "finsight sessions export <id> [--format json|md|txt]")
	}

	// Validate format
	validFormats := map[string]bool{"json": true, "md": true, "txt": true}
	if !validFormats[args.Format] {
		return ErrUnsupportedFormat(args.Format, []string{"json", "md", "txt"})
	}

	store, err := storage.NewConversationStore()
	if err != nil {
		return fmt.Errorf("failed to initialize session storage: %w", err)
	}

	conv, err := loadSessionByIDOrIndex(store, args.SessionID)
	if err != nil {
		return err
	}

	switch args.Format {
	case "json":
		data, err := conv.ExportJSON()
		if err != nil {
			return fmt.Errorf("failed to export session: %w", err)
		}
		fmt.Println(string(data))
		return nil
	case "md":
		fmt.Print(conv.ExportMarkdown())
		return nil
	default:
		return exportSessionText(conv)
	}
}

// exportSessionText exports session as plain text.
func exportSessionText(conv *storage.StoredConversation) error {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("Session: %s\n", conv.Summary))
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")
	sb.WriteString(fmt.Sprintf("ID:       %s\n", conv.ID))
	sb.WriteString(fmt.Sprintf("Model:    %s\n", conv.Model))
	sb.WriteString(fmt.Sprintf("Messages: %d\n", len(conv.Messages)))
	sb.WriteString(fmt.Sprintf("Created:  %s\n", conv.CreatedAt.Format(time.RFC1123)))
	sb.WriteString(fmt.Sprintf("Updated:  %s\n", conv.UpdatedAt.Format(time.RFC1123)))
	sb.WriteString("\n" + strings.Repeat("-", 60) + "\n\n")

	// Messages
	for i, msg := range conv.Messages {
		role := formatRole(msg.Role)
		sb.WriteString(fmt.Sprintf("[%d] %s:\n", i+1, role))

		// Tool results carry the tool name and outcome alongside the payload
		if msg.Role == "tool" && msg.ToolName != "" {
			sb.WriteString(fmt.Sprintf("    Tool: %s (%s)\n", msg.ToolName, statusText(msg.IsSuccess)))
			sb.WriteString("    Result:\n")
			for _, line := range strings.Split(msg.Content, "\n") {
				sb.WriteString("      " + line + "\n")
			}
		} else {
			sb.WriteString(msg.Content)
			sb.WriteString("\n")

			// Add statistics for assistant messages
			if msg.Role == "assistant" && msg.TokenCount > 0 {
				sb.WriteString(fmt.Sprintf("    (%d tokens | %.1f tok/s)\n",
					msg.TokenCount, msg.TokensPerSec))
			}
		}
		sb.WriteString("\n")
	}

	fmt.Print(sb.String())
	return nil
}

// =============================================================================
// SESSION SEARCH
// =============================================================================

// handleSessionSearch finds sessions whose summary, preview, or message
// content matches the query.
func handleSessionSearch(args SessionArgs) error {
	if args.Query == "" {
		return ErrMissingArgument("query", "finsight sessions search <query>")
	}

	store, err := storage.NewConversationStore()
	if err != nil {
		return fmt.Errorf("failed to initialize session storage: %w", err)
	}

	// Metadata matches first, then full message content; merged by ID
	metaHits, err := store.Search(args.Query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	contentHits, err := store.SearchMessages(args.Query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	seen := make(map[string]bool, len(metaHits))
	results := make([]storage.ConversationMeta, 0, len(metaHits)+len(contentHits))
	for _, m := range metaHits {
		seen[m.ID] = true
		results = append(results, m)
	}
	for _, m := range contentHits {
		if !seen[m.ID] {
			seen[m.ID] = true
			results = append(results, m)
		}
	}

	if args.JSON {
		return NewJSONResponse("sessions search", sessionListOutput(results)).Print()
	}

	if len(results) == 0 {
		fmt.Printf("No sessions matching %q.\n", args.Query)
		return nil
	}

	fmt.Printf("Found %d session(s) matching %q:\n\n", len(results), args.Query)
	fmt.Print(storage.FormatSessionList(results))
	return nil
}

// =============================================================================
// SESSION DELETE
// =============================================================================

// handleSessionDelete deletes a specific session.
func handleSessionDelete(args SessionArgs) error {
	if args.SessionID == "" {
		return ErrMissingArgument("session ID", "finsight sessions delete <id> --confirm")
	}

	store, err := storage.NewConversationStore()
	if err != nil {
		return fmt.Errorf("failed to initialize session storage: %w", err)
	}

	// Load session first to verify it exists and get metadata
	conv, err := loadSessionByIDOrIndex(store, args.SessionID)
	if err != nil {
		return err
	}

	confirmed, err := RequireConfirmationWithDetails(args.Confirm, "delete session",
		map[string]string{
			"Session":  conv.Summary,
			"ID":       conv.ID,
			"Messages": strconv.Itoa(len(conv.Messages)),
		}, args.JSON)
	if err != nil {
		return err
	}
	if !confirmed {
		ShowCancellationMessage()
		return nil
	}

	if err := store.Delete(conv.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if args.JSON {
		return NewJSONResponse("sessions delete", map[string]interface{}{
			"deleted":    true,
			"session_id": conv.ID,
			"summary":    conv.Summary,
		}).Print()
	}

	fmt.Println()
	fmt.Printf("Session deleted: %s\n", conv.Summary)
	fmt.Printf("ID: %s\n", conv.ID)
	fmt.Println()

	return nil
}

// =============================================================================
// SESSION DELETE-ALL
// =============================================================================

// handleSessionDeleteAll deletes all sessions.
func handleSessionDeleteAll(args SessionArgs) error {
	store, err := storage.NewConversationStore()
	if err != nil {
		return fmt.Errorf("failed to initialize session storage: %w", err)
	}

	// Get count before deletion
	sessions, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	count := len(sessions)
	if count == 0 {
		if args.JSON {
			return NewJSONResponse("sessions delete-all", map[string]interface{}{
				"deleted": 0,
			}).Print()
		}
		fmt.Println()
		fmt.Println("No sessions to delete.")
		fmt.Println()
		return nil
	}

	confirmed, err := RequireConfirmationWithDetails(args.Confirm, "delete all saved sessions",
		map[string]string{
			"Sessions": strconv.Itoa(count),
			"Location": store.BaseDir,
		}, args.JSON)
	if err != nil {
		return err
	}
	if !confirmed {
		ShowCancellationMessage()
		return nil
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to delete all sessions: %w", err)
	}

	if args.JSON {
		return NewJSONResponse("sessions delete-all", map[string]interface{}{
			"deleted": count,
		}).Print()
	}

	fmt.Println()
	fmt.Printf("Deleted %d session(s).\n", count)
	fmt.Println()

	return nil
}

// =============================================================================
// SESSION STATS
// =============================================================================

// SessionStatsOutput is the JSON output format for session stats.
type SessionStatsOutput struct {
	TotalSessions   int            `json:"total_sessions"`
	TotalMessages   int            `json:"total_messages"`
	AverageLength   float64        `json:"average_messages_per_session"`
	TotalTokens     int            `json:"total_tokens"`
	ToolMessages    int            `json:"tool_messages"`
	ModelsUsed      map[string]int `json:"models_used"`
	OldestSession   *time.Time     `json:"oldest_session,omitempty"`
	NewestSession   *time.Time     `json:"newest_session,omitempty"`
	StorageBytes    int64          `json:"storage_bytes"`
	StorageLocation string         `json:"storage_location"`
}

// handleSessionStats shows session statistics.
func handleSessionStats(args SessionArgs) error {
	store, err := storage.NewConversationStore()
	if err != nil {
		return fmt.Errorf("failed to initialize session storage: %w", err)
	}

	sessions, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	stats := calculateSessionStats(store, sessions)

	if args.JSON {
		return NewJSONResponse("sessions stats", stats).Print()
	}

	return outputSessionStatsText(stats)
}

// calculateSessionStats calculates statistics from sessions.
func calculateSessionStats(store *storage.ConversationStore, sessions []storage.ConversationMeta) SessionStatsOutput {
	stats := SessionStatsOutput{
		TotalSessions:   len(sessions),
		ModelsUsed:      make(map[string]int),
		StorageLocation: store.BaseDir,
	}

	if len(sessions) == 0 {
		return stats
	}

	// Track oldest and newest
	var oldest, newest time.Time

	for _, meta := range sessions {
		stats.TotalMessages += meta.MessageCount
		stats.ModelsUsed[meta.Model]++

		// Track time range
		if oldest.IsZero() || meta.CreatedAt.Before(oldest) {
			oldest = meta.CreatedAt
		}
		if newest.IsZero() || meta.UpdatedAt.After(newest) {
			newest = meta.UpdatedAt
		}

		// Load full conversation for token and tool counts
		conv, err := store.Load(meta.ID)
		if err == nil && conv != nil {
			stats.TotalTokens += conv.TokensUsed
			for _, msg := range conv.Messages {
				if msg.Role == "tool" {
					stats.ToolMessages++
				}
			}
		}
	}

	if stats.TotalSessions > 0 {
		stats.AverageLength = float64(stats.TotalMessages) / float64(stats.TotalSessions)
	}

	if !oldest.IsZero() {
		stats.OldestSession = &oldest
	}
	if !newest.IsZero() {
		stats.NewestSession = &newest
	}

	stats.StorageBytes = storageDirSize(store.BaseDir)

	return stats
}

// outputSessionStatsText outputs session stats in human-readable format.
func outputSessionStatsText(stats SessionStatsOutput) error {
	fmt.Println()
	fmt.Println("Session Statistics")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Println()

	fmt.Printf("Total Sessions:    %d\n", stats.TotalSessions)
	fmt.Printf("Total Messages:    %d\n", stats.TotalMessages)
	fmt.Printf("Average Length:    %.1f messages/session\n", stats.AverageLength)

	if stats.TotalTokens > 0 {
		fmt.Printf("Total Tokens:      %d\n", stats.TotalTokens)
	}
	if stats.ToolMessages > 0 {
		fmt.Printf("Tool Results:      %d\n", stats.ToolMessages)
	}

	fmt.Printf("Storage Used:      %s\n", formatBytes(stats.StorageBytes))
	fmt.Println()

	// Time range
	if stats.OldestSession != nil {
		fmt.Printf("First Session:     %s\n", stats.OldestSession.Format("2006-01-02 15:04"))
	}
	if stats.NewestSession != nil {
		fmt.Printf("Latest Activity:   %s\n", stats.NewestSession.Format("2006-01-02 15:04"))
	}
	fmt.Println()

	// Models used
	if len(stats.ModelsUsed) > 0 {
		fmt.Println("Models Used:")

		// Sort models by usage count
		type modelCount struct {
			model string
			count int
		}
		var models []modelCount
		for m, c := range stats.ModelsUsed {
			models = append(models, modelCount{m, c})
		}
		sort.Slice(models, func(i, j int) bool {
			return models[i].count > models[j].count
		})

		for _, mc := range models {
			fmt.Printf("  %-30s %d session(s)\n", mc.model, mc.count)
		}
		fmt.Println()
	}

	fmt.Printf("Storage Location:  %s\n", stats.StorageLocation)
	fmt.Println()

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadSessionByIDOrIndex loads a session by ID or 1-based numeric index.
func loadSessionByIDOrIndex(store *storage.ConversationStore, idOrIndex string) (*storage.StoredConversation, error) {
	// Try parsing as index first
	if idx, err := strconv.Atoi(idOrIndex); err == nil {
		// Load by index (1-based for user friendliness)
		conv, err := store.LoadByIndex(idx - 1)
		if err != nil {
			return nil, NewNotFoundError("session", fmt.Sprintf("#%d", idx))
		}
		return conv, nil
	}

	// Load by ID
	conv, err := store.Load(idOrIndex)
	if err != nil {
		return nil, NewNotFoundError("session", idOrIndex)
	}
	return conv, nil
}

// formatRole formats a message role for display.
func formatRole(role string) string {
	switch role {
	case "user":
		return "User"
	case "assistant":
		return "Assistant"
	case "system":
		return "System"
	case "tool":
		return "Tool"
	default:
		return role
	}
}

// statusText returns success/failure text.
func statusText(success bool) string {
	if success {
		return "Success"
	}
	return "Failed"
}
