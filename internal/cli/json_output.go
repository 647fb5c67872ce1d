// json_output.go - JSON output support for scripting and automation.
//
// Provides a standardized JSON output format for all CLI commands so
// finsight can be driven from scripts and pipelines.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Error:     nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
// Human-readable messages should go to stderr when JSON mode is enabled.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// StatusData represents the data returned by the status command.
type StatusData struct {
	Ollama  StatusOllamaInfo  `json:"ollama"`
	Model   StatusModelInfo   `json:"model"`
	Storage StatusStorageInfo `json:"storage"`
	Config  StatusConfigInfo  `json:"config"`
}

// StatusOllamaInfo describes the Ollama server connection.
type StatusOllamaInfo struct {
	URL        string `json:"url"`
	Running    bool   `json:"running"`
	Version    string `json:"version,omitempty"`
	ModelCount int    `json:"model_count"`
}

// StatusModelInfo describes the configured chat model.
type StatusModelInfo struct {
	Configured string `json:"configured"`
	Available  bool   `json:"available"`
	SizeBytes  int64  `json:"size_bytes,omitempty"`
}

// StatusStorageInfo describes conversation storage.
type StatusStorageInfo struct {
	Enabled   bool   `json:"enabled"`
	Location  string `json:"location"`
	Sessions  int    `json:"sessions"`
	SizeBytes int64  `json:"size_bytes"`
}

// StatusConfigInfo summarizes the loaded configuration.
type StatusConfigInfo struct {
	Path          string `json:"path"`
	MaxIterations int    `json:"max_iterations"`
	KeepRecent    int    `json:"keep_recent"`
}

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// AskData represents the data returned by the ask command.
type AskData struct {
	Response     string  `json:"response"`
	Model        string  `json:"model"`
	ToolCalls    int     `json:"tool_calls"`
	OutputTokens int     `json:"output_tokens"`
	DurationMs   int64   `json:"duration_ms"`
	TokensPerSec float64 `json:"tokens_per_sec"`
}
