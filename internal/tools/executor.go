// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the financial calculation tools exposed to the model.
// executor.go dispatches model-requested tool calls and keeps an audit history.
package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError reports an invalid or missing tool argument.
type ValidationError struct {
	// Param is the offending parameter name
	Param string

	// Message is the human-readable description
	Message string
}

// Error returns the validation error message.
func (e *ValidationError) Error() string {
	return e.Message
}

// =============================================================================
// EXECUTION RECORDS
// =============================================================================

// ExecutionRecord captures a single tool execution for the audit history.
type ExecutionRecord struct {
	// ID uniquely identifies this execution
	ID string

	// ToolName is the tool that was invoked
	ToolName string

	// Args are the arguments the model supplied
	Args map[string]interface{}

	// Result is the payload returned to the model
	Result map[string]interface{}

	// Success is false when the payload carries an error
	Success bool

	// Timestamp is when execution started
	Timestamp time.Time

	// Duration is how long execution took
	Duration time.Duration
}

// ExecutionStats aggregates the execution history.
type ExecutionStats struct {
	TotalExecutions int
	Successful      int
	Failed          int
	TotalDuration   time.Duration
	ByTool          map[string]int
}

// maxHistorySize caps the audit history length. Oldest records are dropped
// first once the cap is reached.
const maxHistorySize = 1000

// =============================================================================
// EXECUTOR
// =============================================================================

// Executor runs tool calls against a registry and records every execution.
//
// Execute never returns an error: every failure mode (unknown tool, bad
// arguments, panicking tool) is converted into a payload with an "error"
// key, which is serialized back to the model as an ordinary tool result.
// The model can then recover by correcting its call or explaining the
// problem to the user.
type Executor struct {
	registry *Registry

	mu      sync.Mutex
	history []ExecutionRecord
}

// NewExecutor creates an executor backed by the given registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry: registry,
		history:  make([]ExecutionRecord, 0),
	}
}

// Registry returns the registry this executor dispatches against.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs the named tool with the given arguments and returns the
// result payload. The returned map is never nil.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]interface{}) map[string]interface{} {
	start := time.Now()

	tool, ok := e.registry.Get(name)
	if !ok {
		payload := map[string]interface{}{
			"error": "unknown tool: " + name,
		}
		e.record(name, args, payload, false, start)
		return payload
	}

	payload, err := runTool(ctx, tool, args)
	success := err == nil
	if err != nil {
		payload = map[string]interface{}{
			"error": name + ": " + err.Error(),
		}
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}

	e.record(name, args, payload, success, start)
	return payload
}

// runTool invokes the tool's executor, converting panics into errors so a
// buggy tool cannot crash the conversation loop.
func runTool(ctx context.Context, tool *Tool, args map[string]interface{}) (payload map[string]interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return tool.Executor.Execute(ctx, args)
}

// record appends an execution record, trimming the oldest entries when the
// history exceeds maxHistorySize.
func (e *Executor) record(name string, args, result map[string]interface{}, success bool, start time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, ExecutionRecord{
		ID:        uuid.NewString(),
		ToolName:  name,
		Args:      args,
		Result:    result,
		Success:   success,
		Timestamp: start,
		Duration:  time.Since(start),
	})

	if len(e.history) > maxHistorySize {
		e.history = e.history[len(e.history)-maxHistorySize:]
	}
}

// History returns a copy of the execution history, oldest first.
func (e *Executor) History() []ExecutionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]ExecutionRecord, len(e.history))
	copy(result, e.history)
	return result
}

// ClearHistory discards all execution records.
func (e *Executor) ClearHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = e.history[:0]
}

// Stats aggregates the execution history.
func (e *Executor) Stats() ExecutionStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := ExecutionStats{
		ByTool: make(map[string]int),
	}
	for _, rec := range e.history {
		stats.TotalExecutions++
		if rec.Success {
			stats.Successful++
		} else {
			stats.Failed++
		}
		stats.TotalDuration += rec.Duration
		stats.ByTool[rec.ToolName]++
	}
	return stats
}
