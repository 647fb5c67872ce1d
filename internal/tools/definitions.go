// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the financial calculation tools exposed to the model.
package tools

import (
	"context"
	"sync"
)

// =============================================================================
// TOOL DEFINITIONS
// =============================================================================

// Parameter defines a single parameter in a tool's schema.
type Parameter struct {
	// Name is the parameter name as it appears in tool call arguments
	Name string

	// Type is the JSON Schema type: "number", "string", "boolean"
	Type string

	// Required indicates whether the model must supply this parameter
	Required bool

	// Description explains the parameter to the model
	Description string

	// Default is the value applied when an optional parameter is omitted.
	// It is also advertised in the schema so the model knows the fallback.
	Default interface{}

	// Enum restricts string parameters to a fixed set of values
	Enum []string
}

// Schema describes the parameters a tool accepts.
type Schema struct {
	Parameters []Parameter
}

// ToolExecutor is implemented by tool backends.
//
// Execute receives the raw arguments from the model's tool call and returns
// a result payload. Validation failures and domain errors are returned as
// errors; the Executor converts them into recoverable error payloads so a
// bad argument never crashes the conversation loop.
type ToolExecutor interface {
	Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)
}

// Tool is a named, schema-described computation the model can invoke.
type Tool struct {
	// Name is the unique tool identifier sent to the model
	Name string

	// Description explains to the model what the tool computes
	Description string

	// Schema describes the accepted parameters
	Schema Schema

	// Executor performs the actual computation
	Executor ToolExecutor
}

// =============================================================================
// TOOL REGISTRY
// =============================================================================

// Registry holds the available tools and preserves registration order.
// The order matters: schemas are advertised to the model in the same
// sequence the tools were registered.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	names []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
	}
}

// NewDefaultRegistry creates a registry with the built-in finance tools.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ROETool())
	r.Register(IncomeStatementTool())
	return r
}

// Register adds a tool to the registry. Registering a name twice replaces
// the earlier definition but keeps its original position in the catalog.
func (r *Registry) Register(tool *Tool) {
	if tool == nil || tool.Name == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; !exists {
		r.names = append(r.names, tool.Name)
	}
	r.tools[tool.Name] = tool
}

// Get returns the tool with the given name, or false if not registered.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// All returns the registered tools in registration order.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Tool, 0, len(r.names))
	for _, name := range r.names {
		result = append(result, r.tools[name])
	}
	return result
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
