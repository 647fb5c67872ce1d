// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the financial calculation tools exposed to the model.
// ollama.go converts tool definitions to the Ollama API wire format.
package tools

import (
	"github.com/jeranaias/finsight/internal/ollama"
)

// ToOllamaTools converts the registry's tools to Ollama API format,
// in registration order.
func (r *Registry) ToOllamaTools() []ollama.Tool {
	tools := r.All()
	result := make([]ollama.Tool, 0, len(tools))

	for _, tool := range tools {
		result = append(result, ToolToOllama(tool))
	}

	return result
}

// ToolToOllama converts a single Tool to Ollama API format.
// The conversion follows the JSON Schema format expected by Ollama's
// tool calling API:
//
//	{
//	  "type": "function",
//	  "function": {
//	    "name": "calculate_roe",
//	    "description": "What the tool computes",
//	    "parameters": {
//	      "type": "object",
//	      "properties": {
//	        "net_income": {"type": "number", "description": "..."}
//	      },
//	      "required": ["net_income"]
//	    }
//	  }
//	}
func ToolToOllama(tool *Tool) ollama.Tool {
	properties := make(map[string]ollama.ToolProperty)
	var required []string

	for _, param := range tool.Schema.Parameters {
		prop := ollama.ToolProperty{
			Type:        param.Type,
			Description: param.Description,
		}

		// Advertising defaults helps models fill optional parameters sensibly
		if param.Default != nil {
			prop.Default = param.Default
		}

		if len(param.Enum) > 0 {
			prop.Enum = param.Enum
		}

		properties[param.Name] = prop

		if param.Required {
			required = append(required, param.Name)
		}
	}

	return ollama.Tool{
		Type: "function",
		Function: ollama.ToolSchema{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: ollama.ToolParameters{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		},
	}
}
