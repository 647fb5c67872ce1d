// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant implements the tool-calling conversation loop.
package assistant

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/finsight/internal/model"
	"github.com/jeranaias/finsight/internal/ollama"
	"github.com/jeranaias/finsight/internal/tools"
)

// DefaultMaxToolRounds caps how many tool rounds a single user turn may
// trigger before the loop gives up.
const DefaultMaxToolRounds = 10

// AdvisoryMaxIterations is returned when a turn exhausts the tool round cap.
const AdvisoryMaxIterations = "Maximum tool iterations reached. Please try simplifying your question."

// errorReplyPrefix introduces the user-visible text for a failed model call.
const errorReplyPrefix = "Sorry, an error occurred while processing your request: "

// ChatFunc invokes the model with the full message history and tool catalog.
// It is the seam between the loop and the model-serving boundary.
type ChatFunc func(ctx context.Context, messages []ollama.Message, tools []ollama.Tool) (*ollama.ChatResponse, error)

// Options configures an Assistant.
type Options struct {
	// MaxToolRounds overrides DefaultMaxToolRounds when positive
	MaxToolRounds int

	// ChatFunc overrides the model boundary. Defaults to the client's
	// tool-calling chat endpoint. Mainly for tests and embedding.
	ChatFunc ChatFunc

	// ErrLog receives loop-boundary failure logs. Defaults to stderr.
	ErrLog io.Writer
}

// Assistant owns one conversation and drives the tool-calling loop for it.
//
// The loop is strictly sequential: each model invocation and each tool
// execution runs to completion before the next step begins, because later
// tool results may be referenced by the model in forming its next request.
// An Assistant must not be shared across concurrent callers.
type Assistant struct {
	client   *ollama.Client
	chatFn   ChatFunc
	conv     *model.Conversation
	registry *tools.Registry
	executor *tools.Executor

	maxRounds int
	errLog    io.Writer

	onToolCall   func(name string, args map[string]interface{})
	onToolResult func(name string, payload map[string]interface{})
}

// New creates an Assistant for the given conversation and tool registry.
// client may be nil when Options.ChatFunc supplies the model boundary.
func New(client *ollama.Client, conv *model.Conversation, registry *tools.Registry, opts Options) *Assistant {
	maxRounds := opts.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}

	errLog := opts.ErrLog
	if errLog == nil {
		errLog = os.Stderr
	}

	a := &Assistant{
		client:    client,
		conv:      conv,
		registry:  registry,
		executor:  tools.NewExecutor(registry),
		maxRounds: maxRounds,
		errLog:    errLog,
	}

	if opts.ChatFunc != nil {
		a.chatFn = opts.ChatFunc
	} else {
		a.chatFn = func(ctx context.Context, messages []ollama.Message, catalog []ollama.Tool) (*ollama.ChatResponse, error) {
			return client.ChatWithTools(ctx, conv.Model, messages, catalog)
		}
	}

	return a
}

// SetCallbacks registers hooks fired around each tool execution, letting the
// caller surface tool activity to the user as it happens.
func (a *Assistant) SetCallbacks(onCall func(name string, args map[string]interface{}), onResult func(name string, payload map[string]interface{})) {
	a.onToolCall = onCall
	a.onToolResult = onResult
}

// Conversation returns the conversation this assistant mutates.
func (a *Assistant) Conversation() *model.Conversation {
	return a.conv
}

// Executor returns the tool executor, exposing the execution audit history.
func (a *Assistant) Executor() *tools.Executor {
	return a.executor
}

// Chat runs one user turn through the tool-calling loop and returns the
// assistant's reply.
//
// The returned text is always user-presentable. When the model call fails,
// the failure is logged, the text is an apology carrying the cause, and err
// holds the underlying error so callers can inspect it (for example to
// suggest compaction on a context overflow). History mutations made before
// a failure are kept; there is no rollback.
func (a *Assistant) Chat(ctx context.Context, userMessage string) (string, error) {
	a.conv.AddUserMessage(userMessage)

	catalog := a.registry.ToOllamaTools()

	resp, err := a.chatFn(ctx, a.conv.ToOllamaMessages(), catalog)
	if err != nil {
		return a.modelFailure(err)
	}

	rounds := 0
	for resp.Message.HasToolCalls() && rounds < a.maxRounds {
		rounds++

		// The raw assistant response goes into history first, tool-call
		// directives included, so the model sees its own request when the
		// results come back.
		a.conv.AddAssistantMessageWithTools(resp.Message.Content, resp.Message.ToolCalls)

		// Execute in the order the model listed the calls: later results
		// may build on earlier ones.
		for _, call := range resp.Message.ToolCalls {
			name := call.Function.Name
			args := call.Function.Arguments

			if a.onToolCall != nil {
				a.onToolCall(name, args)
			}

			payload := a.executor.Execute(ctx, name, args)

			if a.onToolResult != nil {
				a.onToolResult(name, payload)
			}

			_, failed := payload["error"]
			a.conv.AddToolMessage(name, tools.MarshalResult(payload), !failed)
		}

		resp, err = a.chatFn(ctx, a.conv.ToOllamaMessages(), catalog)
		if err != nil {
			return a.modelFailure(err)
		}
	}

	// Cap exhaustion drops the pending response entirely: no synthetic
	// assistant message is recorded for the failed turn, and history keeps
	// every completed tool exchange.
	if rounds >= a.maxRounds {
		return AdvisoryMaxIterations, nil
	}

	final := a.conv.AddAssistantMessage(resp.Message.Content)
	final.RecordMetrics(resp)

	return FilterResponse(resp.Message.Content), nil
}

// modelFailure logs a model-call failure and converts it into a
// user-visible reply, returning the cause alongside for callers that need
// to inspect it.
func (a *Assistant) modelFailure(err error) (string, error) {
	fmt.Fprintf(a.errLog, "model call failed: %v\n", err)
	return errorReplyPrefix + err.Error(), err
}
