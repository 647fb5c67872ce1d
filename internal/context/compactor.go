// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package context bounds conversation size by compacting older history.
package context

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/finsight/internal/model"
	"github.com/jeranaias/finsight/internal/ollama"
)

// DefaultKeepRecent is how many trailing messages survive compaction
// verbatim when the caller does not say otherwise.
const DefaultKeepRecent = 2

// SummaryPrefix wraps the generated summary inside the synthetic system
// message that replaces the compacted middle of the history.
const SummaryPrefix = "Summary of previous conversation:\n"

// ErrConversationChanged is returned when the conversation was mutated
// between the snapshot and the swap. The history is left untouched.
var ErrConversationChanged = errors.New("conversation changed during compaction")

// SummarizeFunc sends a single summarization request to the model and
// returns the summary text. It is the seam between the compactor and the
// model-serving boundary; the request runs outside the conversation and
// must not see the tool catalog or mutate history.
type SummarizeFunc func(ctx context.Context, prompt string) (string, error)

// Result describes the outcome of a compaction pass.
type Result struct {
	// Compacted is false when the history was too short to be worth a
	// model round trip
	Compacted bool

	// Summarized counts the middle messages folded into the summary
	Summarized int

	// Before and After are the history lengths around the swap
	Before int
	After  int
}

// Config configures a Compactor.
type Config struct {
	// Model used for the summarization request; empty uses the client's
	// default model
	Model string

	// Summarize overrides the model boundary. Mainly for tests.
	Summarize SummarizeFunc
}

// Compactor folds the middle of a conversation into a model-generated
// summary, preserving the system prompt and the most recent messages.
type Compactor struct {
	summarize SummarizeFunc
}

// NewCompactor creates a compactor backed by the given client. client may
// be nil when Config.Summarize supplies the model boundary.
func NewCompactor(client *ollama.Client, cfg Config) *Compactor {
	c := &Compactor{summarize: cfg.Summarize}

	if c.summarize == nil {
		c.summarize = func(ctx context.Context, prompt string) (string, error) {
			resp, err := client.ChatWithOptions(ctx, cfg.Model, []ollama.Message{
				ollama.NewUserMessage(prompt),
			}, &ollama.Options{
				Temperature: 0.3, // focused summaries
				NumPredict:  500, // bound the summary length
			})
			if err != nil {
				return "", err
			}

			summary := strings.TrimSpace(resp.Message.Content)
			if summary == "" {
				return "", fmt.Errorf("received empty summary from model")
			}
			return summary, nil
		}
	}

	return c
}

// Compact summarizes everything between the system prompt and the trailing
// keepRecent messages, then atomically replaces the history with
// [system prompt, summary message, recent messages].
//
// Histories of keepRecent+5 messages or fewer are left alone: the result
// reports Compacted=false and no model call is made. Any failure — a model
// error, an empty summary, or a concurrent mutation of the conversation —
// leaves the history exactly as it was.
func (c *Compactor) Compact(ctx context.Context, conv *model.Conversation, keepRecent int) (*Result, error) {
	if keepRecent <= 0 {
		keepRecent = DefaultKeepRecent
	}

	snapshot, version := conv.Snapshot()
	total := len(snapshot)

	if total <= keepRecent+5 {
		return &Result{Before: total, After: total}, nil
	}

	middle := snapshot[1 : total-keepRecent]
	recent := snapshot[total-keepRecent:]

	summary, err := c.summarize(ctx, buildSummaryPrompt(middle))
	if err != nil {
		return nil, fmt.Errorf("summarization failed: %w", err)
	}

	rebuilt := make([]*model.Message, 0, 2+len(recent))
	rebuilt = append(rebuilt, snapshot[0])
	rebuilt = append(rebuilt, model.NewSystemMessage(SummaryPrefix+summary))
	rebuilt = append(rebuilt, recent...)

	if !conv.ReplaceMessages(rebuilt, version) {
		return nil, ErrConversationChanged
	}

	return &Result{
		Compacted:  true,
		Summarized: len(middle),
		Before:     total,
		After:      conv.MessageCount(),
	}, nil
}

// buildSummaryPrompt serializes the middle messages as "role: content"
// blocks and embeds them in the summarization instruction template. Tool
// messages are included: their JSON payloads carry the calculation results
// the summary needs to preserve.
func buildSummaryPrompt(messages []*model.Message) string {
	var sb strings.Builder

	sb.WriteString(summaryPromptHeader)
	sb.WriteString("\n\n")

	for i, msg := range messages {
		sb.WriteString(msg.Role.String())
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		if i < len(messages)-1 {
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString("\n\n")
	sb.WriteString(summaryPromptFooter)

	return sb.String()
}

const summaryPromptHeader = "Summarize the following conversation into a concise summary, preserving key information:"

const summaryPromptFooter = `Use 2-3 short paragraphs covering:
- The main questions the user asked
- The financial calculations performed and their results
- Important figures and conclusions`
