// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant implements the tool-calling conversation loop.
package assistant

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jeranaias/finsight/internal/model"
	"github.com/jeranaias/finsight/internal/ollama"
	"github.com/jeranaias/finsight/internal/tools"
)

// =============================================================================
// SCRIPTED MODEL BOUNDARY
// =============================================================================

func textResponse(content string) *ollama.ChatResponse {
	return &ollama.ChatResponse{
		Model:   "test-model",
		Message: ollama.Message{Role: "assistant", Content: content},
		Done:    true,
	}
}

func toolCallResponse(calls ...ollama.ToolCall) *ollama.ChatResponse {
	return &ollama.ChatResponse{
		Model:   "test-model",
		Message: ollama.Message{Role: "assistant", ToolCalls: calls},
		Done:    true,
	}
}

func roeCall(netIncome, equity float64) ollama.ToolCall {
	return ollama.ToolCall{
		Function: ollama.ToolFunction{
			Name: "calculate_roe",
			Arguments: map[string]interface{}{
				"net_income":         netIncome,
				"shareholder_equity": equity,
			},
		},
	}
}

type step struct {
	resp *ollama.ChatResponse
	err  error
}

// scriptedModel plays back a fixed sequence of model responses. Once the
// script runs out, the final step repeats, which lets a single tool-call
// step simulate a model that never stops requesting tools.
type scriptedModel struct {
	steps    []step
	calls    int
	seenLens []int
}

func (m *scriptedModel) chat(ctx context.Context, messages []ollama.Message, catalog []ollama.Tool) (*ollama.ChatResponse, error) {
	m.seenLens = append(m.seenLens, len(messages))

	idx := m.calls
	m.calls++
	if idx >= len(m.steps) {
		idx = len(m.steps) - 1
	}
	s := m.steps[idx]
	return s.resp, s.err
}

func newTestAssistant(t *testing.T, script *scriptedModel) *Assistant {
	t.Helper()
	conv := model.NewConversation("You are a financial analyst.", "test-model")
	return New(nil, conv, tools.NewDefaultRegistry(), Options{
		ChatFunc: script.chat,
		ErrLog:   io.Discard,
	})
}

// =============================================================================
// LOOP TESTS
// =============================================================================

func TestChat_DirectAnswer(t *testing.T) {
	script := &scriptedModel{steps: []step{
		{resp: textResponse("<think>check the margins</think>The gross margin looks healthy.")},
	}}
	a := newTestAssistant(t, script)

	reply, err := a.Chat(context.Background(), "How do the margins look?")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "The gross margin looks healthy." {
		t.Errorf("reply = %q, want the filtered answer", reply)
	}

	// A response without tool calls terminates in exactly one round trip
	if script.calls != 1 {
		t.Errorf("model called %d times, want 1", script.calls)
	}
	if script.seenLens[0] != 2 {
		t.Errorf("first call saw %d messages, want 2 (system + user)", script.seenLens[0])
	}

	conv := a.Conversation()
	if conv.MessageCount() != 3 {
		t.Fatalf("MessageCount() = %d, want 3", conv.MessageCount())
	}

	// History records the raw assistant text; only the returned reply is
	// filtered
	last := conv.GetLastMessage()
	if last.Role != model.RoleAssistant {
		t.Errorf("last message role = %q, want assistant", last.Role)
	}
	if !strings.Contains(last.Content, "<think>") {
		t.Errorf("history content = %q, want the raw unfiltered text", last.Content)
	}
}

func TestChat_SingleToolRound(t *testing.T) {
	script := &scriptedModel{steps: []step{
		{resp: toolCallResponse(roeCall(2000000, 10000000))},
		{resp: textResponse("The ROE is 20.00%, which is excellent.")},
	}}
	a := newTestAssistant(t, script)

	reply, err := a.Chat(context.Background(), "ROE for 2M income on 10M equity?")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "The ROE is 20.00%, which is excellent." {
		t.Errorf("reply = %q", reply)
	}

	if script.calls != 2 {
		t.Fatalf("model called %d times, want 2", script.calls)
	}
	// Second call must include the assistant tool request and the tool result
	if script.seenLens[1] != 4 {
		t.Errorf("second call saw %d messages, want 4", script.seenLens[1])
	}

	history := a.Conversation().GetHistory()
	if len(history) != 5 {
		t.Fatalf("history has %d messages, want 5", len(history))
	}
	if !history[2].HasToolCalls() {
		t.Error("history[2] missing the tool-call directives")
	}

	toolMsg := history[3]
	if toolMsg.Role != model.RoleTool {
		t.Errorf("history[3].Role = %q, want tool", toolMsg.Role)
	}
	if toolMsg.ToolName != "calculate_roe" {
		t.Errorf("history[3].ToolName = %q, want calculate_roe", toolMsg.ToolName)
	}
	if !toolMsg.IsSuccess {
		t.Error("history[3].IsSuccess = false, want true")
	}
	if !strings.Contains(toolMsg.Content, "20.00%") {
		t.Errorf("tool result = %q, want the computed ROE", toolMsg.Content)
	}
}

func TestChat_SequentialToolOrder(t *testing.T) {
	incomeCall := ollama.ToolCall{
		Function: ollama.ToolFunction{
			Name: "calculate_income_statement",
			Arguments: map[string]interface{}{
				"revenue":            1000000.0,
				"cost_of_goods_sold": 400000.0,
				"operating_expenses": 300000.0,
			},
		},
	}
	script := &scriptedModel{steps: []step{
		{resp: toolCallResponse(roeCall(100000, 1000000), incomeCall)},
		{resp: textResponse("Here is the full analysis.")},
	}}
	a := newTestAssistant(t, script)

	if _, err := a.Chat(context.Background(), "Analyze both."); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	// Results are appended in the order the model listed the calls
	history := a.Conversation().GetHistory()
	if len(history) != 6 {
		t.Fatalf("history has %d messages, want 6", len(history))
	}
	if history[3].ToolName != "calculate_roe" {
		t.Errorf("history[3].ToolName = %q, want calculate_roe", history[3].ToolName)
	}
	if history[4].ToolName != "calculate_income_statement" {
		t.Errorf("history[4].ToolName = %q, want calculate_income_statement", history[4].ToolName)
	}

	records := a.Executor().History()
	if len(records) != 2 {
		t.Fatalf("executor history has %d records, want 2", len(records))
	}
	if records[0].ToolName != "calculate_roe" || records[1].ToolName != "calculate_income_statement" {
		t.Errorf("execution order = [%s, %s]", records[0].ToolName, records[1].ToolName)
	}
}

func TestChat_IterationCap(t *testing.T) {
	script := &scriptedModel{steps: []step{
		{resp: toolCallResponse(roeCall(100, 1000))},
	}}
	a := newTestAssistant(t, script)

	reply, err := a.Chat(context.Background(), "Loop forever.")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != AdvisoryMaxIterations {
		t.Errorf("reply = %q, want the advisory string", reply)
	}

	// Initial call plus one re-invocation per tool round
	if script.calls != DefaultMaxToolRounds+1 {
		t.Errorf("model called %d times, want %d", script.calls, DefaultMaxToolRounds+1)
	}

	conv := a.Conversation()

	// system + user + (assistant, tool) per round; no final assistant text
	want := 2 + DefaultMaxToolRounds*2
	if conv.MessageCount() != want {
		t.Errorf("MessageCount() = %d, want %d", conv.MessageCount(), want)
	}
	if last := conv.GetLastMessage(); last.Role != model.RoleTool {
		t.Errorf("last message role = %q, want tool (no synthetic assistant message)", last.Role)
	}
}

func TestChat_IterationCapConfigurable(t *testing.T) {
	script := &scriptedModel{steps: []step{
		{resp: toolCallResponse(roeCall(100, 1000))},
	}}
	conv := model.NewConversation("You are a financial analyst.", "test-model")
	a := New(nil, conv, tools.NewDefaultRegistry(), Options{
		ChatFunc:      script.chat,
		ErrLog:        io.Discard,
		MaxToolRounds: 3,
	})

	reply, err := a.Chat(context.Background(), "Loop forever.")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != AdvisoryMaxIterations {
		t.Errorf("reply = %q, want the advisory string", reply)
	}
	if script.calls != 4 {
		t.Errorf("model called %d times, want 4", script.calls)
	}
}

func TestChat_ModelError(t *testing.T) {
	cause := errors.New("connection refused")
	script := &scriptedModel{steps: []step{
		{err: cause},
	}}
	a := newTestAssistant(t, script)

	reply, err := a.Chat(context.Background(), "Hello?")
	if !errors.Is(err, cause) {
		t.Errorf("Chat() error = %v, want the underlying cause", err)
	}
	want := "Sorry, an error occurred while processing your request: connection refused"
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}

	// The user message appended before the failure is kept
	conv := a.Conversation()
	if conv.MessageCount() != 2 {
		t.Errorf("MessageCount() = %d, want 2", conv.MessageCount())
	}
}

func TestChat_ErrorAfterToolRound(t *testing.T) {
	cause := errors.New("model runner stopped")
	script := &scriptedModel{steps: []step{
		{resp: toolCallResponse(roeCall(2000000, 10000000))},
		{err: cause},
	}}
	a := newTestAssistant(t, script)

	reply, err := a.Chat(context.Background(), "ROE please.")
	if !errors.Is(err, cause) {
		t.Errorf("Chat() error = %v, want the underlying cause", err)
	}
	if !strings.HasPrefix(reply, "Sorry, an error occurred") {
		t.Errorf("reply = %q, want the apology string", reply)
	}

	// The completed tool exchange survives the failure
	history := a.Conversation().GetHistory()
	if len(history) != 4 {
		t.Fatalf("history has %d messages, want 4", len(history))
	}
	if history[3].Role != model.RoleTool {
		t.Errorf("history[3].Role = %q, want tool", history[3].Role)
	}
}

func TestChat_UnknownToolRecovery(t *testing.T) {
	bogus := ollama.ToolCall{
		Function: ollama.ToolFunction{
			Name:      "calculate_magic",
			Arguments: map[string]interface{}{},
		},
	}
	script := &scriptedModel{steps: []step{
		{resp: toolCallResponse(bogus)},
		{resp: textResponse("That tool does not exist; let me answer directly.")},
	}}
	a := newTestAssistant(t, script)

	reply, err := a.Chat(context.Background(), "Use your magic tool.")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "That tool does not exist; let me answer directly." {
		t.Errorf("reply = %q", reply)
	}

	toolMsg := a.Conversation().GetHistory()[3]
	if toolMsg.IsSuccess {
		t.Error("unknown tool result marked successful")
	}
	want := `{"error":"unknown tool: calculate_magic"}`
	if toolMsg.Content != want {
		t.Errorf("tool result = %q, want %q", toolMsg.Content, want)
	}
}

func TestChat_Callbacks(t *testing.T) {
	script := &scriptedModel{steps: []step{
		{resp: toolCallResponse(roeCall(2000000, 10000000))},
		{resp: textResponse("Done.")},
	}}
	a := newTestAssistant(t, script)

	var calledName string
	var resultPayload map[string]interface{}
	a.SetCallbacks(
		func(name string, args map[string]interface{}) {
			calledName = name
		},
		func(name string, payload map[string]interface{}) {
			resultPayload = payload
		},
	)

	if _, err := a.Chat(context.Background(), "ROE please."); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if calledName != "calculate_roe" {
		t.Errorf("onToolCall name = %q, want calculate_roe", calledName)
	}
	if resultPayload == nil {
		t.Fatal("onToolResult never fired")
	}
	if roe, ok := resultPayload["roe"].(string); !ok || roe != "20.00%" {
		t.Errorf("callback payload roe = %v, want 20.00%%", resultPayload["roe"])
	}
}

func TestChat_RecordsMetrics(t *testing.T) {
	resp := textResponse("All good.")
	resp.EvalCount = 128
	resp.TotalDuration = 2500000000

	script := &scriptedModel{steps: []step{{resp: resp}}}
	a := newTestAssistant(t, script)

	if _, err := a.Chat(context.Background(), "Quick check."); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	last := a.Conversation().GetLastMessage()
	if last.TokenCount != 128 {
		t.Errorf("TokenCount = %d, want 128", last.TokenCount)
	}
	if last.TotalDuration == 0 {
		t.Error("TotalDuration not recorded")
	}
}
