package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/devflowhq/devflow/internal/llm"
)

// scriptedChatModel implements model.BaseChatModel, replaying a fixed
// sequence of responses.
type scriptedChatModel struct {
	responses []*schema.Message
	calls     int
	err       error
}

func (m *scriptedChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	i := m.calls
	m.calls++
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return m.responses[i], nil
}

func (m *scriptedChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, nil // Not used by the insight agent
}

func toolCallMessage(name string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{ID: "call-1", Function: schema.FunctionCall{Name: name, Arguments: "{}"}},
		},
	}
}

func newTestAgent(m *scriptedChatModel) *InsightAgent {
	agent := NewInsightAgent(llm.Config{})
	agent.modelFactory = func(ctx context.Context, cfg llm.Config) (model.BaseChatModel, error) {
		return m, nil
	}
	return agent
}

func TestInsightAgent_DirectAnswer(t *testing.T) {
	mock := &scriptedChatModel{responses: []*schema.Message{
		{Role: schema.Assistant, Content: "All healthy."},
	}}

	out, err := newTestAgent(mock).Investigate(context.Background(), testResult(), "how are we doing?")
	if err != nil {
		t.Fatalf("Investigate: %v", err)
	}
	if out.Answer != "All healthy." {
		t.Errorf("answer = %q", out.Answer)
	}
	if out.ToolCalls != 0 {
		t.Errorf("tool calls = %d", out.ToolCalls)
	}
}

func TestInsightAgent_ToolLoop(t *testing.T) {
	mock := &scriptedChatModel{responses: []*schema.Message{
		toolCallMessage("get_summary_stats"),
		toolCallMessage("analyze_failures"),
		{Role: schema.Assistant, Content: "Failure rates are concentrated in acme/flaky."},
	}}

	out, err := newTestAgent(mock).Analyze(context.Background(), testResult())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.Answer != "Failure rates are concentrated in acme/flaky." {
		t.Errorf("answer = %q", out.Answer)
	}
	if out.ToolCalls != 2 {
		t.Errorf("tool calls = %d, want 2", out.ToolCalls)
	}
	if mock.calls != 3 {
		t.Errorf("model calls = %d, want 3", mock.calls)
	}
}

func TestInsightAgent_MaxIterations(t *testing.T) {
	// The model never stops calling tools; the loop must cut it off and
	// fall back to the last message content (the tool output).
	mock := &scriptedChatModel{responses: []*schema.Message{
		toolCallMessage("get_summary_stats"),
	}}

	agent := newTestAgent(mock)
	agent.SetMaxIterations(3)

	out, err := agent.Analyze(context.Background(), testResult())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if mock.calls != 3 {
		t.Errorf("model calls = %d, want 3", mock.calls)
	}
	if !strings.Contains(out.Answer, "CI/CD Build Analysis Results") {
		t.Errorf("fallback answer should be the last tool output, got %q", out.Answer)
	}
}

func TestInsightAgent_ModelError(t *testing.T) {
	mock := &scriptedChatModel{err: fmt.Errorf("rate limited")}

	_, err := newTestAgent(mock).Analyze(context.Background(), testResult())
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("expected generate error, got %v", err)
	}
}

func TestInsightAgent_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &scriptedChatModel{responses: []*schema.Message{
		{Role: schema.Assistant, Content: "never reached"},
	}}

	_, err := newTestAgent(mock).Analyze(ctx, testResult())
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSetMaxIterations_Bounds(t *testing.T) {
	agent := NewInsightAgent(llm.Config{})
	agent.SetMaxIterations(0)
	if agent.maxIters != defaultMaxIters {
		t.Error("0 should be rejected")
	}
	agent.SetMaxIterations(25)
	if agent.maxIters != defaultMaxIters {
		t.Error("25 should be rejected")
	}
	agent.SetMaxIterations(5)
	if agent.maxIters != 5 {
		t.Error("5 should be accepted")
	}
}
