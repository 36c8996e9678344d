package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestCreateQueryTools(t *testing.T) {
	ts := NewToolset(testResult())

	tools := CreateQueryTools(ts, nil)
	if len(tools) != 4 {
		t.Fatalf("expected 4 tools without history, got %d", len(tools))
	}

	wantNames := []string{"get_summary_stats", "analyze_bottlenecks", "analyze_failures", "compare_projects"}
	for i, tl := range tools {
		info, err := tl.Info(context.Background())
		if err != nil {
			t.Fatalf("Info: %v", err)
		}
		if info.Name != wantNames[i] {
			t.Errorf("tool[%d] = %s, want %s", i, info.Name, wantNames[i])
		}
	}

	search := func(ctx context.Context, q string) (string, error) { return "", nil }
	if got := len(CreateQueryTools(ts, search)); got != 5 {
		t.Errorf("expected 5 tools with history, got %d", got)
	}
}

func TestQueryTool_IgnoresArguments(t *testing.T) {
	ts := NewToolset(testResult())
	tools := CreateQueryTools(ts, nil)

	for _, args := range []string{"", "{}", `{"unexpected":"value"}`, "not json"} {
		out, err := tools[0].InvokableRun(context.Background(), args)
		if err != nil {
			t.Fatalf("InvokableRun(%q): %v", args, err)
		}
		if out != ts.SummaryStats() {
			t.Errorf("output differs for args %q", args)
		}
	}
}

func TestHistorySearchTool(t *testing.T) {
	var gotQuery string
	tool := &historySearchTool{search: func(ctx context.Context, q string) (string, error) {
		gotQuery = q
		return "two past analyses found", nil
	}}

	out, err := tool.InvokableRun(context.Background(), `{"query":"failure spikes"}`)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}
	if gotQuery != "failure spikes" {
		t.Errorf("query = %q", gotQuery)
	}
	if out != "two past analyses found" {
		t.Errorf("out = %q", out)
	}
}

func TestHistorySearchTool_Errors(t *testing.T) {
	tool := &historySearchTool{search: func(ctx context.Context, q string) (string, error) {
		return "", fmt.Errorf("store offline")
	}}

	t.Run("backend failure becomes tool output", func(t *testing.T) {
		out, err := tool.InvokableRun(context.Background(), `{"query":"x"}`)
		if err != nil {
			t.Fatalf("backend errors must not surface as Go errors: %v", err)
		}
		if !strings.Contains(out, "History search failed: store offline") {
			t.Errorf("out = %q", out)
		}
	})

	t.Run("missing query is an argument error", func(t *testing.T) {
		if _, err := tool.InvokableRun(context.Background(), `{}`); err == nil {
			t.Error("expected error for missing query")
		}
	})

	t.Run("malformed json is an argument error", func(t *testing.T) {
		if _, err := tool.InvokableRun(context.Background(), `{`); err == nil {
			t.Error("expected error for malformed arguments")
		}
	})
}
