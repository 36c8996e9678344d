// Package dfg renders a directly-follows graph of build statuses per
// project. The analysis core only promises "given project, status and
// timestamp columns, produce an image file path"; rendering is delegated to
// graphviz when its dot binary is installed, otherwise the DOT source itself
// is the artifact.
package dfg

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devflowhq/devflow/models"
)

type edge struct {
	from string
	to   string
}

// Graph is a frequency-annotated directly-follows graph.
type Graph struct {
	nodes map[string]int
	edges map[edge]int
}

// Discover builds the graph from build events. Each project is one trace,
// ordered by start timestamp; rows with no timestamp or no status are
// dropped, matching the cleaning the rest of the pipeline applies.
func Discover(events []models.BuildEvent) *Graph {
	g := &Graph{nodes: make(map[string]int), edges: make(map[edge]int)}

	byProject := make(map[string][]models.BuildEvent)
	var order []string
	for _, ev := range events {
		if ev.StartedAt == nil || ev.Status == "" {
			continue
		}
		if _, ok := byProject[ev.Project]; !ok {
			order = append(order, ev.Project)
		}
		byProject[ev.Project] = append(byProject[ev.Project], ev)
	}

	for _, project := range order {
		trace := byProject[project]
		sort.SliceStable(trace, func(i, j int) bool {
			return trace[i].StartedAt.Before(*trace[j].StartedAt)
		})
		for i, ev := range trace {
			g.nodes[string(ev.Status)]++
			if i > 0 {
				g.edges[edge{from: string(trace[i-1].Status), to: string(ev.Status)}]++
			}
		}
	}
	return g
}

// DOT renders the graph as graphviz source. Output is deterministic: nodes
// and edges are emitted in sorted order.
func (g *Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph dfg {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n")

	nodes := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	for _, n := range nodes {
		fmt.Fprintf(&b, "  %q [label=\"%s (%d)\"];\n", n, n, g.nodes[n])
	}

	edges := make([]edge, 0, len(g.edges))
	for e := range g.edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})
	for _, e := range edges {
		fmt.Fprintf(&b, "  %q -> %q [label=\"%d\"];\n", e.from, e.to, g.edges[e])
	}

	b.WriteString("}\n")
	return b.String()
}

// Render writes the graph to outputPath. A .png target requires the
// graphviz dot binary; when it is missing, the DOT source is written next
// to the requested path instead and that path is returned.
func (g *Graph) Render(outputPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	dotSource := g.DOT()

	if strings.EqualFold(filepath.Ext(outputPath), ".dot") {
		if err := os.WriteFile(outputPath, []byte(dotSource), 0o644); err != nil {
			return "", fmt.Errorf("write dot file: %w", err)
		}
		return outputPath, nil
	}

	dotBin, err := exec.LookPath("dot")
	if err != nil {
		fallback := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".dot"
		if werr := os.WriteFile(fallback, []byte(dotSource), 0o644); werr != nil {
			return "", fmt.Errorf("write dot fallback: %w", werr)
		}
		return fallback, nil
	}

	format := strings.TrimPrefix(filepath.Ext(outputPath), ".")
	if format == "" {
		format = "png"
		outputPath += ".png"
	}
	cmd := exec.Command(dotBin, "-T"+format, "-o", outputPath)
	cmd.Stdin = strings.NewReader(dotSource)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("render graph: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return outputPath, nil
}
