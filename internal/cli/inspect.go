package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schemagraph/pkg/graph"
	"github.com/matzehuels/schemagraph/pkg/pipeline"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		interactive bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <schema>",
		Short: "Show the graph built from a schema file",
		Long: `Inspect builds the graph for a schema file and prints its nodes, warnings
and recursive component groups without rendering anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.buildGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch {
			case asJSON:
				return g.WriteJSON(c.Out)
			case interactive:
				return runBrowser(cmd.Context(), g)
			}
			printInspection(c.Out, args[0], g)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse nodes interactively")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the graph as JSON")
	return cmd
}

func (c *CLI) buildGraph(ctx context.Context, path string) (*graph.Graph, error) {
	src, err := pipeline.LoadSource(path)
	if err != nil {
		return nil, err
	}
	g, err := pipeline.Build(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Logger.Debug("built graph", "schema", path, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

// printInspection writes the node table followed by kind counts, recursive
// groups and warnings.
func printInspection(w io.Writer, name string, g *graph.Graph) {
	fmt.Fprintln(w, StyleTitle.Render(name))
	fmt.Fprintln(w, nodeTable(g))

	counts := g.KindCounts()
	var parts []string
	for k := graph.KindSimple; k <= graph.KindAnyOf; k++ {
		if n := counts[k]; n > 0 {
			parts = append(parts, kindStyle(k).Render(fmt.Sprintf("%d %s", n, k)))
		}
	}
	printKeyValue(w, "nodes", fmt.Sprintf("%d (%s)", g.NodeCount(), strings.Join(parts, ", ")))
	printKeyValue(w, "edges", fmt.Sprint(g.EdgeCount()))

	for _, group := range g.RecursiveGroups() {
		printKeyValue(w, "recursive", strings.Join(group, " ↔ "))
	}
	if len(g.Warnings()) > 0 {
		fmt.Fprintln(w)
		printWarnings(w, g.Warnings())
	}
}

// nodeTable renders one row per node in graph order.
func nodeTable(g *graph.Graph) string {
	nodes := g.Nodes()
	recursive := g.RecursiveSet()
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			n.ID,
			n.Kind.String(),
			n.Summary(),
			fmt.Sprint(len(g.Outgoing(n.ID))),
			fmt.Sprint(len(g.Incoming(n.ID))),
			nodeFlags(n, recursive),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "Kind", "Summary", "Out", "In", "Flags").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if row < 0 || row >= len(nodes) {
				return base
			}
			n := nodes[row]
			switch {
			case col == 1:
				return kindStyle(n.Kind).Padding(0, 1)
			case n.Degraded():
				return base.Foreground(colorYellow)
			case n.Synthetic:
				return base.Foreground(colorGray)
			}
			return base
		}).
		Render()
}

func nodeFlags(n *graph.Node, recursive map[string]bool) string {
	var flags []string
	if n.Synthetic {
		flags = append(flags, "inline")
	}
	if n.Unresolved {
		flags = append(flags, "unresolved")
	} else if n.Degraded() {
		flags = append(flags, "degraded")
	}
	if n.Nullable {
		flags = append(flags, "nullable")
	}
	if recursive[n.ID] {
		flags = append(flags, "recursive")
	}
	return strings.Join(flags, ",")
}

func runBrowser(ctx context.Context, g *graph.Graph) error {
	if g.NodeCount() == 0 {
		return fmt.Errorf("schema has no components to browse")
	}
	_, err := tea.NewProgram(newBrowserModel(g), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}
