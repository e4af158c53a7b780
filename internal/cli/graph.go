package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packhub/packhub/pkg/graph"
	"github.com/packhub/packhub/pkg/manifest"
)

// Output formats for the graph command.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// graphCommand creates the graph export command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format    string
		output    string
		showPages bool
	)

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Export a manifest's dependency graph",
		Long: `Build the dependency graph of a local manifest and export it.

Examples:
  packhub graph manifest.yml                       # JSON to stdout
  packhub graph manifest.yml --format dot          # Graphviz DOT
  packhub graph manifest.yml --format svg -o g.svg # rendered SVG`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read manifest: %w", err)
			}
			m, err := manifest.Parse(string(raw))
			if err != nil {
				return err
			}
			g := graph.Build(m.Packs)
			opts := graph.Options{ShowPages: showPages}

			switch format {
			case formatJSON:
				path := output
				if path == "" {
					path = "-"
				}
				return writeJSONFile(path, g)
			case formatDOT:
				return writeOutput(output, []byte(graph.ToDOT(g, opts)))
			case formatSVG:
				svg, err := graph.RenderSVG(cmd.Context(), g, opts)
				if err != nil {
					return fmt.Errorf("render svg: %w", err)
				}
				return writeOutput(output, svg)
			default:
				return fmt.Errorf("unknown format %q (want json, dot, or svg)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json, dot, or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&showPages, "pages", false, "include page nodes in dot/svg output")
	return cmd
}

// writeOutput writes data to path, or stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printFile(path)
	return nil
}
