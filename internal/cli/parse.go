package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/packhub/packhub/pkg/graph"
	"github.com/packhub/packhub/pkg/hierarchy"
	"github.com/packhub/packhub/pkg/manifest"
	"github.com/packhub/packhub/pkg/store"
)

// parseCommand creates the parse command.
// It runs the full pipeline on a local manifest file and prints a summary,
// optionally writing the bundle as JSON.
func (c *CLI) parseCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a manifest file and print the derived bundle",
		Long: `Parse a local pack manifest and derive its dependency graph and
display hierarchy.

Examples:
  packhub parse manifest.yml
  packhub parse manifest.yml --out bundle.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "write the bundle JSON to this file (stdout summary only if empty)")
	return cmd
}

func (c *CLI) runParse(path, output string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	prog := newProgress(c.Logger)
	m, err := manifest.Parse(string(raw))
	if err != nil {
		return err
	}
	g := graph.Build(m.Packs)
	h := hierarchy.Build(m.Packs)
	prog.done(fmt.Sprintf("Parsed %d packs with %d pages", len(m.Packs), m.TotalPageCount()))

	printKeyValue("name", displayName(m, path))
	printKeyValue("packs", fmt.Sprintf("%d", len(m.Packs)))
	printKeyValue("pages", fmt.Sprintf("%d", m.TotalPageCount()))
	printKeyValue("roots", fmt.Sprintf("%d", len(g.Roots)))
	if g.HasCycle {
		printWarning("dependency cycle detected")
	}

	if output == "" {
		return nil
	}

	bundle := store.Bundle{
		Manifest:  m,
		Hierarchy: h,
		Graph:     g,
		Meta: store.Meta{
			SchemaVersion: m.SchemaVersion,
			Timestamp:     time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
			Repo:          "local:" + path,
		},
	}
	if err := writeJSONFile(output, bundle); err != nil {
		return err
	}
	printFile(output)
	return nil
}

func displayName(m *manifest.Manifest, fallback string) string {
	if m.Name != "" {
		return m.Name
	}
	return fallback
}

// writeJSONFile writes v as indented JSON to path, or stdout when path is "-".
func writeJSONFile(path string, v any) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
