package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// opsCommand creates the ops command group for inspecting operations.
func (c *CLI) opsCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "ops",
		Short: "Inspect background operations on a server",
	}
	cmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "packhub server URL")

	cmd.AddCommand(c.opsListCommand(&serverURL))
	cmd.AddCommand(c.opsGetCommand(&serverURL))
	cmd.AddCommand(c.opsWatchCommand(&serverURL))
	return cmd
}

// opsListCommand creates the "ops list" subcommand.
func (c *CLI) opsListCommand(serverURL *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent operations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(*serverURL)
			list, err := client.ListOperations(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No operations")
				return nil
			}
			for _, op := range list {
				progress := "-"
				if op.Progress != nil {
					progress = fmt.Sprintf("%d%%", *op.Progress)
				}
				fmt.Printf("%s  %s  %s  %s\n",
					StyleValue.Render(op.ID),
					statusStyle(string(op.Status)).Render(string(op.Status)),
					progress,
					StyleDim.Render(op.CreatedAt),
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum operations to list")
	return cmd
}

// opsGetCommand creates the "ops get" subcommand.
func (c *CLI) opsGetCommand(serverURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(*serverURL)
			op, err := client.GetOperation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printKeyValue("id", op.ID)
			printKeyValue("type", op.Type)
			printKeyValue("status", statusStyle(string(op.Status)).Render(string(op.Status)))
			if op.Progress != nil {
				printKeyValue("progress", fmt.Sprintf("%d%%", *op.Progress))
			}
			if op.Message != "" {
				printKeyValue("message", op.Message)
			}
			printKeyValue("created", op.CreatedAt)
			if op.StartedAt != "" {
				printKeyValue("started", op.StartedAt)
			}
			printKeyValue("updated", op.UpdatedAt)
			for k, v := range op.Result {
				printDetail("%s: %v", k, v)
			}
			return nil
		},
	}
}

// opsWatchCommand creates the "ops watch" subcommand: a live-updating table
// of recent operations.
func (c *CLI) opsWatchCommand(serverURL *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch operations in a live table",
		RunE: func(cmd *cobra.Command, args []string) error {
			model := newOpsWatchModel(newAPIClient(*serverURL), limit)
			_, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum operations to show")
	return cmd
}
