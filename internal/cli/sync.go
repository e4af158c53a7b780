package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/packhub/packhub/pkg/ops"
)

// syncPollInterval is how often the sync command polls the operation.
const syncPollInterval = 500 * time.Millisecond

// syncCommand creates the sync command. It triggers a repository sync on a
// running server and waits for the operation to reach a terminal state.
func (c *CLI) syncCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "sync <repo>",
		Short: "Trigger a repository sync and wait for it",
		Long: `Trigger a manifest refresh for a repository on a packhub server and
poll the resulting operation until it succeeds or fails.

Example:
  packhub sync myorg/content-packs --server http://localhost:8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd.Context(), serverURL, args[0])
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "packhub server URL")
	return cmd
}

func (c *CLI) runSync(ctx context.Context, serverURL, repoKey string) error {
	client := newAPIClient(serverURL)

	opID, err := client.TriggerSync(ctx, repoKey)
	if err != nil {
		return fmt.Errorf("trigger sync: %w", err)
	}
	c.Logger.Debug("sync triggered", "operation", opID)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Syncing %s", repoKey))
	spinner.Start()

	op, err := pollOperation(ctx, client, opID, spinner)
	if err != nil {
		spinner.Stop()
		if spinner.Cancelled() {
			printWarning("sync still running as %s", opID)
			return nil
		}
		return err
	}

	switch op.Status {
	case ops.StatusSuccess:
		spinner.StopWithSuccess(fmt.Sprintf("Synced %s", repoKey))
		if op.Result != nil {
			printDetail("packs: %v, pages: %v", op.Result["packs"], op.Result["pages"])
		}
		return nil
	default:
		spinner.StopWithError(fmt.Sprintf("Sync failed: %s", op.Message))
		return fmt.Errorf("sync %s failed", repoKey)
	}
}

// pollOperation polls until the operation reaches a terminal state.
func pollOperation(ctx context.Context, client *apiClient, opID string, spinner *Spinner) (*ops.Operation, error) {
	ticker := time.NewTicker(syncPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		op, err := client.GetOperation(ctx, opID)
		if err != nil {
			return nil, fmt.Errorf("poll operation: %w", err)
		}
		if op.Status.Terminal() {
			return op, nil
		}
		if spinner != nil && op.Progress != nil {
			spinner.SetMessage(fmt.Sprintf("%s (%d%%)", op.Message, *op.Progress))
		}
	}
}
