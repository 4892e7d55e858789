package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// snapshotsCommand creates the snapshots command group for managing stored
// layouts. Snapshots are created through the serve API; this command covers
// the offline side: listing, inspecting, and deleting.
func (c *CLI) snapshotsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List, inspect, and delete stored layout snapshots",
	}

	cmd.AddCommand(c.snapshotsListCommand())
	cmd.AddCommand(c.snapshotsShowCommand())
	cmd.AddCommand(c.snapshotsDeleteCommand())

	return cmd
}

func (c *CLI) snapshotsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newSnapshotStore(cmd)
			if err != nil {
				return fmt.Errorf("open snapshot store: %w", err)
			}
			defer store.Close(cmd.Context())

			metas, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(metas) == 0 {
				fmt.Println(StyleDim.Render("no snapshots stored"))
				return nil
			}
			for _, m := range metas {
				fmt.Println(StyleValue.Render(m.ID) + "  " +
					StyleTitle.Render(m.Label) + "  " +
					StyleDim.Render(fmt.Sprintf("%s · %d nodes · %s",
						m.Mode, m.NodeCount, m.CreatedAt.Local().Format("2006-01-02 15:04"))))
			}
			return nil
		},
	}
}

func (c *CLI) snapshotsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a snapshot's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newSnapshotStore(cmd)
			if err != nil {
				return fmt.Errorf("open snapshot store: %w", err)
			}
			defer store.Close(cmd.Context())

			snap, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Print(kv("id", snap.ID))
			fmt.Print(kv("label", snap.Label))
			fmt.Print(kv("root", snap.Root))
			fmt.Print(kv("mode", snap.Mode))
			fmt.Print(kv("nodes", fmt.Sprintf("%d", snap.NodeCount)))
			fmt.Print(kv("edges", fmt.Sprintf("%d", snap.EdgeCount)))
			fmt.Print(kv("created", snap.CreatedAt.Local().Format("2006-01-02 15:04:05")))
			return nil
		},
	}
}

func (c *CLI) snapshotsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newSnapshotStore(cmd)
			if err != nil {
				return fmt.Errorf("open snapshot store: %w", err)
			}
			defer store.Close(cmd.Context())

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Snapshot %s deleted", args[0])
			return nil
		},
	}
}
