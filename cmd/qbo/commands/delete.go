package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ENTITY ID",
		Short: "Delete an entity by ID",
		Long: `Delete an entity by ID.

The entity is read first to obtain its current sync token; the provider
rejects deletes carrying a stale token.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := resolveEntity(args[0])
			if err != nil {
				return err
			}

			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			deleted, err := ops.remove(cmd.Context(), client, args[1])
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", ops.name, err)
			}

			return renderOutput(deleted)
		},
	}
}
