package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ENTITY ID",
		Short: "Read one entity by ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := resolveEntity(args[0])
			if err != nil {
				return err
			}

			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			entity, err := ops.get(cmd.Context(), client, args[1])
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", ops.name, err)
			}

			return renderOutput(entity)
		},
	}
}
