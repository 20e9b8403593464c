package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create ENTITY",
		Short: "Create an entity from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := resolveEntity(args[0])
			if err != nil {
				return err
			}

			payload, err := os.ReadFile(file) // #nosec G304 -- user-supplied input file
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			created, err := ops.create(cmd.Context(), client, payload)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", ops.name, err)
			}

			return renderOutput(created)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the entity payload")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
