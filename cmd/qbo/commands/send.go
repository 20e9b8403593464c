package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSendCommand creates the send command.
func NewSendCommand() *cobra.Command {
	var sendTo string

	cmd := &cobra.Command{
		Use:   "send ENTITY ID",
		Short: "Email a transaction to the customer",
		Long: `Email a transaction to the customer.

Without --to, the provider delivers to the address on file:

  qbo send invoice 145 --to billing@acme.test`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := resolveSendable(args[0])
			if err != nil {
				return err
			}

			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			sent, err := ops.send(cmd.Context(), client, args[1], sendTo)
			if err != nil {
				return fmt.Errorf("failed to send %s: %w", args[0], err)
			}

			return renderOutput(sent)
		},
	}

	cmd.Flags().StringVar(&sendTo, "to", "", "recipient email address")

	return cmd
}
