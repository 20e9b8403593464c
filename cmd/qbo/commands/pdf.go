package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewPDFCommand creates the pdf command.
func NewPDFCommand() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "pdf ENTITY ID",
		Short: "Download a transaction as PDF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := resolveSendable(args[0])
			if err != nil {
				return err
			}

			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			content, err := ops.pdf(cmd.Context(), client, args[1])
			if err != nil {
				return fmt.Errorf("failed to render %s as PDF: %w", args[0], err)
			}

			if outFile == "" {
				outFile = fmt.Sprintf("%s-%s.pdf", args[0], args[1])
			}

			if err := os.WriteFile(outFile, content, 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", outFile, err)
			}

			fmt.Fprintf(os.Stdout, "Wrote %s (%d bytes)\n", outFile, len(content))

			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default ENTITY-ID.pdf)")

	return cmd
}
