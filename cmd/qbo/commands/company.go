package commands

import (
	"fmt"
	"os"

	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewCompanyCommand creates the company command group.
func NewCompanyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage the company file record",
	}

	cmd.AddCommand(newCompanyShowCommand())
	cmd.AddCommand(newCompanyUpdateCommand())

	return cmd
}

func newCompanyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show company information",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			info, err := client.Company().GetCompanyInfo(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get company info: %w", err)
			}

			return renderOutput(info)
		},
	}
}

func newCompanyUpdateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Sparse-update company information from a file",
		Long: `Sparse-update company information from a YAML or JSON file.

The payload must carry the record's current id and sync_token; only the
fields present in the payload are changed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(file) // #nosec G304 -- user-supplied input file
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			var info qbo.CompanyInfo

			if err := yaml.Unmarshal(payload, &info); err != nil {
				return fmt.Errorf("failed to parse company payload: %w", err)
			}

			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			updated, err := client.Company().UpdateCompanyInfo(cmd.Context(), &info)
			if err != nil {
				return fmt.Errorf("failed to update company info: %w", err)
			}

			return renderOutput(updated)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the company payload")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
