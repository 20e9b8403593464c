package commands

import (
	"fmt"

	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"github.com/spf13/cobra"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var entityName string

	cmd := &cobra.Command{
		Use:   "query [STATEMENT]",
		Short: "Run a query against the company file",
		Long: `Run a SQL-like query against the company file.

Without a statement, all rows of the entity type are listed:

  qbo query --entity invoice
  qbo query --entity customer "select * from Customer where DisplayName = 'Acme'"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := resolveEntity(entityName)
			if err != nil {
				return err
			}

			statement := qbo.NewQuery(ops.name).Build()
			if len(args) > 0 {
				statement = args[0]
			}

			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			rows, err := ops.query(cmd.Context(), client, statement)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}

			return renderOutput(rows)
		},
	}

	cmd.Flags().StringVar(&entityName, "entity", "", "entity type (invoice, customer, vendor, ...)")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}
