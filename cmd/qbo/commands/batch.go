package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// batchFile is the on-disk shape of a batch submission.
type batchFile struct {
	Operations []batchFileOp `yaml:"operations"`
}

// batchFileOp is one operation: exactly one of the fields is set.
type batchFileOp struct {
	Query  string            `yaml:"query,omitempty"`
	Create *batchFilePayload `yaml:"create,omitempty"`
	Update *batchFilePayload `yaml:"update,omitempty"`
	Delete *batchFilePayload `yaml:"delete,omitempty"`
}

type batchFilePayload struct {
	Entity  string    `yaml:"entity"`
	Payload yaml.Node `yaml:"payload"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Execute up to 30 operations in one request",
		Long: `Execute a batch of operations from a YAML file:

  operations:
    - query: "select * from Invoice where Balance > '0'"
    - create:
        entity: customer
        payload:
          display_name: Acme Corp
    - delete:
        entity: invoice
        payload:
          id: "145"
          sync_token: "3"

Per-item faults are reported alongside successful results; a missing
correlation ID is reported as a partial failure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			operations, err := loadBatchFile(file)
			if err != nil {
				return err
			}

			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			pairs, execErr := client.Batch().Execute(cmd.Context(), operations)

			// Partial results are still worth showing before the error.
			if len(pairs) > 0 {
				if err := renderBatchResults(pairs); err != nil {
					return err
				}
			}

			if execErr != nil {
				return fmt.Errorf("batch failed: %w", execErr)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the batch operations file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func loadBatchFile(file string) ([]qbo.BatchOperation, error) {
	data, err := os.ReadFile(file) // #nosec G304 -- user-supplied input file
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	var parsed batchFile

	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}

	operations := make([]qbo.BatchOperation, 0, len(parsed.Operations))

	for i, op := range parsed.Operations {
		operation, err := buildBatchOperation(op)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i+1, err)
		}

		operations = append(operations, operation)
	}

	return operations, nil
}

func buildBatchOperation(op batchFileOp) (qbo.BatchOperation, error) {
	switch {
	case op.Query != "":
		return qbo.BatchQuery(op.Query), nil
	case op.Create != nil:
		entity, err := decodeBatchPayload(op.Create)
		if err != nil {
			return qbo.BatchOperation{}, err
		}

		return qbo.BatchCreate(entity), nil
	case op.Update != nil:
		entity, err := decodeBatchPayload(op.Update)
		if err != nil {
			return qbo.BatchOperation{}, err
		}

		return qbo.BatchUpdate(entity), nil
	case op.Delete != nil:
		entity, err := decodeBatchPayload(op.Delete)
		if err != nil {
			return qbo.BatchOperation{}, err
		}

		return qbo.BatchDelete(entity), nil
	default:
		return qbo.BatchOperation{}, ErrEmptyBatchOperation
	}
}

func decodeBatchPayload(payload *batchFilePayload) (qbo.Entity, error) {
	ops, err := resolveEntity(payload.Entity)
	if err != nil {
		return nil, err
	}

	raw, err := yaml.Marshal(&payload.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode payload: %w", err)
	}

	return ops.decode(raw)
}

// renderBatchResults flattens result pairs into one row per operation.
func renderBatchResults(pairs []qbo.BatchResultPair) error {
	rows := make([]map[string]interface{}, 0, len(pairs))

	for _, pair := range pairs {
		row := map[string]interface{}{
			"Id":        pair.BID,
			"Operation": string(pair.Operation.Kind()),
		}

		switch {
		case pair.Response.Fault != nil:
			row["Status"] = "fault"
			row["Detail"] = pair.Response.Fault.Error()
		case pair.Response.QueryResponse != nil:
			row["Status"] = "ok"
			row["Detail"] = fmt.Sprintf("%d rows", queryRowCount(pair.Response.QueryResponse))
		default:
			row["Status"] = "ok"
			row["Detail"] = pair.Response.EntityName
		}

		rows = append(rows, row)
	}

	return renderOutput(rows)
}

func queryRowCount(raw []byte) int {
	var envelope map[string]interface{}

	if err := json.Unmarshal(raw, &envelope); err != nil {
		return 0
	}

	for _, value := range envelope {
		if rows, ok := value.([]interface{}); ok {
			return len(rows)
		}
	}

	return 0
}
