package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEntity(t *testing.T) {
	t.Parallel()

	t.Run("known entities resolve", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"invoice", "customer", "vendor", "bill", "account", "attachable"} {
			ops, err := resolveEntity(name)
			require.NoError(t, err, name)
			assert.NotEmpty(t, ops.name)
		}
	})

	t.Run("unknown entity is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := resolveEntity("widget")
		require.ErrorIs(t, err, ErrUnknownEntity)
	})

	t.Run("only transactions are sendable", func(t *testing.T) {
		t.Parallel()

		_, err := resolveSendable("invoice")
		require.NoError(t, err)

		_, err = resolveSendable("customer")
		require.ErrorIs(t, err, ErrEntityNotSendable)

		_, err = resolveSendable("widget")
		require.ErrorIs(t, err, ErrUnknownEntity)
	})
}

func TestEntityDecode(t *testing.T) {
	t.Parallel()

	ops, err := resolveEntity("customer")
	require.NoError(t, err)

	entity, err := ops.decode([]byte("display_name: Acme Corp\n"))
	require.NoError(t, err)
	assert.Equal(t, "Customer", entity.EntityName())

	customer, ok := entity.(*qbo.Customer)
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", customer.DisplayName)
}

func TestLoadBatchFile(t *testing.T) {
	t.Parallel()

	t.Run("mixed operations", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "batch.yml")
		require.NoError(t, os.WriteFile(file, []byte(`
operations:
  - query: "select * from Invoice"
  - create:
      entity: customer
      payload:
        display_name: Acme Corp
  - delete:
      entity: invoice
      payload:
        id: "145"
        sync_token: "3"
`), 0600))

		operations, err := loadBatchFile(file)
		require.NoError(t, err)
		require.Len(t, operations, 3)

		assert.Equal(t, qbo.BatchKindQuery, operations[0].Kind())
		assert.Equal(t, "select * from Invoice", operations[0].Query())

		assert.Equal(t, qbo.BatchKindCreate, operations[1].Kind())
		assert.Equal(t, "Customer", operations[1].EntityName())

		assert.Equal(t, qbo.BatchKindDelete, operations[2].Kind())
		assert.Equal(t, "Invoice", operations[2].EntityName())
	})

	t.Run("empty operation is rejected", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "batch.yml")
		require.NoError(t, os.WriteFile(file, []byte("operations:\n  - {}\n"), 0600))

		_, err := loadBatchFile(file)
		require.ErrorIs(t, err, ErrEmptyBatchOperation)
	})

	t.Run("unknown entity in payload is rejected", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "batch.yml")
		require.NoError(t, os.WriteFile(file, []byte(`
operations:
  - create:
      entity: widget
      payload: {}
`), 0600))

		_, err := loadBatchFile(file)
		require.ErrorIs(t, err, ErrUnknownEntity)
	})
}

func TestTableRows(t *testing.T) {
	t.Parallel()

	t.Run("list of objects", func(t *testing.T) {
		t.Parallel()

		rows, err := tableRows([]qbo.Customer{
			{ID: "1", DisplayName: "Acme"},
			{ID: "2", DisplayName: "Globex"},
		})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Acme", rows[0]["DisplayName"])
	})

	t.Run("single object becomes one row", func(t *testing.T) {
		t.Parallel()

		rows, err := tableRows(map[string]interface{}{"Id": "9", "Balance": 12.5, "Active": true})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "12.5", rows[0]["Balance"])
		assert.Equal(t, "true", rows[0]["Active"])
	})

	t.Run("id column comes first", func(t *testing.T) {
		t.Parallel()

		columns := tableColumns([]map[string]string{
			{"Zeta": "z", "Id": "1", "Alpha": "a"},
		})
		require.Len(t, columns, 3)
		assert.Equal(t, []string{"Id", "Alpha", "Zeta"}, columns)
	})
}
