package qbo_test

import (
	"testing"

	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"github.com/stretchr/testify/assert"
)

func TestQueryBuilder_Build(t *testing.T) {
	t.Parallel()

	t.Run("bare select", func(t *testing.T) {
		t.Parallel()

		stmt := qbo.NewQuery("Invoice").Build()
		assert.Equal(t, "select * from Invoice", stmt)
	})

	t.Run("conditions combine with and", func(t *testing.T) {
		t.Parallel()

		stmt := qbo.NewQuery("Customer").
			Where("DisplayName", "=", "Acme").
			WhereRaw("Active = true").
			Build()
		assert.Equal(t, "select * from Customer where DisplayName = 'Acme' and Active = true", stmt)
	})

	t.Run("ordering and pagination render last", func(t *testing.T) {
		t.Parallel()

		stmt := qbo.NewQuery("Bill").
			OrderBy("MetaData.LastUpdatedTime DESC").
			StartPosition(11).
			MaxResults(10).
			Build()
		assert.Equal(t, "select * from Bill orderby MetaData.LastUpdatedTime DESC STARTPOSITION 11 MAXRESULTS 10", stmt)
	})

	t.Run("values with quotes cannot escape the literal", func(t *testing.T) {
		t.Parallel()

		stmt := qbo.NewQuery("Customer").
			Where("DisplayName", "=", "O'Brien's Bakery").
			Build()
		assert.Equal(t, `select * from Customer where DisplayName = 'O\'Brien\'s Bakery'`, stmt)
	})
}

func TestEscapeQueryValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `plain`, qbo.EscapeQueryValue("plain"))
	assert.Equal(t, `a\'b\'c`, qbo.EscapeQueryValue("a'b'c"))
}
