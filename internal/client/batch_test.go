package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestBatchClient_Execute(t *testing.T) {
	t.Parallel()

	t.Run("results come back in submission order", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/company/123/batch", request.URL.Path)

			var wire struct {
				Items []map[string]json.RawMessage `json:"BatchItemRequest"`
			}

			require.NoError(t, json.NewDecoder(request.Body).Decode(&wire))
			require.Len(t, wire.Items, 2)

			// Respond out of order; the correlator must restore submission order.
			_, _ = writer.Write([]byte(`{"BatchItemResponse":[
				{"bId":"bId2","Customer":{"Id":"9","DisplayName":"Acme"}},
				{"bId":"bId1","QueryResponse":{"Invoice":[{"Id":"145"}]}}
			],"time":"t"}`))
		}))
		defer server.Close()

		batch := newBatchClient(newTestContext(server.URL))

		pairs, err := batch.Execute(context.Background(), []qbo.BatchOperation{
			qbo.BatchQuery("select * from Invoice"),
			qbo.BatchCreate(&qbo.Customer{DisplayName: "Acme"}),
		})
		require.NoError(t, err)
		require.Len(t, pairs, 2)

		assert.Equal(t, "bId1", pairs[0].BID)
		assert.NotNil(t, pairs[0].Response.QueryResponse)

		assert.Equal(t, "bId2", pairs[1].BID)
		assert.Equal(t, "Customer", pairs[1].Response.EntityName)
	})

	t.Run("per-item faults are not a request error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{"BatchItemResponse":[
				{"bId":"bId1","Fault":{"type":"ValidationFault","Error":[{"Message":"Duplicate Name","code":"6240"}]}},
				{"bId":"bId2","Vendor":{"Id":"31"}}
			],"time":"t"}`))
		}))
		defer server.Close()

		batch := newBatchClient(newTestContext(server.URL))

		pairs, err := batch.Execute(context.Background(), []qbo.BatchOperation{
			qbo.BatchCreate(&qbo.Vendor{DisplayName: "Dup"}),
			qbo.BatchCreate(&qbo.Vendor{DisplayName: "Fresh"}),
		})
		require.NoError(t, err)
		require.Len(t, pairs, 2)
		require.NotNil(t, pairs[0].Response.Fault)
		assert.Equal(t, "6240", pairs[0].Response.Fault.Errors[0].Code)
		assert.Nil(t, pairs[1].Response.Fault)
	})

	t.Run("missing correlation ids yield a partial failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			// bId2 never comes back.
			_, _ = writer.Write([]byte(`{"BatchItemResponse":[
				{"bId":"bId1","Invoice":{"Id":"145"}},
				{"bId":"bId3","Customer":{"Id":"9"}}
			],"time":"t"}`))
		}))
		defer server.Close()

		batch := newBatchClient(newTestContext(server.URL))

		operations := []qbo.BatchOperation{
			qbo.BatchCreate(&qbo.Invoice{DocNumber: "A"}),
			qbo.BatchQuery("select * from Bill"),
			qbo.BatchCreate(&qbo.Customer{DisplayName: "Acme"}),
		}

		pairs, err := batch.Execute(context.Background(), operations)
		require.Error(t, err)

		partial, ok := qbo.IsBatchPartialFailure(err)
		require.True(t, ok)
		require.Len(t, partial.Missing, 1)
		assert.Equal(t, qbo.BatchKindQuery, partial.Missing["bId2"].Kind())
		assert.Len(t, partial.Partial, 2)
		assert.Len(t, pairs, 2)
	})

	t.Run("empty batch never reaches the server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			t.Error("no request expected for an empty batch")
		}))
		defer server.Close()

		batch := newBatchClient(newTestContext(server.URL))

		pairs, err := batch.Execute(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, pairs)
	})

	t.Run("oversized batches are rejected locally", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			t.Error("no request expected for an oversized batch")
		}))
		defer server.Close()

		batch := newBatchClient(newTestContext(server.URL))

		operations := make([]qbo.BatchOperation, 0, qbo.MaxBatchItems+1)
		for _i := 0; _i < qbo.MaxBatchItems+1; _i++ {
			operations = append(operations, qbo.BatchQuery("select * from Invoice"))
		}

		_, err := batch.Execute(context.Background(), operations)
		require.ErrorIs(t, err, qbo.ErrBatchTooLarge)
	})
}
