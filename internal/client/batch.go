package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	qbohttp "github.com/ledgerkit-io/qbo-client/internal/http"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
)

// batchClient implements qbo.BatchClient. It owns bId correlation: operations
// get sequential IDs on the way out, and responses are matched back by ID so
// callers always see results in submission order.
type batchClient struct {
	context *Context
}

func newBatchClient(c *Context) *batchClient {
	return &batchClient{context: c}
}

// Execute runs up to 30 operations in one request under a batch-window
// permit. An empty operation list returns immediately without consuming
// capacity or sending anything.
//
// When the response covers every ID, results come back in submission order
// with a nil error; per-item faults are reported inside their item, not as a
// request error. When IDs are missing, the matched results are returned
// together with a BatchPartialFailureError naming the operations whose fate
// is unknown.
func (b *batchClient) Execute(ctx context.Context, operations []qbo.BatchOperation) ([]qbo.BatchResultPair, error) {
	if len(operations) == 0 {
		return nil, nil
	}

	if len(operations) > qbo.MaxBatchItems {
		return nil, fmt.Errorf("%w: got %d operations", qbo.ErrBatchTooLarge, len(operations))
	}

	request := qbo.NewBatchRequest(operations)

	var response qbo.BatchResponse

	err := b.context.WithBatchPermission(ctx, func(ctx context.Context) error {
		resp, err := b.context.httpClient.Do(ctx, &qbohttp.Request{
			Method: http.MethodPost,
			Path:   b.context.path("batch"),
			Body:   request,
		})
		if err != nil {
			return err
		}

		err = json.Unmarshal(resp.Body, &response)
		if err != nil {
			return qbo.NewDecodeError(fmt.Errorf("parsing batch response: %w", err))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reconcile(operations, response.Items)
}

// reconcile matches response items back to operations by correlation ID.
// Operation i was sent as "bId(i+1)". Pairs come back in submission order
// regardless of how the provider ordered its response list, so callers can
// index results positionally against their input.
func reconcile(operations []qbo.BatchOperation, items []qbo.BatchResponseItem) ([]qbo.BatchResultPair, error) {
	byID := make(map[string]*qbo.BatchResponseItem, len(items))
	for i := range items {
		byID[items[i].BID] = &items[i]
	}

	pairs := make([]qbo.BatchResultPair, 0, len(operations))
	missing := make(map[string]qbo.BatchOperation)

	for i, operation := range operations {
		bid := fmt.Sprintf("bId%d", i+1)

		response, ok := byID[bid]
		if !ok {
			missing[bid] = operation

			continue
		}

		pairs = append(pairs, qbo.BatchResultPair{
			BID:       bid,
			Operation: operation,
			Response:  response,
		})
	}

	if len(missing) > 0 {
		return pairs, &qbo.BatchPartialFailureError{
			Missing: missing,
			Partial: pairs,
		}
	}

	return pairs, nil
}
