package qbo_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFault_Unmarshal(t *testing.T) {
	t.Parallel()

	body := `{"type":"ValidationFault","Error":[{"Message":"Duplicate Document Number","Detail":"DocNumber=INV-1001 already exists","code":"6140","element":"DocNumber"}]}`

	var fault qbo.Fault

	require.NoError(t, json.Unmarshal([]byte(body), &fault))
	assert.Equal(t, "ValidationFault", fault.Type)
	require.Len(t, fault.Errors, 1)
	assert.Equal(t, "6140", fault.Errors[0].Code)
	assert.Contains(t, fault.Error(), "Duplicate Document Number")
	assert.Contains(t, fault.Error(), "code 6140")
}

func TestNewFaultError_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		kind   qbo.ErrorKind
	}{
		{400, qbo.ErrorKindBadRequest},
		{401, qbo.ErrorKindAuth},
		{403, qbo.ErrorKindAuth},
		{404, qbo.ErrorKindBadRequest},
		{429, qbo.ErrorKindThrottled},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			t.Parallel()

			err := qbo.NewFaultError(tt.status, &qbo.Fault{Errors: []qbo.FaultError{{Message: "m"}}})
			assert.Equal(t, tt.kind, err.Kind)
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("wrapped: %w", qbo.NewFaultError(404, &qbo.Fault{}))
	assert.True(t, qbo.IsNotFound(notFound))
	assert.False(t, qbo.IsAuthError(notFound))

	authErr := qbo.NewFaultError(401, &qbo.Fault{})
	assert.True(t, qbo.IsAuthError(authErr))

	throttled := qbo.NewFaultError(429, &qbo.Fault{})
	assert.True(t, qbo.IsThrottled(throttled))
	assert.True(t, qbo.IsThrottled(qbo.ErrThrottled))

	apiErr, ok := qbo.IsAPIError(notFound)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.StatusCode)

	_, ok = qbo.IsAPIError(errors.New("plain"))
	assert.False(t, ok)
}

func TestTransportAndDecodeErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	transport := qbo.NewTransportError(cause)
	assert.Equal(t, qbo.ErrorKindTransport, transport.Kind)
	assert.ErrorIs(t, transport, cause)

	decode := qbo.NewDecodeError(errors.New("unexpected end of JSON input"))
	assert.Equal(t, qbo.ErrorKindDecode, decode.Kind)
	assert.Contains(t, decode.Error(), "unexpected end of JSON input")
}

func TestBatchPartialFailureError(t *testing.T) {
	t.Parallel()

	partial := &qbo.BatchPartialFailureError{
		Missing: map[string]qbo.BatchOperation{
			"bId2": qbo.BatchQuery("select * from Invoice"),
		},
		Partial: []qbo.BatchResultPair{
			{BID: "bId1"},
			{BID: "bId3"},
		},
	}

	wrapped := fmt.Errorf("batch: %w", partial)

	extracted, ok := qbo.IsBatchPartialFailure(wrapped)
	require.True(t, ok)
	assert.Len(t, extracted.Missing, 1)
	assert.Len(t, extracted.Partial, 2)
	assert.Contains(t, extracted.Error(), "missing 1 of 3")
	assert.Contains(t, extracted.Error(), "bId2")
}
