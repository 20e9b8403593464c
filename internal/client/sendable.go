package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ledgerkit-io/qbo-client/internal/constants"
	qbohttp "github.com/ledgerkit-io/qbo-client/internal/http"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
)

// sendableClient layers delivery operations over an entityClient for
// transactions that can be emailed or rendered as PDF.
type sendableClient[T any, PT interface {
	*T
	qbo.Entity
}] struct {
	*entityClient[T, PT]
}

func newSendableClient[T any, PT interface {
	*T
	qbo.Entity
}](c *Context) *sendableClient[T, PT] {
	return &sendableClient[T, PT]{entityClient: newEntityClient[T, PT](c)}
}

// SendEmail delivers the transaction to sendTo, or to the address already on
// the transaction when sendTo is empty. The provider returns the updated
// entity with its delivery info set.
func (s *sendableClient[T, PT]) SendEmail(ctx context.Context, id, sendTo string) (*T, error) {
	if id == "" {
		return nil, qbo.ErrMissingEntityID
	}

	query := url.Values{}
	if sendTo != "" {
		query.Set("sendTo", sendTo)
	}

	req := &qbohttp.Request{
		Method: http.MethodPost,
		Path:   s.context.path(s.segment, id, "send"),
		Query:  query,
	}

	return Execute(ctx, s.context, req, s.decode)
}

// PDF renders the transaction as a PDF document and returns the raw bytes.
func (s *sendableClient[T, PT]) PDF(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, qbo.ErrMissingEntityID
	}

	req := &qbohttp.Request{
		Method: http.MethodGet,
		Path:   s.context.path(s.segment, id, "pdf"),
		Accept: constants.ContentTypePDF,
	}

	return executeRaw(ctx, s.context, req)
}
