package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	qbohttp "github.com/ledgerkit-io/qbo-client/internal/http"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
)

// cdcClient implements qbo.ChangeDataCaptureClient.
type cdcClient struct {
	context *Context
}

func newCDCClient(c *Context) *cdcClient {
	return &cdcClient{context: c}
}

// Changes returns every entity of the named types changed since the given
// time. The provider caps the lookback at 30 days.
func (c *cdcClient) Changes(ctx context.Context, entityNames []string, since time.Time) (*qbo.CDCResponse, error) {
	req := &qbohttp.Request{
		Method: http.MethodGet,
		Path:   c.context.path("cdc"),
		Query: url.Values{
			"entities":     []string{strings.Join(entityNames, ",")},
			"changedSince": []string{since.UTC().Format(time.RFC3339)},
		},
	}

	return Execute(ctx, c.context, req, qbo.UnmarshalCDCResponse)
}
