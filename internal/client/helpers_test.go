package client

import (
	qbohttp "github.com/ledgerkit-io/qbo-client/internal/http"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
)

// newTestContext builds a Context against a test server, without auth or
// auto-refresh.
func newTestContext(serverURL string) *Context {
	return NewContext(&ContextConfig{
		CompanyID:   "123",
		Environment: qbo.Sandbox,
		HTTPClient:  qbohttp.NewClient(serverURL, nil),
	})
}
