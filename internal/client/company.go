package client

import (
	"context"
	"net/http"

	qbohttp "github.com/ledgerkit-io/qbo-client/internal/http"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
)

// companyClient implements qbo.CompanyClient. The company record's ID is the
// realm ID itself; it cannot be created or deleted.
type companyClient struct {
	context *Context
}

func newCompanyClient(c *Context) *companyClient {
	return &companyClient{context: c}
}

// GetCompanyInfo reads the company file record.
func (c *companyClient) GetCompanyInfo(ctx context.Context) (*qbo.CompanyInfo, error) {
	req := &qbohttp.Request{
		Method: http.MethodGet,
		Path:   c.context.path("companyinfo", c.context.companyID),
	}

	return Execute(ctx, c.context, req, decodeCompanyInfo)
}

// UpdateCompanyInfo sparse-updates the company record. The record must carry
// its ID and current sync token.
func (c *companyClient) UpdateCompanyInfo(ctx context.Context, info *qbo.CompanyInfo) (*qbo.CompanyInfo, error) {
	err := requireIdentity(info)
	if err != nil {
		return nil, err
	}

	req := &qbohttp.Request{
		Method: http.MethodPost,
		Path:   c.context.path("companyinfo"),
		Body:   sparseUpdate{CompanyInfo: info, Sparse: true},
	}

	return Execute(ctx, c.context, req, decodeCompanyInfo)
}

func decodeCompanyInfo(body []byte) (*qbo.CompanyInfo, error) {
	return qbo.UnmarshalEntity[qbo.CompanyInfo]("CompanyInfo", body)
}

// sparseUpdate adds the sparse flag the companyinfo endpoint requires.
type sparseUpdate struct {
	*qbo.CompanyInfo

	Sparse bool `json:"sparse"`
}
