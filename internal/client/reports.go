package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	qbohttp "github.com/ledgerkit-io/qbo-client/internal/http"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
)

// reportsClient implements qbo.ReportsClient.
type reportsClient struct {
	context *Context
}

func newReportsClient(c *Context) *reportsClient {
	return &reportsClient{context: c}
}

// Run executes the named report with the given parameters.
func (r *reportsClient) Run(ctx context.Context, name string, params map[string]string) (*qbo.Report, error) {
	query := url.Values{}
	for key, value := range params {
		query.Set(key, value)
	}

	req := &qbohttp.Request{
		Method: http.MethodGet,
		Path:   r.context.path("reports", name),
		Query:  query,
	}

	return Execute(ctx, r.context, req, func(body []byte) (*qbo.Report, error) {
		var report qbo.Report

		err := json.Unmarshal(body, &report)
		if err != nil {
			return nil, qbo.NewDecodeError(fmt.Errorf("parsing %s report: %w", name, err))
		}

		return &report, nil
	})
}

// ProfitAndLoss runs the profit and loss report over a date range. Dates are
// YYYY-MM-DD.
func (r *reportsClient) ProfitAndLoss(ctx context.Context, startDate, endDate string) (*qbo.Report, error) {
	return r.Run(ctx, "ProfitAndLoss", map[string]string{
		"start_date": startDate,
		"end_date":   endDate,
	})
}

// BalanceSheet runs the balance sheet report as of a date.
func (r *reportsClient) BalanceSheet(ctx context.Context, asOfDate string) (*qbo.Report, error) {
	return r.Run(ctx, "BalanceSheet", map[string]string{
		"start_date": asOfDate,
		"end_date":   asOfDate,
	})
}
