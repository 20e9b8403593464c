package client

import (
	"context"

	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
)

// Client implements qbo.Client. Every sub-client shares the one Context, so
// all of them contend for the same rate limiter windows and credential.
type Client struct {
	context *Context

	invoices      *sendableClient[qbo.Invoice, *qbo.Invoice]
	salesReceipts *sendableClient[qbo.SalesReceipt, *qbo.SalesReceipt]
	estimates     *sendableClient[qbo.Estimate, *qbo.Estimate]
	payments      *entityClient[qbo.Payment, *qbo.Payment]
	bills         *entityClient[qbo.Bill, *qbo.Bill]
	vendors       *entityClient[qbo.Vendor, *qbo.Vendor]
	customers     *entityClient[qbo.Customer, *qbo.Customer]
	employees     *entityClient[qbo.Employee, *qbo.Employee]
	items         *entityClient[qbo.Item, *qbo.Item]
	accounts      *entityClient[qbo.Account, *qbo.Account]
	company       *companyClient
	attachments   *attachmentsClient
	batch         *batchClient
	reports       *reportsClient
	cdc           *cdcClient
}

// New builds the full client over an assembled Context.
func New(c *Context) *Client {
	return &Client{
		context:       c,
		invoices:      newSendableClient[qbo.Invoice, *qbo.Invoice](c),
		salesReceipts: newSendableClient[qbo.SalesReceipt, *qbo.SalesReceipt](c),
		estimates:     newSendableClient[qbo.Estimate, *qbo.Estimate](c),
		payments:      newEntityClient[qbo.Payment, *qbo.Payment](c),
		bills:         newEntityClient[qbo.Bill, *qbo.Bill](c),
		vendors:       newEntityClient[qbo.Vendor, *qbo.Vendor](c),
		customers:     newEntityClient[qbo.Customer, *qbo.Customer](c),
		employees:     newEntityClient[qbo.Employee, *qbo.Employee](c),
		items:         newEntityClient[qbo.Item, *qbo.Item](c),
		accounts:      newEntityClient[qbo.Account, *qbo.Account](c),
		company:       newCompanyClient(c),
		attachments:   newAttachmentsClient(c),
		batch:         newBatchClient(c),
		reports:       newReportsClient(c),
		cdc:           newCDCClient(c),
	}
}

func (c *Client) Invoices() qbo.SendableEntity[qbo.Invoice] { return c.invoices }

func (c *Client) SalesReceipts() qbo.SendableEntity[qbo.SalesReceipt] { return c.salesReceipts }

func (c *Client) Estimates() qbo.SendableEntity[qbo.Estimate] { return c.estimates }

func (c *Client) Payments() qbo.EntityCRUD[qbo.Payment] { return c.payments }

func (c *Client) Bills() qbo.EntityCRUD[qbo.Bill] { return c.bills }

func (c *Client) Vendors() qbo.EntityCRUD[qbo.Vendor] { return c.vendors }

func (c *Client) Customers() qbo.EntityCRUD[qbo.Customer] { return c.customers }

func (c *Client) Employees() qbo.EntityCRUD[qbo.Employee] { return c.employees }

func (c *Client) Items() qbo.EntityCRUD[qbo.Item] { return c.items }

func (c *Client) Accounts() qbo.EntityCRUD[qbo.Account] { return c.accounts }

func (c *Client) Company() qbo.CompanyClient { return c.company }

func (c *Client) Attachments() qbo.AttachmentsClient { return c.attachments }

func (c *Client) Batch() qbo.BatchClient { return c.batch }

func (c *Client) Reports() qbo.ReportsClient { return c.reports }

func (c *Client) ChangeDataCapture() qbo.ChangeDataCaptureClient { return c.cdc }

func (c *Client) CompanyID() string { return c.context.CompanyID() }

func (c *Client) RefreshToken(ctx context.Context) error { return c.context.RefreshToken(ctx) }
