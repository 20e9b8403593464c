package qbo

import (
	"context"
	"time"
)

// EntityCRUD is the operation set shared by every entity client. Update and
// Delete require the entity's current sync token; the provider rejects stale
// tokens so two writers cannot silently overwrite each other.
type EntityCRUD[T any] interface {
	Create(ctx context.Context, entity *T) (*T, error)
	Get(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, entity *T) (*T, error)
	Delete(ctx context.Context, entity *T) (*Deleted, error)
	Query(ctx context.Context, statement string) ([]T, error)
	QueryAll(ctx context.Context) ([]T, error)
}

// SendableEntity adds the operations available on transactions that can be
// delivered to a customer.
type SendableEntity[T any] interface {
	EntityCRUD[T]

	// SendEmail delivers the transaction to sendTo, or to the address on
	// file when sendTo is empty.
	SendEmail(ctx context.Context, id, sendTo string) (*T, error)

	// PDF renders the transaction as a PDF document.
	PDF(ctx context.Context, id string) ([]byte, error)
}

// SalesClients groups the revenue-side entity clients.
type SalesClients interface {
	Invoices() SendableEntity[Invoice]
	SalesReceipts() SendableEntity[SalesReceipt]
	Estimates() SendableEntity[Estimate]
	Payments() EntityCRUD[Payment]
}

// PurchasingClients groups the expense-side entity clients.
type PurchasingClients interface {
	Bills() EntityCRUD[Bill]
	Vendors() EntityCRUD[Vendor]
}

// DirectoryClients groups the name-list entity clients.
type DirectoryClients interface {
	Customers() EntityCRUD[Customer]
	Employees() EntityCRUD[Employee]
	Items() EntityCRUD[Item]
	Accounts() EntityCRUD[Account]
}

// CompanyClient reads and sparse-updates the company file record.
type CompanyClient interface {
	GetCompanyInfo(ctx context.Context) (*CompanyInfo, error)
	UpdateCompanyInfo(ctx context.Context, info *CompanyInfo) (*CompanyInfo, error)
}

// AttachmentsClient manages file attachments, including multipart uploads.
type AttachmentsClient interface {
	EntityCRUD[Attachable]

	// Upload sends file content together with its Attachable metadata in a
	// single multipart request.
	Upload(ctx context.Context, attachable *Attachable, content []byte) (*Attachable, error)
}

// BatchClient executes up to 30 operations in one request. Results come back
// in the same order the operations were given.
type BatchClient interface {
	Execute(ctx context.Context, operations []BatchOperation) ([]BatchResultPair, error)
}

// ReportsClient runs the provider's named financial reports.
type ReportsClient interface {
	Run(ctx context.Context, name string, params map[string]string) (*Report, error)
	ProfitAndLoss(ctx context.Context, startDate, endDate string) (*Report, error)
	BalanceSheet(ctx context.Context, asOfDate string) (*Report, error)
}

// ChangeDataCaptureClient polls for entities changed since a point in time.
type ChangeDataCaptureClient interface {
	Changes(ctx context.Context, entityNames []string, since time.Time) (*CDCResponse, error)
}

// Client is the full typed API surface.
type Client interface {
	SalesClients
	PurchasingClients
	DirectoryClients

	Company() CompanyClient
	Attachments() AttachmentsClient
	Batch() BatchClient
	Reports() ReportsClient
	ChangeDataCapture() ChangeDataCaptureClient

	// CompanyID returns the realm this client is bound to.
	CompanyID() string

	// RefreshToken forces a credential refresh regardless of expiry.
	RefreshToken(ctx context.Context) error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a qbo.Client.
//
// # Authentication
//
// Provide either an AccessToken, a RefreshToken with ClientID/ClientSecret,
// or both. A bare access token is used as-is until the provider rejects it;
// with a refresh token the client renews the credential on its own whenever
// the stored one is within the expiry buffer, unless DisableAutoRefresh is
// set.
//
// # Token URL discovery
//
// The token endpoint is taken from the environment's discovery document,
// fetched once at client construction. TokenURL overrides it for tests and
// nonstandard deployments.
type Config struct {
	// CompanyID is the realm ID of the company file. Required.
	CompanyID string

	// Environment selects sandbox or production. Defaults to sandbox.
	Environment Environment

	// ClientID and ClientSecret authenticate the application to the token
	// endpoint. Required when a RefreshToken is used.
	ClientID     string
	ClientSecret string

	// AccessToken is used directly as a Bearer token when set.
	AccessToken string

	// RefreshToken lets the client renew expired access tokens.
	RefreshToken string

	// TokenURL overrides the token endpoint from the discovery document.
	TokenURL string

	// BaseURL overrides the environment's API base URL. Intended for tests.
	BaseURL string

	// DisableAutoRefresh turns off expiry-driven refresh. Calls then fail
	// with an auth error once the token lapses until RefreshToken is called
	// explicitly.
	DisableAutoRefresh bool

	// MinorVersion overrides the API minor version sent with every request.
	MinorVersion string

	// HTTPTimeout bounds each HTTP call. Context deadlines still apply on
	// top of it.
	HTTPTimeout time.Duration

	// RetryMax is the number of transport-level retries for connection
	// failures. Zero means a failed call is surfaced immediately.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration

	// Debug enables verbose HTTP request/response logging when a Logger is
	// provided.
	Debug bool

	// Logger is the structured logger used by the HTTP layer and helpers.
	Logger Logger

	// Cache configures response caching for GET requests. Nil disables
	// caching.
	Cache *CacheConfig

	// Interceptors is an optional request/response interceptor chain run
	// around every HTTP call.
	Interceptors *InterceptorChain

	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// Report is the provider's generic report envelope. Reports share one shape
// regardless of which report ran; rows nest arbitrarily deep.
type Report struct {
	Header  ReportHeader  `json:"Header"  yaml:"header"`
	Columns ReportColumns `json:"Columns" yaml:"columns"`
	Rows    ReportRows    `json:"Rows"    yaml:"rows"`
}

// ReportHeader describes the report that was run.
type ReportHeader struct {
	ReportName  string `json:"ReportName"            yaml:"report_name"`
	Time        string `json:"Time,omitempty"        yaml:"time,omitempty"`
	StartPeriod string `json:"StartPeriod,omitempty" yaml:"start_period,omitempty"`
	EndPeriod   string `json:"EndPeriod,omitempty"   yaml:"end_period,omitempty"`
	Currency    string `json:"Currency,omitempty"    yaml:"currency,omitempty"`
}

// ReportColumns is the column metadata block.
type ReportColumns struct {
	Column []ReportColumn `json:"Column" yaml:"column"`
}

// ReportColumn describes one report column.
type ReportColumn struct {
	ColTitle string `json:"ColTitle" yaml:"col_title"`
	ColType  string `json:"ColType"  yaml:"col_type"`
}

// ReportRows is a block of rows, possibly nested under section rows.
type ReportRows struct {
	Row []ReportRow `json:"Row,omitempty" yaml:"row,omitempty"`
}

// ReportRow is one data or section row. Section rows carry their children in
// Rows and their subtotal in Summary.
type ReportRow struct {
	Type    string       `json:"type,omitempty"    yaml:"type,omitempty"`
	Group   string       `json:"group,omitempty"   yaml:"group,omitempty"`
	ColData []ReportCell `json:"ColData,omitempty" yaml:"col_data,omitempty"`
	Header  *ReportCells `json:"Header,omitempty"  yaml:"header,omitempty"`
	Rows    *ReportRows  `json:"Rows,omitempty"    yaml:"rows,omitempty"`
	Summary *ReportCells `json:"Summary,omitempty" yaml:"summary,omitempty"`
}

// ReportCells wraps a row's cell list.
type ReportCells struct {
	ColData []ReportCell `json:"ColData" yaml:"col_data"`
}

// ReportCell is one report cell value.
type ReportCell struct {
	Value string `json:"value"        yaml:"value"`
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
}

// CDCResponse is the change data capture envelope: one QueryResponse-shaped
// block per requested entity type, in request order.
type CDCResponse struct {
	Changes []CDCChangeSet
	Time    string
}

// CDCChangeSet holds the changed rows for one entity type. Deleted entities
// appear with status "Deleted" and only their ID populated.
type CDCChangeSet struct {
	EntityName string
	Entities   []CDCEntity
}

// CDCEntity is one changed entity, kept raw alongside the fields needed to
// route it.
type CDCEntity struct {
	ID     string
	Status string
	Raw    []byte
}
