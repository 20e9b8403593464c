package qbo

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Entity is implemented by every resource type the API persists. EntityName
// is the PascalCase resource name used both in URL paths (lowercased) and as
// the JSON wrapper key in responses.
type Entity interface {
	EntityName() string
	EntityID() string
	EntitySyncToken() string
}

// Invoice is a sales transaction billed to a customer.
type Invoice struct {
	ID           string           `json:"Id,omitempty"           yaml:"id,omitempty"`
	SyncToken    string           `json:"SyncToken,omitempty"    yaml:"sync_token,omitempty"`
	MetaData     *MetaData        `json:"MetaData,omitempty"     yaml:"meta_data,omitempty"`
	DocNumber    string           `json:"DocNumber,omitempty"    yaml:"doc_number,omitempty"`
	TxnDate      *Date            `json:"TxnDate,omitempty"      yaml:"txn_date,omitempty"`
	DueDate      *Date            `json:"DueDate,omitempty"      yaml:"due_date,omitempty"`
	CustomerRef  *Ref             `json:"CustomerRef,omitempty"  yaml:"customer_ref,omitempty"`
	BillEmail    *EmailAddress    `json:"BillEmail,omitempty"    yaml:"bill_email,omitempty"`
	BillAddr     *PhysicalAddress `json:"BillAddr,omitempty"     yaml:"bill_addr,omitempty"`
	ShipAddr     *PhysicalAddress `json:"ShipAddr,omitempty"     yaml:"ship_addr,omitempty"`
	Line         []Line           `json:"Line,omitempty"         yaml:"line,omitempty"`
	LinkedTxn    []LinkedTxn      `json:"LinkedTxn,omitempty"    yaml:"linked_txn,omitempty"`
	TxnTaxDetail *TxnTaxDetail    `json:"TxnTaxDetail,omitempty" yaml:"txn_tax_detail,omitempty"`
	CustomerMemo *Memo            `json:"CustomerMemo,omitempty" yaml:"customer_memo,omitempty"`
	TotalAmt     float64          `json:"TotalAmt,omitempty"     yaml:"total_amt,omitempty"`
	Balance      float64          `json:"Balance,omitempty"      yaml:"balance,omitempty"`
	PrivateNote  string           `json:"PrivateNote,omitempty"  yaml:"private_note,omitempty"`
}

// Memo wraps a memo value field.
type Memo struct {
	Value string `json:"value" yaml:"value"`
}

func (i *Invoice) EntityName() string      { return "Invoice" }
func (i *Invoice) EntityID() string        { return i.ID }
func (i *Invoice) EntitySyncToken() string { return i.SyncToken }

// SalesReceipt is a sale paid at the time of the transaction.
type SalesReceipt struct {
	ID                  string        `json:"Id,omitempty"                  yaml:"id,omitempty"`
	SyncToken           string        `json:"SyncToken,omitempty"           yaml:"sync_token,omitempty"`
	MetaData            *MetaData     `json:"MetaData,omitempty"            yaml:"meta_data,omitempty"`
	DocNumber           string        `json:"DocNumber,omitempty"           yaml:"doc_number,omitempty"`
	TxnDate             *Date         `json:"TxnDate,omitempty"             yaml:"txn_date,omitempty"`
	CustomerRef         *Ref          `json:"CustomerRef,omitempty"         yaml:"customer_ref,omitempty"`
	BillEmail           *EmailAddress `json:"BillEmail,omitempty"           yaml:"bill_email,omitempty"`
	Line                []Line        `json:"Line,omitempty"                yaml:"line,omitempty"`
	TxnTaxDetail        *TxnTaxDetail `json:"TxnTaxDetail,omitempty"        yaml:"txn_tax_detail,omitempty"`
	PaymentMethodRef    *Ref          `json:"PaymentMethodRef,omitempty"    yaml:"payment_method_ref,omitempty"`
	DepositToAccountRef *Ref          `json:"DepositToAccountRef,omitempty" yaml:"deposit_to_account_ref,omitempty"`
	TotalAmt            float64       `json:"TotalAmt,omitempty"            yaml:"total_amt,omitempty"`
	PrivateNote         string        `json:"PrivateNote,omitempty"         yaml:"private_note,omitempty"`
}

func (s *SalesReceipt) EntityName() string      { return "SalesReceipt" }
func (s *SalesReceipt) EntityID() string        { return s.ID }
func (s *SalesReceipt) EntitySyncToken() string { return s.SyncToken }

// Customer is a buyer the company sells to.
type Customer struct {
	ID               string           `json:"Id,omitempty"               yaml:"id,omitempty"`
	SyncToken        string           `json:"SyncToken,omitempty"        yaml:"sync_token,omitempty"`
	MetaData         *MetaData        `json:"MetaData,omitempty"         yaml:"meta_data,omitempty"`
	DisplayName      string           `json:"DisplayName,omitempty"      yaml:"display_name,omitempty"`
	GivenName        string           `json:"GivenName,omitempty"        yaml:"given_name,omitempty"`
	FamilyName       string           `json:"FamilyName,omitempty"       yaml:"family_name,omitempty"`
	CompanyName      string           `json:"CompanyName,omitempty"      yaml:"company_name,omitempty"`
	PrimaryEmailAddr *EmailAddress    `json:"PrimaryEmailAddr,omitempty" yaml:"primary_email_addr,omitempty"`
	PrimaryPhone     *PhoneNumber     `json:"PrimaryPhone,omitempty"     yaml:"primary_phone,omitempty"`
	BillAddr         *PhysicalAddress `json:"BillAddr,omitempty"         yaml:"bill_addr,omitempty"`
	ShipAddr         *PhysicalAddress `json:"ShipAddr,omitempty"         yaml:"ship_addr,omitempty"`
	Balance          float64          `json:"Balance,omitempty"          yaml:"balance,omitempty"`
	Active           *bool            `json:"Active,omitempty"           yaml:"active,omitempty"`
	Taxable          *bool            `json:"Taxable,omitempty"          yaml:"taxable,omitempty"`
	Notes            string           `json:"Notes,omitempty"            yaml:"notes,omitempty"`
}

func (c *Customer) EntityName() string      { return "Customer" }
func (c *Customer) EntityID() string        { return c.ID }
func (c *Customer) EntitySyncToken() string { return c.SyncToken }

// Vendor is a supplier the company buys from.
type Vendor struct {
	ID               string           `json:"Id,omitempty"               yaml:"id,omitempty"`
	SyncToken        string           `json:"SyncToken,omitempty"        yaml:"sync_token,omitempty"`
	MetaData         *MetaData        `json:"MetaData,omitempty"         yaml:"meta_data,omitempty"`
	DisplayName      string           `json:"DisplayName,omitempty"      yaml:"display_name,omitempty"`
	CompanyName      string           `json:"CompanyName,omitempty"      yaml:"company_name,omitempty"`
	PrimaryEmailAddr *EmailAddress    `json:"PrimaryEmailAddr,omitempty" yaml:"primary_email_addr,omitempty"`
	PrimaryPhone     *PhoneNumber     `json:"PrimaryPhone,omitempty"     yaml:"primary_phone,omitempty"`
	WebAddr          *WebSiteAddress  `json:"WebAddr,omitempty"          yaml:"web_addr,omitempty"`
	BillAddr         *PhysicalAddress `json:"BillAddr,omitempty"         yaml:"bill_addr,omitempty"`
	Balance          float64          `json:"Balance,omitempty"          yaml:"balance,omitempty"`
	Vendor1099       *bool            `json:"Vendor1099,omitempty"       yaml:"vendor_1099,omitempty"`
	Active           *bool            `json:"Active,omitempty"           yaml:"active,omitempty"`
	AcctNum          string           `json:"AcctNum,omitempty"          yaml:"acct_num,omitempty"`
}

func (v *Vendor) EntityName() string      { return "Vendor" }
func (v *Vendor) EntityID() string        { return v.ID }
func (v *Vendor) EntitySyncToken() string { return v.SyncToken }

// Payment records money received against one or more transactions.
type Payment struct {
	ID                  string      `json:"Id,omitempty"                  yaml:"id,omitempty"`
	SyncToken           string      `json:"SyncToken,omitempty"           yaml:"sync_token,omitempty"`
	MetaData            *MetaData   `json:"MetaData,omitempty"            yaml:"meta_data,omitempty"`
	TxnDate             *Date       `json:"TxnDate,omitempty"             yaml:"txn_date,omitempty"`
	CustomerRef         *Ref        `json:"CustomerRef,omitempty"         yaml:"customer_ref,omitempty"`
	DepositToAccountRef *Ref        `json:"DepositToAccountRef,omitempty" yaml:"deposit_to_account_ref,omitempty"`
	PaymentMethodRef    *Ref        `json:"PaymentMethodRef,omitempty"    yaml:"payment_method_ref,omitempty"`
	PaymentRefNum       string      `json:"PaymentRefNum,omitempty"       yaml:"payment_ref_num,omitempty"`
	Line                []Line      `json:"Line,omitempty"                yaml:"line,omitempty"`
	LinkedTxn           []LinkedTxn `json:"LinkedTxn,omitempty"           yaml:"linked_txn,omitempty"`
	TotalAmt            float64     `json:"TotalAmt,omitempty"            yaml:"total_amt,omitempty"`
	UnappliedAmt        float64     `json:"UnappliedAmt,omitempty"        yaml:"unapplied_amt,omitempty"`
}

func (p *Payment) EntityName() string      { return "Payment" }
func (p *Payment) EntityID() string        { return p.ID }
func (p *Payment) EntitySyncToken() string { return p.SyncToken }

// Bill is an amount owed to a vendor.
type Bill struct {
	ID           string      `json:"Id,omitempty"           yaml:"id,omitempty"`
	SyncToken    string      `json:"SyncToken,omitempty"    yaml:"sync_token,omitempty"`
	MetaData     *MetaData   `json:"MetaData,omitempty"     yaml:"meta_data,omitempty"`
	DocNumber    string      `json:"DocNumber,omitempty"    yaml:"doc_number,omitempty"`
	TxnDate      *Date       `json:"TxnDate,omitempty"      yaml:"txn_date,omitempty"`
	DueDate      *Date       `json:"DueDate,omitempty"      yaml:"due_date,omitempty"`
	VendorRef    *Ref        `json:"VendorRef,omitempty"    yaml:"vendor_ref,omitempty"`
	APAccountRef *Ref        `json:"APAccountRef,omitempty" yaml:"ap_account_ref,omitempty"`
	Line         []Line      `json:"Line,omitempty"         yaml:"line,omitempty"`
	LinkedTxn    []LinkedTxn `json:"LinkedTxn,omitempty"    yaml:"linked_txn,omitempty"`
	TotalAmt     float64     `json:"TotalAmt,omitempty"     yaml:"total_amt,omitempty"`
	Balance      float64     `json:"Balance,omitempty"      yaml:"balance,omitempty"`
	PrivateNote  string      `json:"PrivateNote,omitempty"  yaml:"private_note,omitempty"`
}

func (b *Bill) EntityName() string      { return "Bill" }
func (b *Bill) EntityID() string        { return b.ID }
func (b *Bill) EntitySyncToken() string { return b.SyncToken }

// Item is a product or service that appears on transaction lines.
type Item struct {
	ID                string    `json:"Id,omitempty"                yaml:"id,omitempty"`
	SyncToken         string    `json:"SyncToken,omitempty"         yaml:"sync_token,omitempty"`
	MetaData          *MetaData `json:"MetaData,omitempty"          yaml:"meta_data,omitempty"`
	Name              string    `json:"Name,omitempty"              yaml:"name,omitempty"`
	Description       string    `json:"Description,omitempty"       yaml:"description,omitempty"`
	Type              string    `json:"Type,omitempty"              yaml:"type,omitempty"`
	Active            *bool     `json:"Active,omitempty"            yaml:"active,omitempty"`
	UnitPrice         float64   `json:"UnitPrice,omitempty"         yaml:"unit_price,omitempty"`
	PurchaseCost      float64   `json:"PurchaseCost,omitempty"      yaml:"purchase_cost,omitempty"`
	IncomeAccountRef  *Ref      `json:"IncomeAccountRef,omitempty"  yaml:"income_account_ref,omitempty"`
	ExpenseAccountRef *Ref      `json:"ExpenseAccountRef,omitempty" yaml:"expense_account_ref,omitempty"`
	AssetAccountRef   *Ref      `json:"AssetAccountRef,omitempty"   yaml:"asset_account_ref,omitempty"`
	TrackQtyOnHand    *bool     `json:"TrackQtyOnHand,omitempty"    yaml:"track_qty_on_hand,omitempty"`
	QtyOnHand         float64   `json:"QtyOnHand,omitempty"         yaml:"qty_on_hand,omitempty"`
	InvStartDate      *Date     `json:"InvStartDate,omitempty"      yaml:"inv_start_date,omitempty"`
	Taxable           *bool     `json:"Taxable,omitempty"           yaml:"taxable,omitempty"`
}

func (i *Item) EntityName() string      { return "Item" }
func (i *Item) EntityID() string        { return i.ID }
func (i *Item) EntitySyncToken() string { return i.SyncToken }

// Account is one entry in the chart of accounts.
type Account struct {
	ID                 string    `json:"Id,omitempty"                 yaml:"id,omitempty"`
	SyncToken          string    `json:"SyncToken,omitempty"          yaml:"sync_token,omitempty"`
	MetaData           *MetaData `json:"MetaData,omitempty"           yaml:"meta_data,omitempty"`
	Name               string    `json:"Name,omitempty"               yaml:"name,omitempty"`
	AcctNum            string    `json:"AcctNum,omitempty"            yaml:"acct_num,omitempty"`
	AccountType        string    `json:"AccountType,omitempty"        yaml:"account_type,omitempty"`
	AccountSubType     string    `json:"AccountSubType,omitempty"     yaml:"account_sub_type,omitempty"`
	Classification     string    `json:"Classification,omitempty"     yaml:"classification,omitempty"`
	CurrentBalance     float64   `json:"CurrentBalance,omitempty"     yaml:"current_balance,omitempty"`
	CurrencyRef        *Ref      `json:"CurrencyRef,omitempty"        yaml:"currency_ref,omitempty"`
	ParentRef          *Ref      `json:"ParentRef,omitempty"          yaml:"parent_ref,omitempty"`
	SubAccount         *bool     `json:"SubAccount,omitempty"         yaml:"sub_account,omitempty"`
	Active             *bool     `json:"Active,omitempty"             yaml:"active,omitempty"`
	FullyQualifiedName string    `json:"FullyQualifiedName,omitempty" yaml:"fully_qualified_name,omitempty"`
}

func (a *Account) EntityName() string      { return "Account" }
func (a *Account) EntityID() string        { return a.ID }
func (a *Account) EntitySyncToken() string { return a.SyncToken }

// Estimate is a proposed sales transaction not yet invoiced.
type Estimate struct {
	ID             string        `json:"Id,omitempty"             yaml:"id,omitempty"`
	SyncToken      string        `json:"SyncToken,omitempty"      yaml:"sync_token,omitempty"`
	MetaData       *MetaData     `json:"MetaData,omitempty"       yaml:"meta_data,omitempty"`
	DocNumber      string        `json:"DocNumber,omitempty"      yaml:"doc_number,omitempty"`
	TxnDate        *Date         `json:"TxnDate,omitempty"        yaml:"txn_date,omitempty"`
	ExpirationDate *Date         `json:"ExpirationDate,omitempty" yaml:"expiration_date,omitempty"`
	TxnStatus      string        `json:"TxnStatus,omitempty"      yaml:"txn_status,omitempty"`
	CustomerRef    *Ref          `json:"CustomerRef,omitempty"    yaml:"customer_ref,omitempty"`
	BillEmail      *EmailAddress `json:"BillEmail,omitempty"      yaml:"bill_email,omitempty"`
	Line           []Line        `json:"Line,omitempty"           yaml:"line,omitempty"`
	TxnTaxDetail   *TxnTaxDetail `json:"TxnTaxDetail,omitempty"   yaml:"txn_tax_detail,omitempty"`
	TotalAmt       float64       `json:"TotalAmt,omitempty"       yaml:"total_amt,omitempty"`
}

func (e *Estimate) EntityName() string      { return "Estimate" }
func (e *Estimate) EntityID() string        { return e.ID }
func (e *Estimate) EntitySyncToken() string { return e.SyncToken }

// Employee is a person on the company payroll.
type Employee struct {
	ID               string           `json:"Id,omitempty"               yaml:"id,omitempty"`
	SyncToken        string           `json:"SyncToken,omitempty"        yaml:"sync_token,omitempty"`
	MetaData         *MetaData        `json:"MetaData,omitempty"         yaml:"meta_data,omitempty"`
	DisplayName      string           `json:"DisplayName,omitempty"      yaml:"display_name,omitempty"`
	GivenName        string           `json:"GivenName,omitempty"        yaml:"given_name,omitempty"`
	FamilyName       string           `json:"FamilyName,omitempty"       yaml:"family_name,omitempty"`
	PrimaryEmailAddr *EmailAddress    `json:"PrimaryEmailAddr,omitempty" yaml:"primary_email_addr,omitempty"`
	PrimaryPhone     *PhoneNumber     `json:"PrimaryPhone,omitempty"     yaml:"primary_phone,omitempty"`
	PrimaryAddr      *PhysicalAddress `json:"PrimaryAddr,omitempty"      yaml:"primary_addr,omitempty"`
	EmployeeNumber   string           `json:"EmployeeNumber,omitempty"   yaml:"employee_number,omitempty"`
	HiredDate        *Date            `json:"HiredDate,omitempty"        yaml:"hired_date,omitempty"`
	ReleasedDate     *Date            `json:"ReleasedDate,omitempty"     yaml:"released_date,omitempty"`
	Active           *bool            `json:"Active,omitempty"           yaml:"active,omitempty"`
	BillableTime     *bool            `json:"BillableTime,omitempty"     yaml:"billable_time,omitempty"`
	BillRate         float64          `json:"BillRate,omitempty"         yaml:"bill_rate,omitempty"`
}

func (e *Employee) EntityName() string      { return "Employee" }
func (e *Employee) EntityID() string        { return e.ID }
func (e *Employee) EntitySyncToken() string { return e.SyncToken }

// CompanyInfo describes the company file itself. It is read and sparse-update
// only; the provider never allows creating or deleting it.
type CompanyInfo struct {
	ID                   string           `json:"Id,omitempty"                   yaml:"id,omitempty"`
	SyncToken            string           `json:"SyncToken,omitempty"            yaml:"sync_token,omitempty"`
	MetaData             *MetaData        `json:"MetaData,omitempty"             yaml:"meta_data,omitempty"`
	CompanyName          string           `json:"CompanyName,omitempty"          yaml:"company_name,omitempty"`
	LegalName            string           `json:"LegalName,omitempty"            yaml:"legal_name,omitempty"`
	CompanyAddr          *PhysicalAddress `json:"CompanyAddr,omitempty"          yaml:"company_addr,omitempty"`
	LegalAddr            *PhysicalAddress `json:"LegalAddr,omitempty"            yaml:"legal_addr,omitempty"`
	PrimaryPhone         *PhoneNumber     `json:"PrimaryPhone,omitempty"         yaml:"primary_phone,omitempty"`
	Email                *EmailAddress    `json:"Email,omitempty"                yaml:"email,omitempty"`
	WebAddr              *WebSiteAddress  `json:"WebAddr,omitempty"              yaml:"web_addr,omitempty"`
	CompanyStartDate     *Date            `json:"CompanyStartDate,omitempty"     yaml:"company_start_date,omitempty"`
	FiscalYearStartMonth string           `json:"FiscalYearStartMonth,omitempty" yaml:"fiscal_year_start_month,omitempty"`
	Country              string           `json:"Country,omitempty"              yaml:"country,omitempty"`
}

func (c *CompanyInfo) EntityName() string      { return "CompanyInfo" }
func (c *CompanyInfo) EntityID() string        { return c.ID }
func (c *CompanyInfo) EntitySyncToken() string { return c.SyncToken }

// AttachableRef links an attachment to the entity it is attached to.
type AttachableRef struct {
	EntityRef     *Ref  `json:"EntityRef,omitempty"     yaml:"entity_ref,omitempty"`
	IncludeOnSend *bool `json:"IncludeOnSend,omitempty" yaml:"include_on_send,omitempty"`
}

// Attachable is a file or note attached to other entities. File content is
// uploaded through the multipart upload endpoint, not through Create.
type Attachable struct {
	ID              string          `json:"Id,omitempty"              yaml:"id,omitempty"`
	SyncToken       string          `json:"SyncToken,omitempty"       yaml:"sync_token,omitempty"`
	MetaData        *MetaData       `json:"MetaData,omitempty"        yaml:"meta_data,omitempty"`
	FileName        string          `json:"FileName,omitempty"        yaml:"file_name,omitempty"`
	Note            string          `json:"Note,omitempty"            yaml:"note,omitempty"`
	ContentType     string          `json:"ContentType,omitempty"     yaml:"content_type,omitempty"`
	Size            int64           `json:"Size,omitempty"            yaml:"size,omitempty"`
	FileAccessURI   string          `json:"FileAccessUri,omitempty"   yaml:"file_access_uri,omitempty"`
	TempDownloadURI string          `json:"TempDownloadUri,omitempty" yaml:"temp_download_uri,omitempty"`
	AttachableRef   []AttachableRef `json:"AttachableRef,omitempty"   yaml:"attachable_ref,omitempty"`
}

func (a *Attachable) EntityName() string      { return "Attachable" }
func (a *Attachable) EntityID() string        { return a.ID }
func (a *Attachable) EntitySyncToken() string { return a.SyncToken }

// Deleted is the provider's acknowledgement of a delete operation.
type Deleted struct {
	ID     string `json:"Id"     yaml:"id"`
	Status string `json:"status" yaml:"status"`
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// EntityResponse is the single-entity envelope the provider wraps reads,
// creates, and updates in. The wrapper key is the entity name, so decoding
// looks the payload up by the expected key instead of relying on field tags.
type EntityResponse[T any] struct {
	Name   string
	Entity *T
	Time   string
}

// UnmarshalEntity decodes a response body of the form {"<name>": {...},
// "time": "..."} into the entity type.
func UnmarshalEntity[T any](name string, data []byte) (*T, error) {
	var envelope map[string]json.RawMessage

	err := json.Unmarshal(data, &envelope)
	if err != nil {
		return nil, fmt.Errorf("parsing entity envelope: %w", err)
	}

	raw, ok := envelope[name]
	if !ok {
		return nil, fmt.Errorf("entity envelope missing %q key: %w", name, errMissingEnvelopeKey)
	}

	entity := new(T)

	err = json.Unmarshal(raw, entity)
	if err != nil {
		return nil, fmt.Errorf("parsing %s payload: %w", name, err)
	}

	return entity, nil
}

var errMissingEnvelopeKey = errors.New("unexpected response shape")

// QueryResponse is the paged envelope returned by the query endpoint for a
// single entity type.
type QueryResponse[T any] struct {
	Entities      []T
	StartPosition int
	MaxResults    int
	TotalCount    int
}

// UnmarshalQueryResponse decodes {"QueryResponse": {"<name>": [...], ...}}.
// A query matching nothing returns an empty QueryResponse object; that decodes
// to an empty slice, not an error.
func UnmarshalQueryResponse[T any](name string, data []byte) (*QueryResponse[T], error) {
	var envelope struct {
		QueryResponse map[string]json.RawMessage `json:"QueryResponse"`
	}

	err := json.Unmarshal(data, &envelope)
	if err != nil {
		return nil, fmt.Errorf("parsing query envelope: %w", err)
	}

	result := &QueryResponse[T]{}

	if raw, ok := envelope.QueryResponse[name]; ok {
		err = json.Unmarshal(raw, &result.Entities)
		if err != nil {
			return nil, fmt.Errorf("parsing %s rows: %w", name, err)
		}
	}

	if raw, ok := envelope.QueryResponse["startPosition"]; ok {
		_ = json.Unmarshal(raw, &result.StartPosition)
	}

	if raw, ok := envelope.QueryResponse["maxResults"]; ok {
		_ = json.Unmarshal(raw, &result.MaxResults)
	}

	if raw, ok := envelope.QueryResponse["totalCount"]; ok {
		_ = json.Unmarshal(raw, &result.TotalCount)
	}

	return result, nil
}
