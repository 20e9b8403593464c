package qbo

import "time"

// Ref points at another entity by ID, optionally carrying its display name.
type Ref struct {
	Value string `json:"value"          yaml:"value"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
}

// MetaData carries the provider-maintained timestamps present on every
// persisted entity.
type MetaData struct {
	CreateTime      time.Time `json:"CreateTime,omitempty"      yaml:"create_time,omitempty"`
	LastUpdatedTime time.Time `json:"LastUpdatedTime,omitempty" yaml:"last_updated_time,omitempty"`
}

// EmailAddress wraps an email address field.
type EmailAddress struct {
	Address string `json:"Address,omitempty" yaml:"address,omitempty"`
}

// PhoneNumber wraps a free-form phone number field.
type PhoneNumber struct {
	FreeFormNumber string `json:"FreeFormNumber,omitempty" yaml:"free_form_number,omitempty"`
}

// WebSiteAddress wraps a website URI field.
type WebSiteAddress struct {
	URI string `json:"URI,omitempty" yaml:"uri,omitempty"`
}

// PhysicalAddress is a postal address.
type PhysicalAddress struct {
	ID                     string `json:"Id,omitempty"                     yaml:"id,omitempty"`
	Line1                  string `json:"Line1,omitempty"                  yaml:"line1,omitempty"`
	Line2                  string `json:"Line2,omitempty"                  yaml:"line2,omitempty"`
	Line3                  string `json:"Line3,omitempty"                  yaml:"line3,omitempty"`
	City                   string `json:"City,omitempty"                   yaml:"city,omitempty"`
	CountrySubDivisionCode string `json:"CountrySubDivisionCode,omitempty" yaml:"country_sub_division_code,omitempty"`
	PostalCode             string `json:"PostalCode,omitempty"             yaml:"postal_code,omitempty"`
	Country                string `json:"Country,omitempty"                yaml:"country,omitempty"`
}

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" || raw == `""` {
		d.Time = time.Time{}

		return nil
	}

	parsed, err := time.Parse(`"`+dateLayout+`"`, raw)
	if err != nil {
		return err
	}

	d.Time = parsed

	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return nil, nil
	}

	return d.Format(dateLayout), nil
}

// Line is a single transaction line. DetailType selects which of the detail
// members is populated.
type Line struct {
	ID                            string                         `json:"Id,omitempty"                            yaml:"id,omitempty"`
	LineNum                       int                            `json:"LineNum,omitempty"                       yaml:"line_num,omitempty"`
	Description                   string                         `json:"Description,omitempty"                   yaml:"description,omitempty"`
	Amount                        float64                        `json:"Amount"                                  yaml:"amount"`
	DetailType                    string                         `json:"DetailType"                              yaml:"detail_type"`
	SalesItemLineDetail           *SalesItemLineDetail           `json:"SalesItemLineDetail,omitempty"           yaml:"sales_item_line_detail,omitempty"`
	ItemBasedExpenseLineDetail    *ItemBasedExpenseLineDetail    `json:"ItemBasedExpenseLineDetail,omitempty"    yaml:"item_based_expense_line_detail,omitempty"`
	AccountBasedExpenseLineDetail *AccountBasedExpenseLineDetail `json:"AccountBasedExpenseLineDetail,omitempty" yaml:"account_based_expense_line_detail,omitempty"`
}

// SalesItemLineDetail describes an item sold on a sales transaction line.
type SalesItemLineDetail struct {
	ItemRef    *Ref    `json:"ItemRef,omitempty"    yaml:"item_ref,omitempty"`
	UnitPrice  float64 `json:"UnitPrice,omitempty"  yaml:"unit_price,omitempty"`
	Qty        float64 `json:"Qty,omitempty"        yaml:"qty,omitempty"`
	TaxCodeRef *Ref    `json:"TaxCodeRef,omitempty" yaml:"tax_code_ref,omitempty"`
}

// ItemBasedExpenseLineDetail describes an item purchased on an expense line.
type ItemBasedExpenseLineDetail struct {
	ItemRef   *Ref    `json:"ItemRef,omitempty"   yaml:"item_ref,omitempty"`
	UnitPrice float64 `json:"UnitPrice,omitempty" yaml:"unit_price,omitempty"`
	Qty       float64 `json:"Qty,omitempty"       yaml:"qty,omitempty"`
}

// AccountBasedExpenseLineDetail books an expense line straight to an account.
type AccountBasedExpenseLineDetail struct {
	AccountRef *Ref `json:"AccountRef,omitempty" yaml:"account_ref,omitempty"`
	TaxCodeRef *Ref `json:"TaxCodeRef,omitempty" yaml:"tax_code_ref,omitempty"`
}

// TxnTaxDetail carries transaction-level tax totals.
type TxnTaxDetail struct {
	TxnTaxCodeRef *Ref    `json:"TxnTaxCodeRef,omitempty" yaml:"txn_tax_code_ref,omitempty"`
	TotalTax      float64 `json:"TotalTax,omitempty"      yaml:"total_tax,omitempty"`
}

// LinkedTxn links a transaction to another transaction it was applied to.
type LinkedTxn struct {
	TxnID   string `json:"TxnId"   yaml:"txn_id"`
	TxnType string `json:"TxnType" yaml:"txn_type"`
}
