// Package inventory defines the catalog, supplier-mapping and invoice
// records and the Postgres access for them.
package inventory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrValidation marks input rejected before anything is written.
var ErrValidation = errors.New("invalid input")

// Product is a stock-keeping unit in the catalog.
type Product struct {
	ID          int64           `json:"id"`
	Reference   string          `json:"reference,omitempty"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit,omitempty"`
	Category    string          `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockValue is quantity times unit price. It is derived on read and never
// persisted.
func (p Product) StockValue() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(p.Quantity))
}

func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		StockValue decimal.Decimal `json:"stock_value"`
	}{plain(p), p.StockValue()})
}

// SupplierMapping memoizes a confirmed supplier label to product association.
type SupplierMapping struct {
	SupplierLabel string    `json:"supplier_label"`
	ProductID     int64     `json:"product_id"`
	SupplierID    *string   `json:"supplier_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Invoice records one reconciliation.
type Invoice struct {
	ID            int64           `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	SupplierName  string          `json:"supplier_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	InvoiceDate   *time.Time      `json:"invoice_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LineItem is the canonical shape of one invoice line, whatever produced it.
type LineItem struct {
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit,omitempty"`
	Total       decimal.Decimal `json:"total"`
}

// InvoiceInfo is the header data of an invoice as read from a document.
// Total and date stay as text; they are parsed when the invoice is stored.
type InvoiceInfo struct {
	InvoiceNumber FlexString `json:"invoice_number"`
	SupplierName  string     `json:"supplier_name"`
	BuyerName     string     `json:"buyer_name,omitempty"`
	TotalTTC      FlexString `json:"total_ttc"`
	InvoiceDate   string     `json:"invoice_date"`
}

// Supplier returns the supplier name, falling back to the buyer name some
// documents put in its place.
func (i InvoiceInfo) Supplier() string {
	if i.SupplierName != "" {
		return i.SupplierName
	}
	return i.BuyerName
}

// FlexString accepts a JSON string, number or null. Document extraction
// emits totals and invoice numbers in either form.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
