package extraction

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/stockmatch/internal/inventory"
	"github.com/JonMunkholm/stockmatch/internal/textnorm"
	"github.com/shopspring/decimal"
)

// RawResponse is the extraction service's envelope.
type RawResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	Data    RawData `json:"data"`
}

type RawData struct {
	Fields map[string]any `json:"fields"`
	Table  RawTable       `json:"table"`
}

type RawTable struct {
	Headers []string         `json:"headers"`
	Rows    []map[string]any `json:"rows"`
}

// Document is the canonical extraction result returned to clients and
// accepted back by /add-stock.
type Document struct {
	Invoice inventory.InvoiceInfo `json:"invoiceInfo"`
	Items   []inventory.LineItem  `json:"items"`
}

// columnAliases maps normalized column names, French and English, to
// canonical LineItem fields.
var columnAliases = map[string]string{
	"description":   "description",
	"designation":   "description",
	"libelle":       "description",
	"article":       "description",
	"item":          "description",
	"product":       "description",
	"produit":       "description",
	"reference":     "reference",
	"ref":           "reference",
	"code":          "reference",
	"sku":           "reference",
	"quantity":      "quantity",
	"quantite":      "quantity",
	"qte":           "quantity",
	"qty":           "quantity",
	"nombre":        "quantity",
	"unit price":    "unit_price",
	"prix unitaire": "unit_price",
	"prix unit":     "unit_price",
	"p u":           "unit_price",
	"pu":            "unit_price",
	"price":         "unit_price",
	"prix":          "unit_price",
	"total":         "total",
	"total ht":      "total",
	"montant":       "total",
	"montant ht":    "total",
	"amount":        "total",
	"unit":          "unit",
	"unite":         "unit",
}

// Normalize converts the raw payload into the canonical document. Rows with
// neither description nor reference are dropped; unparseable numbers are 0.
func Normalize(raw *RawResponse) *Document {
	doc := &Document{Items: []inventory.LineItem{}}
	if raw == nil {
		return doc
	}

	f := raw.Data.Fields
	doc.Invoice = inventory.InvoiceInfo{
		InvoiceNumber: inventory.FlexString(field(f, "invoice_number")),
		SupplierName:  field(f, "supplier_name"),
		BuyerName:     field(f, "buyer_name"),
		TotalTTC:      inventory.FlexString(field(f, "total_ttc")),
		InvoiceDate:   field(f, "invoice_date"),
	}

	for _, row := range raw.Data.Table.Rows {
		if item, ok := normalizeRow(row); ok {
			doc.Items = append(doc.Items, item)
		}
	}
	return doc
}

func normalizeRow(row map[string]any) (inventory.LineItem, bool) {
	cols := make(map[string]string, len(row))
	for k, v := range row {
		if strings.HasPrefix(k, "_") {
			continue
		}
		canon, ok := columnAliases[textnorm.Normalize(k)]
		if !ok {
			continue
		}
		// first non-empty value wins when two headers alias the same field
		if s := stringify(v); s != "" && cols[canon] == "" {
			cols[canon] = s
		}
	}

	item := inventory.LineItem{
		Description: strings.TrimSpace(cols["description"]),
		Reference:   strings.TrimSpace(cols["reference"]),
		Quantity:    inventory.ParseAmount(cols["quantity"]).IntPart(),
		UnitPrice:   inventory.ParseAmount(cols["unit_price"]),
		Unit:        strings.TrimSpace(cols["unit"]),
		Total:       inventory.ParseAmount(cols["total"]),
	}
	if item.Description == "" {
		item.Description = item.Reference
	}
	if item.Description == "" {
		return inventory.LineItem{}, false
	}
	if item.Total.IsZero() && item.Quantity > 0 {
		item.Total = item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
	}
	return item, true
}

func field(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	return strings.TrimSpace(stringify(fields[key]))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return decimal.NewFromFloat(t).String()
	default:
		return fmt.Sprint(t)
	}
}
