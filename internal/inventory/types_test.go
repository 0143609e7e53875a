package inventory

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_StockValue(t *testing.T) {
	p := Product{Quantity: 4, UnitPrice: decimal.RequireFromString("2.25")}
	assert.True(t, p.StockValue().Equal(decimal.RequireFromString("9")), "got %s", p.StockValue())

	empty := Product{UnitPrice: decimal.RequireFromString("10")}
	assert.True(t, empty.StockValue().IsZero())
}

func TestProduct_MarshalJSONIncludesStockValue(t *testing.T) {
	p := Product{ID: 1, Description: "Widget A", Quantity: 5, UnitPrice: decimal.RequireFromString("2")}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Widget A", out["description"])
	assert.Equal(t, "10", out["stock_value"])
	assert.Equal(t, "2", out["unit_price"])
}

func TestFlexString_Unmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  FlexString
	}{
		{`"1 250,00"`, "1 250,00"},
		{`1250.5`, "1250.5"},
		{`42`, "42"},
		{`null`, ""},
	}

	for _, tt := range tests {
		var got FlexString
		require.NoError(t, json.Unmarshal([]byte(tt.input), &got), tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	var bad FlexString
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &bad))
}

func TestInvoiceInfo_SupplierFallsBackToBuyer(t *testing.T) {
	assert.Equal(t, "ACME", InvoiceInfo{SupplierName: "ACME", BuyerName: "Shop"}.Supplier())
	assert.Equal(t, "Shop", InvoiceInfo{BuyerName: "Shop"}.Supplier())
}

func TestNewInvoiceParams(t *testing.T) {
	params := NewInvoiceParams(InvoiceInfo{
		InvoiceNumber: "F-2024-001",
		BuyerName:     "ACME",
		TotalTTC:      "1 250,00",
		InvoiceDate:   "not a date",
	})

	assert.Equal(t, "F-2024-001", params.InvoiceNumber.String)
	assert.Equal(t, "ACME", params.SupplierName.String)
	assert.True(t, FromNumeric(params.TotalAmount).Equal(decimal.RequireFromString("1250")))
	assert.False(t, params.InvoiceDate.Valid)

	blank := NewInvoiceParams(InvoiceInfo{TotalTTC: "???"})
	assert.False(t, blank.InvoiceNumber.Valid)
	assert.True(t, FromNumeric(blank.TotalAmount).IsZero())
}

func TestNewInvoiceParams_TotalFitsColumn(t *testing.T) {
	tests := []struct {
		total string
		want  string
	}{
		{"1234567890123456,00", "0"},
		{"1 000 000 000 000", "0"},
		{"(1 000 000 000 000)", "0"},
		{"999 999 999 999,99", "999999999999.99"},
		{"12,345", "12345"},
		{"10,5", "10.5"},
		{"10,005 €", "10005"},
		{"0,005", "0.01"},
	}
	for _, tt := range tests {
		params := NewInvoiceParams(InvoiceInfo{TotalTTC: FlexString(tt.total)})
		got := FromNumeric(params.TotalAmount)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "total %q = %s, want %s", tt.total, got, tt.want)
	}
}
