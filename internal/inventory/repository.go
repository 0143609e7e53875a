package inventory

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/stockmatch/internal/database"
)

// Repository reads the catalog and invoice history.
type Repository struct {
	q *database.Queries
}

func NewRepository(db database.DBTX) *Repository {
	return &Repository{q: database.New(db)}
}

// ListProducts returns the whole catalog ordered by id. Matching ranks
// against this snapshot, so the order decides ties.
func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.q.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]Product, len(rows))
	for i, row := range rows {
		products[i] = ProductFromRow(row)
	}
	return products, nil
}

// ListInvoices returns the newest invoices first.
func (r *Repository) ListInvoices(ctx context.Context, limit int) ([]Invoice, error) {
	rows, err := r.q.ListInvoices(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	invoices := make([]Invoice, len(rows))
	for i, row := range rows {
		invoices[i] = InvoiceFromRow(row)
	}
	return invoices, nil
}

func ProductFromRow(row database.Product) Product {
	return Product{
		ID:          row.ID,
		Reference:   row.Reference.String,
		Description: row.Description,
		Quantity:    row.Quantity,
		UnitPrice:   FromNumeric(row.UnitPrice),
		Unit:        row.Unit.String,
		Category:    row.Category.String,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func InvoiceFromRow(row database.Invoice) Invoice {
	return Invoice{
		ID:            row.ID,
		InvoiceNumber: row.InvoiceNumber.String,
		SupplierName:  row.SupplierName.String,
		TotalAmount:   FromNumeric(row.TotalAmount),
		InvoiceDate:   fromPgDate(row.InvoiceDate),
		CreatedAt:     row.CreatedAt.Time,
	}
}

// NewInvoiceParams builds the insert parameters for an invoice header.
// Unreadable or oversized totals become zero and unreadable dates become
// NULL, so header data never fails the insert.
func NewInvoiceParams(info InvoiceInfo) database.InsertInvoiceParams {
	return database.InsertInvoiceParams{
		InvoiceNumber: toPgText(info.InvoiceNumber.String()),
		SupplierName:  toPgText(info.Supplier()),
		TotalAmount:   ToNumeric(invoiceTotal(info.TotalTTC.String())),
		InvoiceDate:   toPgDate(ParseDate(info.InvoiceDate)),
	}
}

// NewProductParams builds the insert parameters for a product first seen on
// an invoice line.
func NewProductParams(item LineItem) database.InsertProductParams {
	return database.InsertProductParams{
		Reference:   toPgText(item.Reference),
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   ToNumeric(item.UnitPrice),
		Unit:        toPgText(item.Unit),
	}
}
