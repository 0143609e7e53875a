package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertInvoice = `-- name: InsertInvoice :one
INSERT INTO invoices (invoice_number, supplier_name, total_amount, invoice_date)
VALUES ($1, $2, $3, $4)
RETURNING id, invoice_number, supplier_name, total_amount, invoice_date, created_at
`

type InsertInvoiceParams struct {
	InvoiceNumber pgtype.Text
	SupplierName  pgtype.Text
	TotalAmount   pgtype.Numeric
	InvoiceDate   pgtype.Date
}

func (q *Queries) InsertInvoice(ctx context.Context, arg InsertInvoiceParams) (Invoice, error) {
	row := q.db.QueryRow(ctx, insertInvoice,
		arg.InvoiceNumber,
		arg.SupplierName,
		arg.TotalAmount,
		arg.InvoiceDate,
	)
	var i Invoice
	err := row.Scan(
		&i.ID,
		&i.InvoiceNumber,
		&i.SupplierName,
		&i.TotalAmount,
		&i.InvoiceDate,
		&i.CreatedAt,
	)
	return i, err
}

const listInvoices = `-- name: ListInvoices :many
SELECT id, invoice_number, supplier_name, total_amount, invoice_date, created_at
FROM invoices
ORDER BY created_at DESC, id DESC
LIMIT $1
`

func (q *Queries) ListInvoices(ctx context.Context, limit int32) ([]Invoice, error) {
	rows, err := q.db.Query(ctx, listInvoices, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Invoice
	for rows.Next() {
		var i Invoice
		if err := rows.Scan(
			&i.ID,
			&i.InvoiceNumber,
			&i.SupplierName,
			&i.TotalAmount,
			&i.InvoiceDate,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
