package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Invoice struct {
	ID            int64
	InvoiceNumber pgtype.Text
	SupplierName  pgtype.Text
	TotalAmount   pgtype.Numeric
	InvoiceDate   pgtype.Date
	CreatedAt     pgtype.Timestamptz
}

type Product struct {
	ID          int64
	Reference   pgtype.Text
	Description string
	Quantity    int64
	UnitPrice   pgtype.Numeric
	Unit        pgtype.Text
	Category    pgtype.Text
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type SupplierMapping struct {
	SupplierLabel string
	ProductID     int64
	SupplierID    pgtype.Text
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}
