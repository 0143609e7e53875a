package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getSupplierMapping = `-- name: GetSupplierMapping :one
SELECT supplier_label, product_id, supplier_id, created_at, updated_at
FROM supplier_mappings
WHERE supplier_label = $1
`

func (q *Queries) GetSupplierMapping(ctx context.Context, supplierLabel string) (SupplierMapping, error) {
	row := q.db.QueryRow(ctx, getSupplierMapping, supplierLabel)
	var i SupplierMapping
	err := row.Scan(
		&i.SupplierLabel,
		&i.ProductID,
		&i.SupplierID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertSupplierMapping = `-- name: UpsertSupplierMapping :one
INSERT INTO supplier_mappings (supplier_label, product_id, supplier_id)
VALUES ($1, $2, $3)
ON CONFLICT (supplier_label) DO UPDATE
SET product_id = EXCLUDED.product_id,
    supplier_id = EXCLUDED.supplier_id,
    updated_at = now()
RETURNING supplier_label, product_id, supplier_id, created_at, updated_at
`

type UpsertSupplierMappingParams struct {
	SupplierLabel string
	ProductID     int64
	SupplierID    pgtype.Text
}

func (q *Queries) UpsertSupplierMapping(ctx context.Context, arg UpsertSupplierMappingParams) (SupplierMapping, error) {
	row := q.db.QueryRow(ctx, upsertSupplierMapping, arg.SupplierLabel, arg.ProductID, arg.SupplierID)
	var i SupplierMapping
	err := row.Scan(
		&i.SupplierLabel,
		&i.ProductID,
		&i.SupplierID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
