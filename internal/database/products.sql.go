package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, reference, description, quantity, unit_price, unit, category, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Reference,
		&i.Description,
		&i.Quantity,
		&i.UnitPrice,
		&i.Unit,
		&i.Category,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listProducts = `-- name: ListProducts :many
SELECT ` + productColumns + `
FROM products
ORDER BY id
`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		i, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const lockProductDescription = `-- name: LockProductDescription :exec
SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))
`

// LockProductDescription serializes writers of the same description until
// the surrounding transaction ends. It closes the gap FOR UPDATE leaves when
// no row exists yet.
func (q *Queries) LockProductDescription(ctx context.Context, description string) error {
	_, err := q.db.Exec(ctx, lockProductDescription, description)
	return err
}

const getProductByDescriptionForUpdate = `-- name: GetProductByDescriptionForUpdate :one
SELECT ` + productColumns + `
FROM products
WHERE description = $1
ORDER BY id
LIMIT 1
FOR UPDATE
`

func (q *Queries) GetProductByDescriptionForUpdate(ctx context.Context, description string) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProductByDescriptionForUpdate, description))
}

const addProductQuantity = `-- name: AddProductQuantity :one
UPDATE products
SET quantity = quantity + $2, updated_at = now()
WHERE id = $1
RETURNING ` + productColumns

type AddProductQuantityParams struct {
	ID    int64
	Delta int64
}

func (q *Queries) AddProductQuantity(ctx context.Context, arg AddProductQuantityParams) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, addProductQuantity, arg.ID, arg.Delta))
}

const insertProduct = `-- name: InsertProduct :one
INSERT INTO products (reference, description, quantity, unit_price, unit, category)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + productColumns

type InsertProductParams struct {
	Reference   pgtype.Text
	Description string
	Quantity    int64
	UnitPrice   pgtype.Numeric
	Unit        pgtype.Text
	Category    pgtype.Text
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, insertProduct,
		arg.Reference,
		arg.Description,
		arg.Quantity,
		arg.UnitPrice,
		arg.Unit,
		arg.Category,
	))
}
