package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/stockmatch/internal/database"
	"github.com/JonMunkholm/stockmatch/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore runs reconciliations in a Postgres transaction.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{q: database.New(tx)}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type pgTx struct {
	q *database.Queries
}

func (t *pgTx) InsertInvoice(ctx context.Context, info inventory.InvoiceInfo) (inventory.Invoice, error) {
	row, err := t.q.InsertInvoice(ctx, inventory.NewInvoiceParams(info))
	if err != nil {
		return inventory.Invoice{}, err
	}
	return inventory.InvoiceFromRow(row), nil
}

// FindProductForUpdate takes the description's advisory lock first, so two
// invoices introducing the same new product cannot both insert it.
func (t *pgTx) FindProductForUpdate(ctx context.Context, description string) (*inventory.Product, error) {
	if err := t.q.LockProductDescription(ctx, description); err != nil {
		return nil, fmt.Errorf("lock description: %w", err)
	}

	row, err := t.q.GetProductByDescriptionForUpdate(ctx, description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := inventory.ProductFromRow(row)
	return &p, nil
}

func (t *pgTx) AddQuantity(ctx context.Context, productID, delta int64) (inventory.Product, error) {
	row, err := t.q.AddProductQuantity(ctx, database.AddProductQuantityParams{
		ID:    productID,
		Delta: delta,
	})
	if err != nil {
		return inventory.Product{}, err
	}
	return inventory.ProductFromRow(row), nil
}

func (t *pgTx) InsertProduct(ctx context.Context, item inventory.LineItem) (inventory.Product, error) {
	row, err := t.q.InsertProduct(ctx, inventory.NewProductParams(item))
	if err != nil {
		return inventory.Product{}, err
	}
	return inventory.ProductFromRow(row), nil
}
