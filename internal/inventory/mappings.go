package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/stockmatch/internal/database"
	"github.com/JonMunkholm/stockmatch/internal/textnorm"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgForeignKeyViolation is SQLSTATE 23503.
const pgForeignKeyViolation = "23503"

type mappingQueries interface {
	GetSupplierMapping(ctx context.Context, supplierLabel string) (database.SupplierMapping, error)
	UpsertSupplierMapping(ctx context.Context, arg database.UpsertSupplierMappingParams) (database.SupplierMapping, error)
}

// MappingStore is the durable memo of supplier label to product
// associations. Keys are normalized labels, so lookups are exact matches on
// textnorm.Normalize output.
type MappingStore struct {
	q mappingQueries
}

// NewMappingStore returns a store backed by db (a pool or a transaction).
func NewMappingStore(db database.DBTX) *MappingStore {
	return &MappingStore{q: database.New(db)}
}

// Lookup returns the product id recorded for an already normalized label.
func (s *MappingStore) Lookup(ctx context.Context, normalizedLabel string) (int64, bool, error) {
	if normalizedLabel == "" {
		return 0, false, nil
	}

	m, err := s.q.GetSupplierMapping(ctx, normalizedLabel)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup mapping: %w", err)
	}
	return m.ProductID, true, nil
}

// Upsert normalizes rawLabel and associates it with productID, replacing
// any previous association for the same label.
func (s *MappingStore) Upsert(ctx context.Context, rawLabel string, productID int64, supplierID string) (*SupplierMapping, error) {
	label := textnorm.Normalize(rawLabel)
	if label == "" {
		return nil, fmt.Errorf("%w: supplier label is required", ErrValidation)
	}
	if productID <= 0 {
		return nil, fmt.Errorf("%w: product id must be positive", ErrValidation)
	}

	row, err := s.q.UpsertSupplierMapping(ctx, database.UpsertSupplierMappingParams{
		SupplierLabel: label,
		ProductID:     productID,
		SupplierID:    toPgText(supplierID),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, fmt.Errorf("%w: unknown product %d", ErrValidation, productID)
		}
		return nil, fmt.Errorf("save mapping: %w", err)
	}

	m := &SupplierMapping{
		SupplierLabel: row.SupplierLabel,
		ProductID:     row.ProductID,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
	if row.SupplierID.Valid {
		id := row.SupplierID.String
		m.SupplierID = &id
	}
	return m, nil
}
