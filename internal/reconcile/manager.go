// Package reconcile applies a confirmed invoice to stock: one invoice row
// plus a quantity increment or new product per line, all or nothing.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/stockmatch/internal/inventory"
	"github.com/JonMunkholm/stockmatch/internal/logging"
	"github.com/JonMunkholm/stockmatch/internal/metrics"
	"github.com/JonMunkholm/stockmatch/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// ErrTransaction is returned when the reconciliation was rolled back.
var ErrTransaction = errors.New("transaction failed")

// Tx is the set of writes one reconciliation needs. Implementations run
// every call inside the same database transaction.
type Tx interface {
	InsertInvoice(ctx context.Context, info inventory.InvoiceInfo) (inventory.Invoice, error)
	// FindProductForUpdate locks and returns the product with exactly this
	// description, or nil when there is none.
	FindProductForUpdate(ctx context.Context, description string) (*inventory.Product, error)
	AddQuantity(ctx context.Context, productID, delta int64) (inventory.Product, error)
	InsertProduct(ctx context.Context, item inventory.LineItem) (inventory.Product, error)
}

// Store runs fn in a transaction, committing only if fn returns nil.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Result summarizes a committed reconciliation.
type Result struct {
	InvoiceID int64               `json:"invoice_id"`
	Created   int                 `json:"products_created"`
	Updated   int                 `json:"products_updated"`
	Products  []inventory.Product `json:"products"`
}

type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Reconcile records the invoice and adds every line to stock. Lines are
// applied in order; a description already in the catalog gets its quantity
// incremented (price untouched), anything else becomes a new product.
// Invalid input returns an error wrapping inventory.ErrValidation before
// anything is written. Any failure after that rolls back the whole
// invoice and returns ErrTransaction.
func (m *Manager) Reconcile(ctx context.Context, items []inventory.LineItem, info inventory.InvoiceInfo) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.apply", attribute.Int("items", len(items)))
	defer span.End()

	log := logging.WithFields(ctx, "items", len(items), "invoice_number", info.InvoiceNumber.String())

	items, err := validate(items)
	if err != nil {
		metrics.ReconciliationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	var res *Result
	err = m.store.InTx(ctx, func(tx Tx) error {
		r, err := apply(ctx, tx, items, info)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		metrics.ReconciliationsTotal.WithLabelValues("rolled_back").Inc()
		tracing.RecordError(span, err)
		log.Error("reconciliation rolled back", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTransaction, err)
	}

	metrics.ReconciliationsTotal.WithLabelValues("committed").Inc()
	metrics.ReconciledItemsTotal.WithLabelValues("created").Add(float64(res.Created))
	metrics.ReconciledItemsTotal.WithLabelValues("updated").Add(float64(res.Updated))
	log.Info("stock reconciled",
		"invoice_id", res.InvoiceID,
		"created", res.Created,
		"updated", res.Updated,
	)
	return res, nil
}

func apply(ctx context.Context, tx Tx, items []inventory.LineItem, info inventory.InvoiceInfo) (*Result, error) {
	inv, err := tx.InsertInvoice(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	res := &Result{
		InvoiceID: inv.ID,
		Products:  make([]inventory.Product, 0, len(items)),
	}
	for i, item := range items {
		existing, err := tx.FindProductForUpdate(ctx, item.Description)
		if err != nil {
			return nil, fmt.Errorf("item %d: find product: %w", i+1, err)
		}

		var p inventory.Product
		if existing != nil {
			p, err = tx.AddQuantity(ctx, existing.ID, item.Quantity)
			if err != nil {
				return nil, fmt.Errorf("item %d: add quantity: %w", i+1, err)
			}
			res.Updated++
		} else {
			p, err = tx.InsertProduct(ctx, item)
			if err != nil {
				return nil, fmt.Errorf("item %d: insert product: %w", i+1, err)
			}
			res.Created++
		}
		res.Products = append(res.Products, p)
	}
	return res, nil
}

// validate checks every line and returns them with trimmed descriptions.
func validate(items []inventory.LineItem) ([]inventory.LineItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", inventory.ErrValidation)
	}

	out := make([]inventory.LineItem, len(items))
	for i, item := range items {
		item.Description = strings.TrimSpace(item.Description)
		switch {
		case item.Description == "":
			return nil, fmt.Errorf("%w: item %d: description is required", inventory.ErrValidation, i+1)
		case item.Quantity < 0:
			return nil, fmt.Errorf("%w: item %d: quantity must not be negative", inventory.ErrValidation, i+1)
		case item.UnitPrice.IsNegative():
			return nil, fmt.Errorf("%w: item %d: unit price must not be negative", inventory.ErrValidation, i+1)
		case item.UnitPrice.GreaterThanOrEqual(inventory.MaxUnitPrice):
			return nil, fmt.Errorf("%w: item %d: unit price is too large", inventory.ErrValidation, i+1)
		}
		out[i] = item
	}
	return out, nil
}
