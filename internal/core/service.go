package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/stockmatch/internal/extraction"
	"github.com/JonMunkholm/stockmatch/internal/inventory"
	"github.com/JonMunkholm/stockmatch/internal/logging"
	"github.com/JonMunkholm/stockmatch/internal/matching"
	"github.com/JonMunkholm/stockmatch/internal/metrics"
	"github.com/JonMunkholm/stockmatch/internal/reconcile"
)

const (
	// DefaultInvoiceLimit is the page size of ListInvoices when none is given.
	DefaultInvoiceLimit = 100
	// MaxInvoiceLimit caps the page size of ListInvoices.
	MaxInvoiceLimit = 1000
)

// Catalog reads products and invoices.
type Catalog interface {
	ListProducts(ctx context.Context) ([]inventory.Product, error)
	ListInvoices(ctx context.Context, limit int) ([]inventory.Invoice, error)
}

// MappingWriter records confirmed supplier label associations.
type MappingWriter interface {
	Upsert(ctx context.Context, rawLabel string, productID int64, supplierID string) (*inventory.SupplierMapping, error)
}

// Matcher resolves invoice lines against a catalog snapshot.
type Matcher interface {
	MatchAll(ctx context.Context, descriptions []string, catalog []inventory.Product) ([]matching.Result, error)
}

// Reconciler applies an invoice to stock atomically.
type Reconciler interface {
	Reconcile(ctx context.Context, items []inventory.LineItem, info inventory.InvoiceInfo) (*reconcile.Result, error)
}

// Extractor reads an invoice document.
type Extractor interface {
	CheckFile(filename string, size int64) error
	Extract(ctx context.Context, filename string, r io.Reader) (*extraction.Document, error)
}

// Deps are the collaborators of a Service. Extractor may be nil.
type Deps struct {
	Catalog    Catalog
	Mappings   MappingWriter
	Matcher    Matcher
	Reconciler Reconciler
	Extractor  Extractor
	Limiter    *RequestLimiter
}

// Service is the entry point for every operation the HTTP layer exposes.
type Service struct {
	catalog    Catalog
	mappings   MappingWriter
	matcher    Matcher
	reconciler Reconciler
	extractor  Extractor
	limiter    *RequestLimiter
}

// NewService checks that every required collaborator is present.
func NewService(d Deps) (*Service, error) {
	switch {
	case d.Catalog == nil:
		return nil, errors.New("core: catalog is required")
	case d.Mappings == nil:
		return nil, errors.New("core: mapping writer is required")
	case d.Matcher == nil:
		return nil, errors.New("core: matcher is required")
	case d.Reconciler == nil:
		return nil, errors.New("core: reconciler is required")
	}

	limiter := d.Limiter
	if limiter == nil {
		limiter = NewRequestLimiter(DefaultMaxConcurrentRequests, DefaultMaxWaitTime)
	}

	return &Service{
		catalog:    d.Catalog,
		mappings:   d.Mappings,
		matcher:    d.Matcher,
		reconciler: d.Reconciler,
		extractor:  d.Extractor,
		limiter:    limiter,
	}, nil
}

// MatchProducts matches every line against one catalog snapshot. Results
// are in request order. Only catalog read failures, cancellation and a full
// limiter produce an error; everything else degrades per line.
func (s *Service) MatchProducts(ctx context.Context, req MatchProductsRequest) ([]matching.Result, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	defer func() {
		metrics.MatchRequestDuration.Observe(time.Since(start).Seconds())
	}()

	catalog, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	descriptions := make([]string, len(req.Items))
	for i, item := range req.Items {
		descriptions[i] = item.Description
	}

	results, err := s.matcher.MatchAll(ctx, descriptions, catalog)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("matched invoice lines",
		"items", len(results),
		"catalog_size", len(catalog),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

// SaveMapping memoizes a user-confirmed association.
func (s *Service) SaveMapping(ctx context.Context, req SaveMappingRequest) (*inventory.SupplierMapping, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	m, err := s.mappings.Upsert(ctx, req.SupplierName, req.ProductID, req.SupplierID.String())
	if err != nil {
		return nil, err
	}

	client := ClientFromContext(ctx)
	logging.FromContext(ctx).Info("supplier mapping saved",
		"label", m.SupplierLabel,
		"product_id", m.ProductID,
		"client_ip", client.IP,
	)
	return m, nil
}

// AddStock reconciles a confirmed invoice into stock.
func (s *Service) AddStock(ctx context.Context, req AddStockRequest) (*reconcile.Result, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	res, err := s.reconciler.Reconcile(ctx, req.Items, req.InvoiceInfo)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("stock added",
		"invoice_id", res.InvoiceID,
		"client_ip", ClientFromContext(ctx).IP,
	)
	return res, nil
}

// ListInvoices returns the newest invoices. limit <= 0 means the default;
// larger values are capped.
func (s *Service) ListInvoices(ctx context.Context, limit int) ([]inventory.Invoice, error) {
	if limit <= 0 {
		limit = DefaultInvoiceLimit
	}
	limit = min(limit, MaxInvoiceLimit)

	invoices, err := s.catalog.ListInvoices(ctx, limit)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []inventory.Invoice{}
	}
	return invoices, nil
}

// ListProducts returns the catalog with derived stock values.
func (s *Service) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []inventory.Product{}
	}
	return products, nil
}

// ExtractionEnabled reports whether ExtractInvoice can be used.
func (s *Service) ExtractionEnabled() bool {
	return s.extractor != nil
}

// CheckUpload rejects a file by name and size before it is read.
func (s *Service) CheckUpload(filename string, size int64) error {
	if s.extractor == nil {
		return ErrExtractionNotConfigured
	}
	return s.extractor.CheckFile(filename, size)
}

// ExtractInvoice sends a scanned invoice to the extraction service.
func (s *Service) ExtractInvoice(ctx context.Context, filename string, r io.Reader) (*extraction.Document, error) {
	if s.extractor == nil {
		return nil, ErrExtractionNotConfigured
	}
	return s.extractor.Extract(ctx, filename, r)
}

// LimiterStatus reports match-slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForRequests blocks until in-flight match requests finish or ctx ends.
func (s *Service) WaitForRequests(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
