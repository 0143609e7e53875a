package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/stockmatch/internal/config"
	"github.com/JonMunkholm/stockmatch/internal/core"
	"github.com/JonMunkholm/stockmatch/internal/extraction"
	"github.com/JonMunkholm/stockmatch/internal/inventory"
	"github.com/JonMunkholm/stockmatch/internal/matching"
	"github.com/JonMunkholm/stockmatch/internal/reconcile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products  []inventory.Product
	invoices  []inventory.Invoice
	lastLimit int
}

func (f *fakeCatalog) ListProducts(context.Context) ([]inventory.Product, error) {
	return f.products, nil
}

func (f *fakeCatalog) ListInvoices(_ context.Context, limit int) ([]inventory.Invoice, error) {
	f.lastLimit = limit
	return f.invoices, nil
}

type fakeMappings struct {
	label      string
	productID  int64
	supplierID string
}

func (f *fakeMappings) Upsert(_ context.Context, label string, productID int64, supplierID string) (*inventory.SupplierMapping, error) {
	f.label, f.productID, f.supplierID = label, productID, supplierID
	return &inventory.SupplierMapping{SupplierLabel: label, ProductID: productID}, nil
}

type fakeReconciler struct {
	err   error
	items []inventory.LineItem
	info  inventory.InvoiceInfo
}

func (f *fakeReconciler) Reconcile(_ context.Context, items []inventory.LineItem, info inventory.InvoiceInfo) (*reconcile.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.items, f.info = items, info
	return &reconcile.Result{InvoiceID: 7, Created: 1, Updated: len(items) - 1}, nil
}

type fakeExtractor struct {
	filename string
	body     string
}

func (f *fakeExtractor) CheckFile(string, int64) error { return nil }

func (f *fakeExtractor) Extract(_ context.Context, filename string, r io.Reader) (*extraction.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.filename, f.body = filename, string(data)
	return &extraction.Document{
		Invoice: inventory.InvoiceInfo{InvoiceNumber: "F-001"},
		Items:   []inventory.LineItem{{Description: "Widget A", Quantity: 3}},
	}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fixture struct {
	catalog    *fakeCatalog
	mappings   *fakeMappings
	reconciler *fakeReconciler
	server     *Server
}

func testConfig() *config.Config {
	return &config.Config{
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Extraction: config.ExtractionConfig{MaxFileSize: 1 << 20},
	}
}

func newFixture(t *testing.T, cfg *config.Config, extractor core.Extractor, db Pinger) *fixture {
	t.Helper()
	f := &fixture{
		catalog: &fakeCatalog{products: []inventory.Product{
			{ID: 1, Description: "HP Pavilion 15-dk1000", UnitPrice: decimal.NewFromInt(700)},
			{ID: 2, Description: "Widget A", Quantity: 4},
		}},
		mappings:   &fakeMappings{},
		reconciler: &fakeReconciler{},
	}
	svc, err := core.NewService(core.Deps{
		Catalog:    f.catalog,
		Mappings:   f.mappings,
		Matcher:    matching.NewMatcher(nil, nil, 1),
		Reconciler: f.reconciler,
		Extractor:  extractor,
	})
	require.NoError(t, err)

	f.server = NewServer(svc, cfg, db)
	t.Cleanup(func() { _ = f.server.Shutdown(context.Background()) })
	return f
}

func (f *fixture) do(method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) postJSON(path, body string) *httptest.ResponseRecorder {
	return f.do(http.MethodPost, path, "application/json", strings.NewReader(body))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestMatchProducts(t *testing.T) {
	f := newFixture(t, testConfig(), nil, nil)

	rec := f.postJSON("/match-products", `{"items":[{"description":"HP Pav 15"},{"description":"widget a"},{"description":""}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Matches []struct {
			Description string             `json:"description"`
			Status      string             `json:"status"`
			Product     *inventory.Product `json:"product"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 3)

	assert.Equal(t, "HP Pav 15", resp.Matches[0].Description)
	require.NotNil(t, resp.Matches[0].Product)
	assert.Equal(t, int64(1), resp.Matches[0].Product.ID)

	require.NotNil(t, resp.Matches[1].Product)
	assert.Equal(t, int64(2), resp.Matches[1].Product.ID)

	assert.Equal(t, string(matching.StatusUnresolved), resp.Matches[2].Status)
	assert.Nil(t, resp.Matches[2].Product)
}

func TestMatchProducts_BadRequests(t *testing.T) {
	f := newFixture(t, testConfig(), nil, nil)

	tests := []struct {
		name        string
		body        string
		wantDetails string
	}{
		{"malformed JSON", `{"items":`, "invalid JSON body"},
		{"empty body", ``, "request body is empty"},
		{"no items", `{}`, "items"},
		{"empty items", `{"items":[]}`, "items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.postJSON("/match-products", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "VAL001", resp.Code)
			assert.Contains(t, resp.Details, tt.wantDetails)
		})
	}
}

func TestSaveMapping(t *testing.T) {
	f := newFixture(t, testConfig(), nil, nil)

	rec := f.postJSON("/save-mapping", `{"supplier_name":"HP Pav 15","product_id":1,"supplier_id":12}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, "HP Pav 15", f.mappings.label)
	assert.Equal(t, int64(1), f.mappings.productID)
	assert.Equal(t, "12", f.mappings.supplierID)

	rec = f.postJSON("/save-mapping", `{"supplier_name":"HP Pav 15","product_id":1,"supplier_id":"SUP-ACME-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, "SUP-ACME-01", f.mappings.supplierID)

	for _, body := range []string{
		`{"product_id":1}`,
		`{"supplier_name":"HP Pav 15"}`,
		`{"supplier_name":"   ","product_id":1}`,
	} {
		rec := f.postJSON("/save-mapping", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "VAL001", decodeError(t, rec).Code, body)
	}
}

func TestAddStock(t *testing.T) {
	f := newFixture(t, testConfig(), nil, nil)

	body := `{
		"items":[
			{"description":"Widget A","quantity":5,"unit_price":"2.50","unit":"pcs"},
			{"description":"Gadget","quantity":1,"unit_price":10,"reference":"G-1"}
		],
		"invoiceInfo":{"invoice_number":"F-001","supplier_name":"Acme","total_ttc":"22.50","invoice_date":"2024-03-01"}
	}`
	rec := f.postJSON("/add-stock", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success   bool  `json:"success"`
		InvoiceID int64 `json:"invoice_id"`
		Created   int   `json:"products_created"`
		Updated   int   `json:"products_updated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(7), resp.InvoiceID)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Updated)

	require.Len(t, f.reconciler.items, 2)
	assert.Equal(t, "Widget A", f.reconciler.items[0].Description)
	assert.Equal(t, inventory.FlexString("F-001"), f.reconciler.info.InvoiceNumber)
}

func TestAddStock_Errors(t *testing.T) {
	f := newFixture(t, testConfig(), nil, nil)

	rec := f.postJSON("/add-stock", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VAL001", decodeError(t, rec).Code)

	f.reconciler.err = errors.Join(reconcile.ErrTransaction, errors.New("insert product: boom"))
	rec = f.postJSON("/add-stock", `{"items":[{"description":"Widget A","quantity":1}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "TXN001", resp.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestListInvoices(t *testing.T) {
	f := newFixture(t, testConfig(), nil, nil)
	f.catalog.invoices = []inventory.Invoice{
		{ID: 2, InvoiceNumber: "F-002"},
		{ID: 1, InvoiceNumber: "F-001"},
	}

	rec := f.do(http.MethodGet, "/invoices?limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, f.catalog.lastLimit)

	var invoices []inventory.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoices))
	require.Len(t, invoices, 2)
	assert.Equal(t, "F-002", invoices[0].InvoiceNumber)

	f.do(http.MethodGet, "/invoices?limit=abc", "", nil)
	assert.Equal(t, core.DefaultInvoiceLimit, f.catalog.lastLimit)

	f.catalog.invoices = nil
	rec = f.do(http.MethodGet, "/invoices", "", nil)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestListProducts(t *testing.T) {
	f := newFixture(t, testConfig(), nil, nil)

	rec := f.do(http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 2)
}

func TestExtractInvoice(t *testing.T) {
	ex := &fakeExtractor{}
	f := newFixture(t, testConfig(), ex, nil)

	body, contentType := multipartBody(t, "file", "scan.pdf", "%PDF-1.4")
	rec := f.do(http.MethodPost, "/extract-invoice", contentType, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc extraction.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, inventory.FlexString("F-001"), doc.Invoice.InvoiceNumber)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "scan.pdf", ex.filename)
	assert.Equal(t, "%PDF-1.4", ex.body)

	body, contentType = multipartBody(t, "document", "scan.pdf", "x")
	rec = f.do(http.MethodPost, "/extract-invoice", contentType, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VAL004", decodeError(t, rec).Code)
}

func TestExtractInvoice_RejectsBeforeUpload(t *testing.T) {
	client := extraction.NewClient("http://127.0.0.1:1", "", time.Second, 1<<20)
	f := newFixture(t, testConfig(), client, nil)

	body, contentType := multipartBody(t, "file", "notes.txt", "hello")
	rec := f.do(http.MethodPost, "/extract-invoice", contentType, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VAL002", decodeError(t, rec).Code)
}

func TestExtractInvoice_NotConfigured(t *testing.T) {
	f := newFixture(t, testConfig(), nil, nil)

	body, contentType := multipartBody(t, "file", "scan.pdf", "x")
	rec := f.do(http.MethodPost, "/extract-invoice", contentType, body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "EXT002", decodeError(t, rec).Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, testConfig(), nil, fakePinger{})
	rec := f.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Database)
	assert.Equal(t, core.DefaultMaxConcurrentRequests, resp.Requests.MaxConcurrent)

	f = newFixture(t, testConfig(), nil, fakePinger{err: errors.New("connection refused")})
	rec = f.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)
}

func TestRouting(t *testing.T) {
	f := newFixture(t, testConfig(), nil, nil)

	rec := f.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "HTTP404", decodeError(t, rec).Code)

	rec = f.do(http.MethodGet, "/match-products", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = f.do(http.MethodGet, "/products", "", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	rec = f.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stockmatch_http_requests_total")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2}
	f := newFixture(t, cfg, nil, nil)

	for i := 0; i < 2; i++ {
		rec := f.do(http.MethodGet, "/products", "", nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := f.do(http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)
}
