package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/stockmatch/internal/core"
	"github.com/JonMunkholm/stockmatch/internal/extraction"
	"github.com/JonMunkholm/stockmatch/internal/inventory"
	"github.com/JonMunkholm/stockmatch/internal/matching"
	"github.com/JonMunkholm/stockmatch/internal/reconcile"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and headers.
const multipartOverhead = 1 << 20

type matchResponse struct {
	Matches []matching.Result `json:"matches"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type addStockResponse struct {
	Success bool `json:"success"`
	*reconcile.Result
}

type healthResponse struct {
	Status     string             `json:"status"`
	Database   string             `json:"database,omitempty"`
	Extraction bool               `json:"extraction"`
	Requests   core.LimiterStatus `json:"requests"`
}

// handleMatchProducts resolves invoice lines to catalog products. Results
// are in request order.
func (s *Server) handleMatchProducts(w http.ResponseWriter, r *http.Request) {
	var req core.MatchProductsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	results, err := s.service.MatchProducts(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, matchResponse{Matches: results})
}

// handleSaveMapping memoizes a confirmed supplier label.
func (s *Server) handleSaveMapping(w http.ResponseWriter, r *http.Request) {
	var req core.SaveMappingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if _, err := s.service.SaveMapping(r.Context(), req); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleAddStock reconciles a confirmed invoice. On error nothing was
// written.
func (s *Server) handleAddStock(w http.ResponseWriter, r *http.Request) {
	var req core.AddStockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.AddStock(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, addStockResponse{Success: true, Result: res})
}

// handleListInvoices returns invoices newest first. ?limit caps the count.
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.service.ListInvoices(r.Context(), parseIntParam(r, "limit", 0))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.service.ListProducts(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// handleExtractInvoice forwards an uploaded scan in the "file" field to the
// extraction service and returns the normalized lines.
func (s *Server) handleExtractInvoice(w http.ResponseWriter, r *http.Request) {
	if !s.service.ExtractionEnabled() {
		respondError(w, r, core.ErrExtractionNotConfigured)
		return
	}

	maxSize := s.cfg.Extraction.MaxFileSize + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, extraction.ErrFileTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("%w: invalid multipart form: %v", inventory.ErrValidation, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	if err := s.service.CheckUpload(header.Filename, header.Size); err != nil {
		respondError(w, r, err)
		return
	}

	doc, err := s.service.ExtractInvoice(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// handleHealth reports readiness. A failed database ping returns 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:     "ok",
		Extraction: s.service.ExtractionEnabled(),
		Requests:   s.service.LimiterStatus(),
	}
	status := http.StatusOK

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	writeJSON(w, status, resp)
}

// decodeJSON reads a bounded JSON body into dst. Malformed bodies are
// validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", inventory.ErrValidation)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", inventory.ErrValidation, err)
	}
	return nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
