package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/stockmatch/internal/extraction"
	"github.com/JonMunkholm/stockmatch/internal/inventory"
	"github.com/JonMunkholm/stockmatch/internal/reconcile"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"validation", fmt.Errorf("%w: item 2: description is required", inventory.ErrValidation), "VAL001"},
		{"unsupported file", fmt.Errorf("%w: \".docx\"", extraction.ErrUnsupportedFile), "VAL002"},
		{"file too large", fmt.Errorf("%w: 30MB", extraction.ErrFileTooLarge), "VAL003"},
		{"no file", ErrNoFile, "VAL004"},
		{"transaction", fmt.Errorf("%w: item 1: insert product: boom", reconcile.ErrTransaction), "TXN001"},
		{"extraction failed", fmt.Errorf("%w: status 500", extraction.ErrExtractionFailed), "EXT001"},
		{"extraction not configured", ErrExtractionNotConfigured, "EXT002"},
		{"busy", ErrTooManyRequests, "REQ001"},
		{"cancelled", fmt.Errorf("list products: %w", context.Canceled), "REQ002"},
		{"deadline", context.DeadlineExceeded, "REQ003"},
		{"foreign key", errors.New(`ERROR: insert violates foreign key constraint "fk_product"`), "DB001"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "DB002"},
		{"deadlock", errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"), "DB004"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if tt.err != nil && (got.Message == "" || got.Action == "") {
				t.Errorf("MapError(%v) = %+v, want message and action", tt.err, got)
			}
		})
	}
}

func TestMapError_TransactionWinsOverCause(t *testing.T) {
	// a rollback caused by a dropped connection is still a transaction failure
	err := fmt.Errorf("%w: commit: %w", reconcile.ErrTransaction, errors.New("connection reset by peer"))
	if got := MapError(err).Code; got != "TXN001" {
		t.Errorf("Code = %q, want TXN001", got)
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrTooManyRequests)
	want := "Server busy (Code: REQ001). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if !IsUserFacing(inventory.ErrValidation) {
		t.Error("IsUserFacing(ErrValidation) = false")
	}
	if IsUserFacing(errors.New("segfault in the matrix")) {
		t.Error("IsUserFacing(unknown) = true")
	}
}
