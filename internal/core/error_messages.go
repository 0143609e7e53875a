package core

// error_messages.go turns technical errors into messages a client can show.
//
// Every message carries a code so a user can quote it and support can find
// the matching server log line.
//
// # Validation (VAL)
//
//	VAL001 - Invalid input: the request was rejected before anything was written
//	VAL002 - Unsupported file: only .jpg, .jpeg, .png and .pdf are accepted
//	VAL003 - File too large: the document exceeds the upload limit
//	VAL004 - No file: the multipart "file" field is missing
//
// # Transaction (TXN)
//
//	TXN001 - Transaction failed: the invoice was rolled back, stock is unchanged
//
// # Extraction (EXT)
//
//	EXT001 - Processing failed: the extraction service could not read the document
//	EXT002 - Not configured: no extraction service URL is set
//
// # Requests (REQ)
//
//	REQ001 - Server busy: every match slot stayed occupied
//	REQ002 - Request cancelled
//	REQ003 - Request timeout
//
// # Database (DB)
//
//	DB001 - Unknown product: the referenced product does not exist
//	DB002 - Connection refused
//	DB003 - Connection reset
//	DB004 - Deadlock
//
// # Rate limiting (RATE)
//
//	RATE001 - Too many requests from this client
//
// ERR000 is the fallback; check the server log for the technical error.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/stockmatch/internal/extraction"
	"github.com/JonMunkholm/stockmatch/internal/inventory"
	"github.com/JonMunkholm/stockmatch/internal/reconcile"
)

// UserMessage is an error as presented to the client.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

// ErrExtractionNotConfigured is returned by ExtractInvoice when the service
// runs without an extraction backend.
var ErrExtractionNotConfigured = errors.New("extraction service not configured")

// ErrNoFile is returned when an upload request carries no file.
var ErrNoFile = errors.New("no file provided")

// sentinelMessages are checked first with errors.Is, in order. Wrapped
// errors are classified by their outermost known sentinel.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{reconcile.ErrTransaction, UserMessage{
		Message: "Transaction failed",
		Action:  "No stock was changed. Please try again",
		Code:    "TXN001",
	}},
	{inventory.ErrValidation, UserMessage{
		Message: "Invalid input",
		Action:  "Correct the highlighted fields and resubmit",
		Code:    "VAL001",
	}},
	{extraction.ErrUnsupportedFile, UserMessage{
		Message: "Unsupported file type",
		Action:  "Upload a JPG, PNG or PDF document",
		Code:    "VAL002",
	}},
	{extraction.ErrFileTooLarge, UserMessage{
		Message: "File too large",
		Action:  "Upload a smaller scan or a single page",
		Code:    "VAL003",
	}},
	{ErrNoFile, UserMessage{
		Message: "No file was provided",
		Action:  "Attach the invoice in the \"file\" field",
		Code:    "VAL004",
	}},
	{extraction.ErrExtractionFailed, UserMessage{
		Message: "Processing failed",
		Action:  "The document could not be read. Try a clearer scan",
		Code:    "EXT001",
	}},
	{ErrExtractionNotConfigured, UserMessage{
		Message: "Document extraction is not available",
		Action:  "Enter the invoice lines manually",
		Code:    "EXT002",
	}},
	{ErrTooManyRequests, UserMessage{
		Message: "Server busy",
		Action:  "Please wait a moment and try again",
		Code:    "REQ001",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ002",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try again with fewer lines",
		Code:    "REQ003",
	}},
}

// errorPatterns match driver and transport errors that carry no sentinel.
// Patterns are lower case.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"violates foreign key", UserMessage{
		Message: "Referenced product does not exist",
		Action:  "Refresh the catalog and pick an existing product",
		Code:    "DB001",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB002",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB003",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB004",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a client message. Known sentinels
// win over text patterns; anything else maps to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
