// Package extraction talks to the document-extraction service that turns an
// invoice scan into header fields and table rows.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/stockmatch/internal/logging"
	"github.com/JonMunkholm/stockmatch/internal/metrics"
	"github.com/google/uuid"
)

var (
	// ErrUnsupportedFile is returned for extensions the service cannot read.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrExtractionFailed covers every failure of the remote service.
	ErrExtractionFailed = errors.New("processing failed")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// Client calls POST {baseURL}/extract with a multipart "file" field.
type Client struct {
	baseURL     string
	apiKey      string
	maxFileSize int64
	httpClient  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration, maxFileSize int64) *Client {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:      apiKey,
		maxFileSize: maxFileSize,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// CheckFile validates the file name and size before any bytes are sent.
func (c *Client) CheckFile(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
	if c.maxFileSize > 0 && size > c.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, size, c.maxFileSize)
	}
	return nil
}

// Extract uploads the document and returns its canonical form.
func (c *Client) Extract(ctx context.Context, filename string, r io.Reader) (*Document, error) {
	uploadID := uuid.NewString()
	log := logging.WithFields(ctx, "upload_id", uploadID, "filename", filename)

	data, err := io.ReadAll(io.LimitReader(r, c.limit()+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := c.CheckFile(filename, int64(len(data))); err != nil {
		metrics.ExtractionsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	start := time.Now()
	raw, err := c.post(ctx, uploadID, filename, data)
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues("error").Inc()
		log.Error("extraction failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	doc := Normalize(raw)
	metrics.ExtractionsTotal.WithLabelValues("ok").Inc()
	log.Info("document extracted",
		"items", len(doc.Items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

func (c *Client) limit() int64 {
	if c.maxFileSize > 0 {
		return c.maxFileSize
	}
	return 20 << 20
}

func (c *Client) post(ctx context.Context, uploadID, filename string, data []byte) (*RawResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Request-ID", uploadID)
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw RawResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && raw.Message != "" {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, raw.Message)
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if raw.Status != "" && raw.Status != "success" {
		return nil, fmt.Errorf("service status %q: %s", raw.Status, raw.Message)
	}
	return &raw, nil
}
