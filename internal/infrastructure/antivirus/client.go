// Package antivirus talks to the HTTP virus scanning service
package antivirus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	documentapp "github.com/datahub/backend/internal/application/document"
	"github.com/datahub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure Client implements VirusScanner
var _ documentapp.VirusScanner = (*Client)(nil)

// ErrNotConfigured is returned when no service URL is configured
var ErrNotConfigured = errors.New("antivirus service URL is not configured")

// ServiceError is returned for non-2xx responses from the scanning service
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("antivirus service returned status %d: %s", e.StatusCode, e.Body)
}

// maxResponseSize bounds the verdict body read from the service
const maxResponseSize = 64 << 10

// scanResponse is the verdict body. A response without "malware" carries no
// verdict and is treated as a failed scan.
type scanResponse struct {
	Malware *bool  `json:"malware"`
	Reason  string `json:"reason"`
}

// Client streams files to the scanning service as multipart uploads
type Client struct {
	serviceURL string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new antivirus client
func NewClient(cfg config.AntivirusConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		serviceURL: cfg.ServiceURL,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Scan sends body to the scanning service under the form field "file".
// The body is streamed so large files are never held in memory.
func (c *Client) Scan(ctx context.Context, filename string, body io.Reader) (*documentapp.ScanResult, error) {
	if c.serviceURL == "" {
		return nil, ErrNotConfigured
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, body)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL, pr)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("failed to build antivirus request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, fmt.Errorf("antivirus request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ServiceError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read antivirus response: %w", err)
	}
	var body scanResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode antivirus response: %w", err)
	}
	if body.Malware == nil {
		return nil, &ServiceError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	result := documentapp.ScanResult{Malware: *body.Malware, Reason: body.Reason}

	c.logger.Debug("Antivirus scan finished",
		zap.String("filename", filename),
		zap.Bool("malware", result.Malware),
		zap.Duration("duration", time.Since(start)),
	)
	return &result, nil
}
