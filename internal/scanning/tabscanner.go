package scanning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTabscannerURL = "https://api.tabscanner.com"

// terminalStatuses are the poll status values that mean OCR processing
// has finished. Compared case-insensitively.
var terminalStatuses = map[string]bool{
	"success":   true,
	"done":      true,
	"completed": true,
}

// Tabscanner implements the Scanner interface against the Tabscanner
// OCR API: one upload, then a fixed budget of sleep-then-poll attempts.
type Tabscanner struct {
	client       *resty.Client
	maxAttempts  int
	pollInterval time.Duration
	sleep        func(time.Duration)
}

// NewTabscanner creates a new Tabscanner Scanner instance.
// maxAttempts is a hard ceiling on poll attempts, not a backoff policy;
// pollInterval is slept before every attempt, including the first, since
// the provider never finishes immediately after upload.
func NewTabscanner(baseURL, apiKey string, maxAttempts int, pollInterval time.Duration) (*Tabscanner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("tabscanner api key is required")
	}
	if baseURL == "" {
		baseURL = defaultTabscannerURL
	}
	if maxAttempts <= 0 {
		maxAttempts = 2
	}
	if pollInterval <= 0 {
		pollInterval = 20 * time.Second
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("apikey", apiKey)

	return &Tabscanner{
		client:       client,
		maxAttempts:  maxAttempts,
		pollInterval: pollInterval,
		sleep:        time.Sleep,
	}, nil
}

// ScanReceipt uploads a receipt image and polls the OCR provider until
// it reports a terminal status, then extracts the cleaned item set.
func (t *Tabscanner) ScanReceipt(imageData []byte, contentType string) (Items, error) {
	// Prepare image data (convert PDF/HEIC to PNG if needed)
	finalImageData, _, _, err := prepareImageData(imageData, contentType)
	if err != nil {
		return nil, err
	}

	token, err := t.upload(finalImageData)
	if err != nil {
		return nil, err
	}

	slog.Info("Receipt uploaded", "token", token, "max_attempts", t.maxAttempts)

	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		t.sleep(t.pollInterval)

		status, result, err := t.poll(token)
		if err != nil {
			return nil, err
		}

		slog.Debug("Polled OCR result", "attempt", attempt, "status", status)

		if terminalStatuses[strings.ToLower(status)] {
			return extractItems(result), nil
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrTimeout, t.maxAttempts)
}

// upload submits the image as binary form content and returns the
// processing token. A response without a token is an upload failure,
// never retried.
func (t *Tabscanner) upload(imageData []byte) (string, error) {
	resp, err := t.client.R().
		SetFileReader("image", "receipt.png", bytes.NewReader(imageData)).
		Post("/api/2/process")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("%w: unparsable upload response (status %d)", ErrUploadFailed, resp.StatusCode())
	}

	// The token field name depends on the provider schema version
	for _, field := range []string{"token", "id"} {
		if token, ok := body[field].(string); ok && token != "" {
			return token, nil
		}
	}

	return "", fmt.Errorf("%w: no token in upload response (status %d)", ErrUploadFailed, resp.StatusCode())
}

// poll issues one status check for a processing token.
func (t *Tabscanner) poll(token string) (string, map[string]any, error) {
	resp, err := t.client.R().Get("/api/result/" + token)
	if err != nil {
		return "", nil, fmt.Errorf("polling OCR result: %w", err)
	}

	var body struct {
		Status string         `json:"status"`
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", nil, fmt.Errorf("decoding poll response: %w", err)
	}

	return body.Status, body.Result, nil
}

// Close closes the Tabscanner client (no-op for HTTP client)
func (t *Tabscanner) Close() error {
	return nil
}
