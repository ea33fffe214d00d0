package scanning

import "errors"

// Scan failure conditions. Callers distinguish these with errors.Is so
// users can be told "the scan failed" rather than shown an empty fridge.
var (
	// ErrImageNotFound means the receipt image path does not exist.
	// Raised before any network call.
	ErrImageNotFound = errors.New("receipt image not found")

	// ErrUploadFailed means the OCR provider rejected the upload or
	// returned no processing token. Not retried.
	ErrUploadFailed = errors.New("receipt upload failed")

	// ErrTimeout means the poll budget was exhausted before the OCR
	// provider reached a terminal status.
	ErrTimeout = errors.New("receipt processing timed out")
)

// Scanner defines the interface for receipt scanning operations
type Scanner interface {
	// ScanReceipt runs OCR over a receipt image and returns the cleaned
	// item set extracted from its line items
	ScanReceipt(imageData []byte, contentType string) (Items, error)
	// Close closes the scanner and releases resources
	Close() error
}
