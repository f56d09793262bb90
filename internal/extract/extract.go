// Package extract turns uploaded statement files into plain text. Extraction
// itself runs in a separate service; this package holds the collaborator
// contract and an HTTP client for it.
package extract

import (
	"context"
	"errors"
)

var (
	// ErrPasswordProtected means the document needs a password, or the one
	// supplied was wrong. Callers should surface this to the user rather
	// than treat it as an internal failure.
	ErrPasswordProtected = errors.New("document is password-protected")

	// ErrExtractionFailed covers everything else the extraction service
	// could not handle: corrupt files, unsupported formats, empty output.
	ErrExtractionFailed = errors.New("text extraction failed")
)

// Extractor converts a raw statement file into plain text.
type Extractor interface {
	Extract(ctx context.Context, content []byte, filename, password string) (string, error)
}
