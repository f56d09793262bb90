package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

// HTTPExtractor calls an external extraction service. The service accepts a
// multipart POST with a `file` part and an optional `password` field, and
// responds with {"text": "..."} on success or {"error": "..."} otherwise.
type HTTPExtractor struct {
	baseURL string
	client  *http.Client
}

// NewHTTPExtractor wires an extractor against the service at baseURL.
func NewHTTPExtractor(baseURL string) *HTTPExtractor {
	return &HTTPExtractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

type extractResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Extract sends the file to the extraction service and returns its text.
func (h *HTTPExtractor) Extract(ctx context.Context, content []byte, filename, password string) (string, error) {
	var b bytes.Buffer
	mw := multipart.NewWriter(&b)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("Extract: build form file: %w", err)
	}
	if _, err := fw.Write(content); err != nil {
		return "", fmt.Errorf("Extract: write form file: %w", err)
	}
	if password != "" {
		if err := mw.WriteField("password", password); err != nil {
			return "", fmt.Errorf("Extract: write password field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("Extract: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/extract", &b)
	if err != nil {
		return "", fmt.Errorf("Extract: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Extract: call extraction service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return "", fmt.Errorf("Extract: read response: %w", err)
	}

	var out extractResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("Extract: decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || out.Error != "" {
		if isPasswordError(resp.StatusCode, out.Error) {
			return "", fmt.Errorf("%w: %s", ErrPasswordProtected, out.Error)
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrExtractionFailed, resp.StatusCode, out.Error)
	}

	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("%w: service returned no text", ErrExtractionFailed)
	}
	return out.Text, nil
}

func isPasswordError(status int, msg string) bool {
	if status == http.StatusUnauthorized {
		return true
	}
	return strings.Contains(strings.ToLower(msg), "password")
}
