// Package upload sends generated artifacts to pre-signed storage URLs.
package upload

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vk/torchgen/internal/ctxlog"
)

// DefaultTimeout bounds a single upload when none is configured.
const DefaultTimeout = 30 * time.Second

// Uploader PUTs files to pre-signed URLs. It reuses one HTTP client so
// batch runs share connections.
type Uploader struct {
	client *http.Client
}

// Result describes a completed upload.
type Result struct {
	Status      string
	Size        int64
	ContentType string
}

// New creates an Uploader whose requests time out after timeout.
func New(timeout time.Duration) *Uploader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Uploader{client: &http.Client{Timeout: timeout}}
}

// ContentType is the type sent for path, derived from its extension.
func ContentType(path string) string {
	switch filepath.Ext(path) {
	case ".py":
		return "text/x-python"
	case ".ipynb":
		return "application/x-ipynb+json"
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// UploadFile PUTs the file at path to url. Any status outside 2xx is an error.
func (u *Uploader) UploadFile(ctx context.Context, path, url string) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact '%s': %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats for '%s': %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, file)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}

	contentType := ContentType(path)
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading artifact.", "source", path, "size", stat.Size(), "contentType", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upload failed with status: %s", resp.Status)
	}

	logger.Info("Successfully uploaded artifact.", "status", resp.Status)
	return &Result{Status: resp.Status, Size: stat.Size(), ContentType: contentType}, nil
}
