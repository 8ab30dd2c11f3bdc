package imagehost

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskHost writes images into a local directory served by the HTTP server.
type DiskHost struct {
	dir     string
	baseURL string
}

// NewDiskHost creates the directory if needed. baseURL is the public URL
// the directory is served under, e.g. http://localhost:8501/images.
func NewDiskHost(dir, baseURL string) (*DiskHost, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &DiskHost{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory images are written to.
func (h *DiskHost) Dir() string {
	return h.dir
}

// Upload writes r to <dir>/<uuid><ext> and returns <baseURL>/<uuid><ext>.
func (h *DiskHost) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext, err := CheckExtension(filename)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", &UploadError{Backend: "disk", Err: err}
	}

	name := uuid.New().String() + ext
	path := filepath.Join(h.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", &UploadError{Backend: "disk", Err: err}
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", &UploadError{Backend: "disk", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", &UploadError{Backend: "disk", Err: err}
	}

	return h.baseURL + "/" + name, nil
}

var _ Uploader = (*DiskHost)(nil)
