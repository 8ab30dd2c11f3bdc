// Package imagehost stores uploaded product images and returns the public
// URL recorded as the product's image reference.
package imagehost

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/roach88/foodsheet/internal/model"
)

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// AllowedExtensions are the accepted image file extensions.
var AllowedExtensions = []string{".png", ".jpg", ".jpeg"}

// UploadError reports a failed upload.
type UploadError struct {
	Backend string
	Status  int // HTTP status from a remote host, 0 if none
	Err     error
}

func (e *UploadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("image upload (%s): status %d: %v", e.Backend, e.Status, e.Err)
	}
	return fmt.Sprintf("image upload (%s): %v", e.Backend, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// CheckExtension returns the lower-cased extension of filename, or an
// INVALID_INPUT ValidationError if it is not an accepted image type.
func CheckExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", model.NewValidationError(model.ErrCodeInvalidInput, "file",
		fmt.Sprintf("unsupported image type %q: use png, jpg or jpeg", filepath.Ext(filename)))
}
