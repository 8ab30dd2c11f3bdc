package imagehost

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

	"github.com/roach88/foodsheet/internal/telemetry"
)

// DefaultCloudinaryEndpoint is the upload API base; the cloud name and
// "/image/upload" are appended.
const DefaultCloudinaryEndpoint = "https://api.cloudinary.com/v1_1"

// CloudinaryConfig configures a CloudinaryHost.
type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string // unsigned upload preset

	// Endpoint overrides DefaultCloudinaryEndpoint.
	Endpoint string
}

// CloudinaryHost uploads images to a Cloudinary-compatible API using an
// unsigned upload preset.
type CloudinaryHost struct {
	url    string
	preset string
	client *http.Client
}

// NewCloudinaryHost creates a host. A nil client gets a traced client
// from telemetry.NewHTTPClient.
func NewCloudinaryHost(cfg CloudinaryConfig, client *http.Client) (*CloudinaryHost, error) {
	if cfg.CloudName == "" {
		return nil, errors.New("cloudinary: cloud_name is required")
	}
	if cfg.UploadPreset == "" {
		return nil, errors.New("cloudinary: upload_preset is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultCloudinaryEndpoint
	}
	if client == nil {
		client = telemetry.NewHTTPClient(nil)
	}
	return &CloudinaryHost{
		url:    fmt.Sprintf("%s/%s/image/upload", endpoint, cfg.CloudName),
		preset: cfg.UploadPreset,
		client: client,
	}, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload posts the image as multipart "file" with the upload preset and
// returns the secure_url from the response.
func (h *CloudinaryHost) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if _, err := CheckExtension(filename); err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("upload_preset", h.preset); err != nil {
		return "", &UploadError{Backend: "cloudinary", Err: err}
	}
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", &UploadError{Backend: "cloudinary", Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", &UploadError{Backend: "cloudinary", Err: err}
	}
	if err := mw.Close(); err != nil {
		return "", &UploadError{Backend: "cloudinary", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, &body)
	if err != nil {
		return "", &UploadError{Backend: "cloudinary", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := h.client.Do(req)
	if err != nil {
		return "", &UploadError{Backend: "cloudinary", Err: err}
	}
	defer resp.Body.Close()

	var out uploadResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out)

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", &UploadError{Backend: "cloudinary", Status: resp.StatusCode, Err: errors.New(msg)}
	}
	if decodeErr != nil {
		return "", &UploadError{Backend: "cloudinary", Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if out.SecureURL == "" {
		return "", &UploadError{Backend: "cloudinary", Status: resp.StatusCode, Err: errors.New("response has no secure_url")}
	}
	return out.SecureURL, nil
}

var _ Uploader = (*CloudinaryHost)(nil)
