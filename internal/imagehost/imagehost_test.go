package imagehost

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/foodsheet/internal/model"
)

func TestCheckExtension(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPG", "c.jpeg"} {
		_, err := CheckExtension(name)
		assert.NoError(t, err, name)
	}
	for _, name := range []string{"a.gif", "noext", "x.png.exe"} {
		_, err := CheckExtension(name)
		assert.Equal(t, model.ErrCodeInvalidInput, model.ValidationCode(err), name)
	}
}

func TestDiskHost_Upload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	h, err := NewDiskHost(dir, "http://localhost:8501/images/")
	require.NoError(t, err)

	url, err := h.Upload(context.Background(), "padthai.JPG", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8501/images/"), url)
	require.True(t, strings.HasSuffix(url, ".jpg"), url)

	name := strings.TrimPrefix(url, "http://localhost:8501/images/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestDiskHost_RejectsType(t *testing.T) {
	h, err := NewDiskHost(t.TempDir(), "http://x")
	require.NoError(t, err)

	_, err = h.Upload(context.Background(), "menu.pdf", strings.NewReader("x"))
	assert.True(t, model.IsValidation(err))

	entries, err := os.ReadDir(h.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCloudinaryHost_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/demo/image/upload", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "unsigned", r.FormValue("upload_preset"))

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "tea.png", hdr.Filename)
		assert.Equal(t, "png-bytes", string(data))

		json.NewEncoder(w).Encode(map[string]string{"secure_url": "https://res.example/demo/tea.png"})
	}))
	defer srv.Close()

	h, err := NewCloudinaryHost(CloudinaryConfig{
		CloudName:    "demo",
		UploadPreset: "unsigned",
		Endpoint:     srv.URL + "/v1_1",
	}, srv.Client())
	require.NoError(t, err)

	url, err := h.Upload(context.Background(), "uploads/tea.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.example/demo/tea.png", url)
}

func TestCloudinaryHost_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))
	defer srv.Close()

	h, err := NewCloudinaryHost(CloudinaryConfig{CloudName: "demo", UploadPreset: "p", Endpoint: srv.URL}, nil)
	require.NoError(t, err)

	_, err = h.Upload(context.Background(), "a.png", strings.NewReader("x"))
	var uploadErr *UploadError
	require.True(t, errors.As(err, &uploadErr))
	assert.Equal(t, http.StatusBadRequest, uploadErr.Status)
	assert.Contains(t, err.Error(), "Upload preset not found")
}

func TestCloudinaryHost_MissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	h, err := NewCloudinaryHost(CloudinaryConfig{CloudName: "demo", UploadPreset: "p", Endpoint: srv.URL}, nil)
	require.NoError(t, err)

	_, err = h.Upload(context.Background(), "a.png", strings.NewReader("x"))
	var uploadErr *UploadError
	assert.ErrorAs(t, err, &uploadErr)
}

func TestNewCloudinaryHost_RequiresConfig(t *testing.T) {
	_, err := NewCloudinaryHost(CloudinaryConfig{UploadPreset: "p"}, nil)
	assert.Error(t, err)
	_, err = NewCloudinaryHost(CloudinaryConfig{CloudName: "c"}, nil)
	assert.Error(t, err)
}
