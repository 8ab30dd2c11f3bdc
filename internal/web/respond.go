package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/roach88/foodsheet/internal/imagehost"
	"github.com/roach88/foodsheet/internal/model"
	"github.com/roach88/foodsheet/internal/session"
	"github.com/roach88/foodsheet/internal/store"
)

// Error codes returned in the error envelope besides validation codes.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeNotFound        = "NOT_FOUND"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeDuplicate       = "DUPLICATE"
	CodeNotConnected    = "NOT_CONNECTED"
	CodePersistence     = "PERSISTENCE"
	CodeUploadFailed    = "UPLOAD_FAILED"
	CodeUnavailable     = "UNAVAILABLE"
	CodeInternal        = "INTERNAL"
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// badRequestError marks malformed input that never reached a service.
type badRequestError struct {
	field string
	msg   string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(field, format string, args ...any) error {
	return &badRequestError{field: field, msg: fmt.Sprintf(format, args...)}
}

var errImagesDisabled = errors.New("image uploads are not configured")

// classify maps an error to its HTTP status and envelope.
func classify(err error) (int, ErrorDetail) {
	var bre *badRequestError
	var ve *model.ValidationError
	var ue *imagehost.UploadError

	switch {
	case errors.As(err, &bre):
		return http.StatusBadRequest, ErrorDetail{Code: CodeBadRequest, Message: bre.msg, Field: bre.field}
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, ErrorDetail{Code: string(ve.Code), Message: ve.Message, Field: ve.Field}
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, ErrorDetail{Code: CodeSessionNotFound, Message: err.Error()}
	case errors.Is(err, model.ErrNotConnected):
		return http.StatusServiceUnavailable, ErrorDetail{Code: CodeNotConnected, Message: err.Error()}
	case errors.Is(err, errImagesDisabled):
		return http.StatusServiceUnavailable, ErrorDetail{Code: CodeUnavailable, Message: err.Error()}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ErrorDetail{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, ErrorDetail{Code: CodeConflict, Message: err.Error()}
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict, ErrorDetail{Code: CodeDuplicate, Message: err.Error()}
	case model.IsPersistence(err):
		return http.StatusBadGateway, ErrorDetail{Code: CodePersistence, Message: err.Error()}
	case errors.As(err, &ue):
		return http.StatusBadGateway, ErrorDetail{Code: CodeUploadFailed, Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorDetail{Code: CodeInternal, Message: err.Error()}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := classify(err)
	if status >= 500 {
		s.logger.Warn("request failed", "path", r.URL.Path, "code", detail.Code, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", detail.Code, "error", err)
	}
	writeJSON(w, status, ErrorBody{Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

// decodeJSON decodes a single JSON object from the request body. Unknown
// fields are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("", "malformed JSON body: %v", err)
	}
	if dec.More() {
		return badRequest("", "malformed JSON body: trailing data")
	}
	return nil
}
