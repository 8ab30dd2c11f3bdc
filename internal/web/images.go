package web

import (
	"net/http"
)

type uploadResponse struct {
	URL string `json:"url"`
}

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		s.writeError(w, r, errImagesDisabled)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, r, badRequest("file", "malformed upload: %v", err))
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, badRequest("file", "multipart field \"file\" is required"))
		return
	}
	defer f.Close()

	url, err := s.images.Upload(r.Context(), hdr.Filename, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("image uploaded", "url", url)
	writeJSON(w, http.StatusCreated, uploadResponse{URL: url})
}
