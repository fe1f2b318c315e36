package web

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
)

type uploadURLRequest struct {
	Filename string `json:"filename" validate:"required,max=255"`
}

func (s *Server) mediaUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: s.tr.T("error.payload_too_large")})
			return
		}
		s.fail(w, r, domain.ErrInvalidArgument, "")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.fail(w, r, domain.ErrInvalidArgument, "")
		return
	}
	files := make([]model.UploadFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			s.fail(w, r, err, "")
			return
		}
		files = append(files, model.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	res, err := s.mediaUC.Upload(r.Context(), files)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) mediaUploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if !s.bindAndValidate(w, r, &req) {
		return
	}
	target, err := s.mediaUC.SignedUpload(r.Context(), req.Filename)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (s *Server) mediaRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.mediaUC.Remove(r.Context(), chi.URLParam(r, "filename")); err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
