package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/pagerewrite/internal/parser"
	"github.com/dgallion1/pagerewrite/internal/transform"
)

// upload is a source document pulled out of a request.
type upload struct {
	filename   string
	title      string
	transforms []string
	data       []byte
}

// uploadError carries the HTTP status for a rejected upload.
type uploadError struct {
	msg  string
	code int
}

func (e *uploadError) Error() string { return e.msg }

// readUpload accepts either a multipart form (file, title, transforms) or a
// raw HTML body with optional filename, title and transforms query params.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return s.readMultipart(r)
	}

	q := r.URL.Query()
	u := &upload{
		filename:   sanitizeFilename(q.Get("filename")),
		title:      q.Get("title"),
		transforms: transform.ParseNames(q.Get("transforms")),
	}
	if q.Get("filename") == "" {
		u.filename = "document.html"
	}
	if err := s.checkExtension(u.filename); err != nil {
		return nil, err
	}
	data, err := s.readLimited(r.Body)
	if err != nil {
		return nil, err
	}
	u.data = data
	return u, nil
}

func (s *Server) readMultipart(r *http.Request) (*upload, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, &uploadError{"invalid multipart form: " + err.Error(), http.StatusBadRequest}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &uploadError{"file is required: " + err.Error(), http.StatusBadRequest}
	}
	defer file.Close()

	u := &upload{
		filename:   sanitizeFilename(header.Filename),
		title:      r.FormValue("title"),
		transforms: transform.ParseNames(r.FormValue("transforms")),
	}
	if err := s.checkExtension(u.filename); err != nil {
		return nil, err
	}
	data, err := s.readLimited(file)
	if err != nil {
		return nil, err
	}
	u.data = data
	return u, nil
}

func (s *Server) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &uploadError{fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge}
		}
		return nil, &uploadError{"failed to read file", http.StatusBadRequest}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, &uploadError{fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge}
	}
	return data, nil
}

func (s *Server) checkExtension(filename string) error {
	if !parser.IsSupportedExtension(filename) {
		return &uploadError{fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest}
	}
	return nil
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	u, err := s.readUpload(w, r)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	out, err := s.orchestrator.RewriteNow(u.filename, u.title, u.transforms, u.data)
	if err != nil {
		code := http.StatusUnprocessableEntity
		if errors.Is(err, transform.ErrUnknownTransform) {
			code = http.StatusBadRequest
		}
		jsonError(w, err.Error(), code)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Hash", out.ContentHash)
	w.Header().Set("X-Transforms-Changed", strconv.Itoa(out.Report.Changed()))
	w.Write(out.HTML)
}

func (s *Server) handleListTransforms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"transforms": s.orchestrator.Registry().Names(),
		"default":    s.orchestrator.DefaultTransforms(),
	})
}

func writeUploadError(w http.ResponseWriter, err error) {
	var ue *uploadError
	if errors.As(err, &ue) {
		jsonError(w, ue.msg, ue.code)
		return
	}
	jsonError(w, err.Error(), http.StatusBadRequest)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
