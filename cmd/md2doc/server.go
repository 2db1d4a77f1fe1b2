package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/pipeline"
)

// Response headers set on successful conversions.
const (
	headerDiagnostics = "X-Md2doc-Diagnostics"
	headerFallbacks   = "X-Md2doc-Fallbacks"
)

// formOverhead is allowed on top of the upload limit for multipart framing.
const formOverhead = 1 << 20

// server is the HTTP API in front of a converter pool.
type server struct {
	router    chi.Router
	pool      Pool
	log       *slog.Logger
	maxUpload int64
	version   string
}

// newServer creates and configures the HTTP handler.
func newServer(pool Pool, log *slog.Logger, maxUpload int64, version string) *server {
	s := &server{
		pool:      pool,
		log:       log,
		maxUpload: maxUpload,
		version:   version,
	}
	s.setupRoutes()
	return s
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/convert", s.handleConvert)

	s.router = r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"workers": s.pool.Size(),
	})
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	log := s.log.With("request_id", middleware.GetReqID(r.Context()))
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+formOverhead)

	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", s.maxUpload), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	filename := sanitizeFilename(header.Filename)
	if !fileutil.IsSource(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type %q (want %s)", filepath.Ext(filename), strings.Join(fileutil.SourceExtensions, ", ")), http.StatusUnsupportedMediaType)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, md2doc.MaxInputSize+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if len(data) > md2doc.MaxInputSize {
		jsonError(w, fmt.Sprintf("markdown exceeds max size (%d bytes)", md2doc.MaxInputSize), http.StatusRequestEntityTooLarge)
		return
	}

	kind, err := md2doc.ParseOutputKind(r.FormValue("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	mode, err := md2doc.ParseASCIIMode(r.FormValue("ascii_mode"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	conv, err := s.pool.Acquire()
	if err != nil {
		log.Error("acquire converter", "error", err)
		jsonError(w, "converter unavailable", http.StatusServiceUnavailable)
		return
	}
	// No SourceDir and no absolute paths: uploads never read the host's disk.
	res, err := conv.Convert(r.Context(), md2doc.Input{
		Markdown:   string(data),
		SourceName: filename,
		Kind:       kind,
		ASCIIMode:  mode,
	})
	s.pool.Release(conv)
	if err != nil {
		status := statusFor(err)
		log.Warn("conversion failed", "file", filename, "kind", kind, "status", status, "error", err)
		jsonError(w, err.Error(), status)
		return
	}

	diagHeader, err := diagnosticsHeader(res.Diagnostics)
	if err != nil {
		log.Error("encode diagnostics", "error", err)
	} else {
		w.Header().Set(headerDiagnostics, diagHeader)
	}
	w.Header().Set(headerFallbacks, strconv.Itoa(res.Fallbacks()))
	w.Header().Set("Content-Type", res.Kind.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Blob)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Blob); err != nil {
		log.Warn("write response", "error", err)
		return
	}

	log.Info("converted",
		"file", filename,
		"output", res.Filename,
		"kind", res.Kind,
		"bytes", len(res.Blob),
		"fallbacks", res.Fallbacks(),
		"diagnostics", len(res.Diagnostics),
	)
}

// statusFor maps a conversion error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, md2doc.ErrEmptyMarkdown),
		errors.Is(err, md2doc.ErrInvalidOutputKind),
		errors.Is(err, pipeline.ErrInvalidASCII):
		return http.StatusBadRequest
	case errors.Is(err, md2doc.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// diagnosticJSON is the wire form of md2doc.Diagnostic.
type diagnosticJSON struct {
	Kind     string `json:"kind"`
	Block    int    `json:"block"`
	Source   string `json:"source,omitempty"`
	Renderer string `json:"renderer,omitempty"`
	Message  string `json:"message,omitempty"`
}

// diagnosticsHeader encodes diags as a JSON array restricted to ASCII, so
// the header survives proxies that reject raw UTF-8.
func diagnosticsHeader(diags []md2doc.Diagnostic) (string, error) {
	out := make([]diagnosticJSON, len(diags))
	for i, d := range diags {
		out[i] = diagnosticJSON{
			Kind:     string(d.Kind),
			Block:    d.Block,
			Source:   string(d.Source),
			Renderer: d.Renderer,
			Message:  d.Message,
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return asciiJSON(data), nil
}

// asciiJSON rewrites non-ASCII runes of encoded JSON as \u escapes.
func asciiJSON(data []byte) string {
	var b strings.Builder
	for _, r := range string(data) {
		switch {
		case r < 0x80:
			b.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
		default:
			fmt.Fprintf(&b, `\u%04x`, r)
		}
	}
	return b.String()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
