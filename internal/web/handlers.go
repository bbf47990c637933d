package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ryosukesatoh/doc-digest/internal/extract"
	"github.com/ryosukesatoh/doc-digest/internal/runner"
)

const (
	msgNoFilePart   = "No file part in the request."
	msgNoFile       = "No selected file."
	msgEmptyFile    = "The uploaded file is empty or contains no readable text."
	msgBadTopK      = "Number of sentences must be a positive integer."
	msgSaveFailed   = "Summary generated, but failed to save to file."
	msgInternal     = "Internal error while summarizing the document."
	msgTooLargeTmpl = "File too large (max %dMB)."
)

type pageData struct {
	Summary  string
	Source   string
	Artifact string
	Error    string
	Warning  string
	TopK     int
}

type summaryResponse struct {
	Summary   string   `json:"summary"`
	Sentences []string `json:"sentences"`
	Source    string   `json:"source"`
	Artifact  string   `json:"artifact,omitempty"`
	Warning   string   `json:"warning,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// outcome is the result of processing one upload, independent of the
// response format.
type outcome struct {
	result  *runner.Result
	status  int
	message string
	warning string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, pageData{TopK: s.defaultK})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	out := s.process(w, r)
	data := pageData{TopK: s.defaultK, Error: out.message, Warning: out.warning}
	if out.result != nil {
		data.Summary = out.result.Summary.Text
		data.Source = out.result.Summary.Source
		data.Artifact = out.result.ArtifactPath
	}
	s.render(w, r, out.status, data)
}

func (s *Server) handleAPISummarize(w http.ResponseWriter, r *http.Request) {
	out := s.process(w, r)
	if out.result == nil {
		writeJSON(w, out.status, errorResponse{Error: out.message})
		return
	}
	sum := out.result.Summary
	writeJSON(w, out.status, summaryResponse{
		Summary:   sum.Text,
		Sentences: sum.Sentences,
		Source:    sum.Source,
		Artifact:  out.result.ArtifactPath,
		Warning:   out.warning,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// process reads the multipart upload and runs the pipeline. Every
// per-request failure becomes a user-facing message.
func (s *Server) process(w http.ResponseWriter, r *http.Request) outcome {
	log := loggerFrom(r.Context(), s.log)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return outcome{
				status:  http.StatusRequestEntityTooLarge,
				message: fmt.Sprintf(msgTooLargeTmpl, s.maxUpload/(1024*1024)),
			}
		}
		log.WarnContext(r.Context(), "Failed to parse upload form", "error", err)
		return outcome{status: http.StatusBadRequest, message: msgNoFilePart}
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	topK, err := parseTopK(r.FormValue("top_k"))
	if err != nil {
		return outcome{status: http.StatusBadRequest, message: msgBadTopK}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		// A file input submitted with nothing selected arrives as a plain
		// form value with an empty filename.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			return outcome{status: http.StatusBadRequest, message: msgNoFile}
		}
		return outcome{status: http.StatusBadRequest, message: msgNoFilePart}
	}
	defer file.Close()

	if strings.TrimSpace(header.Filename) == "" {
		return outcome{status: http.StatusBadRequest, message: msgNoFile}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		log.ErrorContext(r.Context(), "Failed to read upload", "error", err, "filename", header.Filename)
		return outcome{status: http.StatusInternalServerError, message: msgInternal}
	}

	res, err := s.pipeline.Run(r.Context(), header.Filename, data, topK)
	if err == nil {
		return outcome{result: res, status: http.StatusOK}
	}

	var perr *runner.PersistenceError
	switch {
	case errors.As(err, &perr) && res != nil:
		log.WarnContext(r.Context(), "Summary returned without persistence", "error", err)
		return outcome{result: res, status: http.StatusOK, warning: msgSaveFailed}
	case errors.Is(err, runner.ErrNoInput):
		if len(data) == 0 {
			return outcome{status: http.StatusBadRequest, message: msgEmptyFile}
		}
		return outcome{status: http.StatusBadRequest, message: msgNoFile}
	}

	if msg := extract.UserMessage(err); msg != "" {
		return outcome{status: http.StatusUnprocessableEntity, message: msg}
	}
	log.ErrorContext(r.Context(), "Summarization failed", "error", err, "filename", header.Filename)
	return outcome{status: http.StatusInternalServerError, message: msgInternal}
}

// parseTopK returns 0 for an empty value so the pipeline default applies.
func parseTopK(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid top_k %q", v)
	}
	return n, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTmpl.Execute(w, data); err != nil {
		loggerFrom(r.Context(), s.log).ErrorContext(r.Context(), "Failed to render page", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
