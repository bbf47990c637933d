package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ryosukesatoh/doc-digest/internal/extract"
	"github.com/ryosukesatoh/doc-digest/internal/publisher"
	"github.com/ryosukesatoh/doc-digest/internal/summarizer"
)

// ErrNoInput is returned when no file was supplied or it has no name or bytes.
var ErrNoInput = errors.New("runner: no input file")

// PersistenceError reports publishers that failed after a summary was built.
// The summary itself is still valid.
type PersistenceError struct {
	Errs []error
}

func (e *PersistenceError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return "runner: publish failed: " + strings.Join(msgs, "; ")
}

func (e *PersistenceError) Unwrap() []error {
	return e.Errs
}

// Result is the outcome of one pipeline run.
type Result struct {
	Summary      *summarizer.Summary
	ArtifactPath string
}

// Recorder receives pipeline measurements. A nil Recorder is allowed.
type Recorder interface {
	ObserveExtraction(kind extract.Kind, d time.Duration)
	CountSummary(outcome string)
}

// Runner orchestrates the extract -> summarize -> publish pipeline.
type Runner struct {
	selector   *summarizer.Selector
	artifacts  *publisher.FilePublisher
	publishers []publisher.Publisher
	recorder   Recorder
	log        *slog.Logger
	now        func() time.Time
}

// New builds a Runner. artifacts may be nil to skip writing summary files.
func New(sel *summarizer.Selector, artifacts *publisher.FilePublisher, pubs []publisher.Publisher, rec Recorder, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		selector:   sel,
		artifacts:  artifacts,
		publishers: pubs,
		recorder:   rec,
		log:        log,
		now:        time.Now,
	}
}

// Run summarizes one uploaded document. topK <= 0 uses the selector default.
//
// When the summary was built but a publisher failed, Run returns both the
// result and a *PersistenceError. Any other error means no summary exists
// and nothing was written.
func (r *Runner) Run(ctx context.Context, filename string, data []byte, topK int) (*Result, error) {
	if strings.TrimSpace(filename) == "" || len(data) == 0 {
		r.count("no_input")
		return nil, ErrNoInput
	}

	payload := extract.NewPayload(filename, data)
	log := r.log.With("filename", filename, "kind", payload.Kind.String(), "bytes", len(data))

	start := time.Now()
	text, err := extract.Extract(payload)
	if r.recorder != nil {
		r.recorder.ObserveExtraction(payload.Kind, time.Since(start))
	}
	if err == nil {
		err = extract.CheckContent(text)
	}
	if err != nil {
		log.WarnContext(ctx, "Extraction failed", "error", err)
		r.count("extraction_error")
		return nil, err
	}

	if topK <= 0 {
		topK = r.selector.TopK()
	}
	summary := summarizer.NewSummary(filename, r.selector.Select(text, topK), r.now())
	log.InfoContext(ctx, "Summary generated",
		"sentences", len(summary.Sentences),
		"summaryChars", len(summary.Text))

	res := &Result{Summary: summary}

	var publishErrors []error
	if r.artifacts != nil {
		path, err := r.artifacts.Write(summary)
		if err != nil {
			publishErrors = append(publishErrors, err)
			log.WarnContext(ctx, "Failed to save summary", "error", err)
		} else {
			res.ArtifactPath = path
			log.InfoContext(ctx, "Summary saved", "path", path)
		}
	}

	// Continue with other publishers even if one fails.
	for _, pub := range r.publishers {
		if err := pub.Publish(ctx, summary); err != nil {
			publishErrors = append(publishErrors, fmt.Errorf("publish via %T failed: %w", pub, err))
			log.WarnContext(ctx, "Publisher failed", "publisher", fmt.Sprintf("%T", pub), "error", err)
		}
	}

	if len(publishErrors) > 0 {
		r.count("persistence_error")
		return res, &PersistenceError{Errs: publishErrors}
	}
	r.count("ok")
	return res, nil
}

func (r *Runner) count(outcome string) {
	if r.recorder != nil {
		r.recorder.CountSummary(outcome)
	}
}
