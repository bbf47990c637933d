package summarizer

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultTopK is the number of sentences kept when none is configured.
const DefaultTopK = 3

var ErrInvalidEncoding = errors.New("summarizer: file is not valid UTF-8")

// Selector builds a summary out of the longest sentences of a text.
type Selector struct {
	model LanguageModel
	topK  int
}

func NewSelector(model LanguageModel, topK int) *Selector {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Selector{model: model, topK: topK}
}

// TopK returns the configured number of sentences.
func (s *Selector) TopK() int {
	return s.topK
}

// Select returns up to topK sentences ordered by descending length.
// Sentences of equal length keep their document order.
func (s *Selector) Select(text string, topK int) []string {
	if topK <= 0 {
		topK = s.topK
	}

	sents := s.model.Sentences(text)
	sort.SliceStable(sents, func(i, j int) bool {
		return utf8.RuneCountInString(sents[i].Text) > utf8.RuneCountInString(sents[j].Text)
	})

	if len(sents) > topK {
		sents = sents[:topK]
	}

	out := make([]string, len(sents))
	for i, sent := range sents {
		out[i] = sent.Text
	}
	return out
}

// Summarize uses the configured topK.
func (s *Selector) Summarize(text string) string {
	return s.SummarizeK(text, s.topK)
}

// SummarizeK joins the selected sentences in length order (document order
// is not restored) and strips markup from the result.
func (s *Selector) SummarizeK(text string, topK int) string {
	return StripMarkup(strings.Join(s.Select(text, topK), " "))
}

// SummarizeFile reads a UTF-8 text file and summarizes it.
func (s *Selector) SummarizeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("summarizer: failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrInvalidEncoding, path)
	}
	return s.Summarize(string(data)), nil
}
