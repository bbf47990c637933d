package summarizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// PunktModel detects sentence boundaries with the pretrained English Punkt
// model. Loading the training data is expensive, so build one instance at
// startup and share it.
type PunktModel struct {
	mu        sync.Mutex
	tokenizer *sentences.DefaultSentenceTokenizer
}

func NewPunktModel() (*PunktModel, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("summarizer: failed to load punkt model: %w", err)
	}
	return &PunktModel{tokenizer: tokenizer}, nil
}

// Sentences is safe for concurrent use; calls are serialized.
func (m *PunktModel) Sentences(text string) []Sentence {
	m.mu.Lock()
	spans := m.tokenizer.Tokenize(text)
	m.mu.Unlock()

	out := make([]Sentence, 0, len(spans))
	for _, s := range spans {
		surface := strings.TrimSpace(s.Text)
		if surface == "" {
			continue
		}
		out = append(out, Sentence{Text: surface, Start: s.Start, End: s.End})
	}
	return out
}
