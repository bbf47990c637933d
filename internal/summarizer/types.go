package summarizer

import (
	"strings"
	"time"
)

// Sentence is one span produced by a sentence-boundary detector.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// LanguageModel splits text into sentences in document order.
type LanguageModel interface {
	Sentences(text string) []Sentence
}

// Summary is the result of summarizing one document.
type Summary struct {
	Source    string    `json:"source"`
	Date      time.Time `json:"date"`
	Text      string    `json:"summary"`
	Sentences []string  `json:"sentences"`
}

// NewSummary joins the selected sentences with single spaces and strips
// any markup from the result. Order of sentences is kept as given.
func NewSummary(source string, sentences []string, date time.Time) *Summary {
	return &Summary{
		Source:    source,
		Date:      date,
		Text:      StripMarkup(strings.Join(sentences, " ")),
		Sentences: sentences,
	}
}
