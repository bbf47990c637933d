package publisher

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ryosukesatoh/doc-digest/internal/summarizer"
)

// StdoutPublisher prints the summary to stdout.
type StdoutPublisher struct {
	w io.Writer
}

func NewStdoutPublisher() *StdoutPublisher {
	return &StdoutPublisher{w: os.Stdout}
}

func (p *StdoutPublisher) Publish(_ context.Context, summary *summarizer.Summary) error {
	w := p.w
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "Summary: %s\n", summary.Source)
	fmt.Fprintf(w, "Date: %s\n", summary.Date.Format("2006-01-02 15:04"))
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, summary.Text)
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	return nil
}
