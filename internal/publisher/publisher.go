package publisher

import (
	"context"

	"github.com/ryosukesatoh/doc-digest/internal/summarizer"
)

// Publisher delivers a finished summary to some output destination.
type Publisher interface {
	Publish(ctx context.Context, summary *summarizer.Summary) error
}
