package publisher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ryosukesatoh/doc-digest/internal/summarizer"
)

// ArtifactPrefix starts the name of every summary file written to disk.
const ArtifactPrefix = "summary_"

const artifactTimeLayout = "20060102_150405"

// FilePublisher writes each summary to a timestamped text file in dir.
// The directory is created on first use.
type FilePublisher struct {
	dir string
	now func() time.Time
}

func NewFilePublisher(dir string) *FilePublisher {
	return &FilePublisher{dir: dir, now: time.Now}
}

// Dir returns the output directory.
func (p *FilePublisher) Dir() string {
	return p.dir
}

func (p *FilePublisher) Publish(_ context.Context, summary *summarizer.Summary) error {
	_, err := p.Write(summary)
	return err
}

// Write stores the summary and returns the artifact path.
//
// The file is written to a temporary name and renamed into place, so a
// reader never sees a partial artifact. Two summaries of the same base name
// in the same second share one path and the last rename wins.
func (p *FilePublisher) Write(summary *summarizer.Summary) (string, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("file: failed to create %s: %w", p.dir, err)
	}

	path := filepath.Join(p.dir, ArtifactName(summary.Source, p.now()))
	if err := writeAtomic(path, []byte(summary.Text)); err != nil {
		return "", fmt.Errorf("file: failed to write %s: %w", path, err)
	}
	return path, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ArtifactName returns summary_<base>_<YYYYMMDD_HHMMSS>.txt where base is
// the source filename without directory and extension.
func ArtifactName(source string, at time.Time) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s%s_%s.txt", ArtifactPrefix, base, at.Format(artifactTimeLayout))
}
