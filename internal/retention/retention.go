package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ryosukesatoh/doc-digest/internal/publisher"
)

// Sweeper removes summary artifacts older than maxAge from dir.
type Sweeper struct {
	dir     string
	maxAge  time.Duration
	log     *slog.Logger
	onSweep func(removed int)
}

func NewSweeper(dir string, maxAge time.Duration, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{dir: dir, maxAge: maxAge, log: log}
}

// OnSweep registers a callback invoked with the number of removed files.
func (s *Sweeper) OnSweep(fn func(removed int)) {
	s.onSweep = fn
}

// Sweep deletes summary_*.txt files whose modification time is before
// now-maxAge. Other files are left alone. A missing directory is not an error.
func (s *Sweeper) Sweep(now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("retention: failed to read %s: %w", s.dir, err)
	}

	cutoff := now.Add(-s.maxAge)
	removed := 0
	var errs []error
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, publisher.ArtifactPrefix) || filepath.Ext(name) != ".txt" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	if s.onSweep != nil {
		s.onSweep(removed)
	}
	if len(errs) > 0 {
		return removed, fmt.Errorf("retention: %w", errors.Join(errs...))
	}
	return removed, nil
}

// Scheduler runs Sweep on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	spec    string
}

func NewScheduler(sweeper *Sweeper, spec string) *Scheduler {
	return &Scheduler{cron: cron.New(), sweeper: sweeper, spec: spec}
}

// Start registers the sweep job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		removed, err := s.sweeper.Sweep(time.Now())
		if err != nil {
			s.sweeper.log.ErrorContext(ctx, "Retention sweep failed",
				"error", err,
				"dir", s.sweeper.dir)
			return
		}
		s.sweeper.log.InfoContext(ctx, "Retention sweep finished",
			"removed", removed,
			"dir", s.sweeper.dir)
	})
	if err != nil {
		return fmt.Errorf("retention: invalid schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
