// Package archive keeps a daily, append-only JSON lines copy of route edit
// events on disk. Finished days are gzip-compressed at rotation.
package archive

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/saviobatista/route-planner/internal/log"
	"github.com/saviobatista/route-planner/internal/types"
)

const dayLayout = "2006-01-02"

// Archive writes edit events to edits_<date>.jsonl in dir
type Archive struct {
	dir  string
	lg   *log.Logger
	now  func() time.Time
	day  string
	file *os.File

	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates an archive rooted at dir. lg may be nil.
func New(dir string, lg *log.Logger) *Archive {
	return &Archive{
		dir:      dir,
		lg:       lg,
		now:      func() time.Time { return time.Now().UTC() },
		stopChan: make(chan struct{}),
	}
}

// FileName returns the uncompressed archive file for day
func FileName(day time.Time) string {
	return fmt.Sprintf("edits_%s.jsonl", day.UTC().Format(dayLayout))
}

// Start opens today's file and starts the midnight rotation timer
func (a *Archive) Start() error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}
	a.mu.Lock()
	err := a.open()
	a.mu.Unlock()
	if err != nil {
		return err
	}

	a.wg.Add(1)
	go a.rotationTimer()
	return nil
}

// Stop closes the current file and stops the rotation timer
func (a *Archive) Stop() error {
	close(a.stopChan)
	a.wg.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file != nil {
		err := a.file.Close()
		a.file = nil
		return err
	}
	return nil
}

// Append writes ev as one line of today's file. If the day changed since the
// last write the previous file is rotated first.
func (a *Archive) Append(ev *types.EditEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal edit event: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil || a.now().Format(dayLayout) != a.day {
		if err := a.rotate(); err != nil {
			return err
		}
	}
	if _, err := a.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write edit event: %w", err)
	}
	return nil
}

func (a *Archive) rotationTimer() {
	defer a.wg.Done()

	for {
		now := a.now()
		next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)

		select {
		case <-time.After(next.Sub(now)):
			a.mu.Lock()
			if err := a.rotate(); err != nil {
				a.lg.Warn("archive rotation failed", "error", err)
			}
			a.mu.Unlock()
		case <-a.stopChan:
			return
		}
	}
}

// rotate closes the open file, compresses it if its day is over, and opens
// the file for the current day. Callers hold mu.
func (a *Archive) rotate() error {
	prev := a.day
	if a.file != nil {
		if err := a.file.Close(); err != nil {
			a.lg.Warn("failed to close archive file", "day", prev, "error", err)
		}
		a.file = nil
	}
	if prev != "" && prev != a.now().Format(dayLayout) {
		path := filepath.Join(a.dir, fmt.Sprintf("edits_%s.jsonl", prev))
		if _, err := os.Stat(path); err == nil {
			if err := compressFile(path); err != nil {
				return fmt.Errorf("failed to compress %s: %w", path, err)
			}
		}
	}
	return a.open()
}

// open opens the current day's file for appending. Callers hold mu.
func (a *Archive) open() error {
	day := a.now()
	f, err := os.OpenFile(filepath.Join(a.dir, FileName(day)), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	a.file = f
	a.day = day.Format(dayLayout)
	return nil
}

// compressFile gzips path to path.gz and removes the original
func compressFile(path string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	target, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer target.Close()

	zw := gzip.NewWriter(target)
	if _, err := io.Copy(zw, source); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}
