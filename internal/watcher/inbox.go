package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gamerec/gamerec/internal/service"
)

const (
	processedDir = "processed"
	failedDir    = "failed"
)

// Importer ingests one payload file.
type Importer interface {
	ImportFile(ctx context.Context, path string) (*service.IngestReport, error)
}

// Inbox ingests *.json and *.jsonl files dropped into a directory. Each file
// is moved to processed/ after import, or to failed/ when it cannot be read
// or parsed.
type Inbox struct {
	dir      string
	importer Importer
	watcher  *Watcher
	logger   *slog.Logger

	// mu serializes imports so one file is fully ingested before the next.
	mu sync.Mutex
}

// NewInbox creates an inbox over dir, creating it and its subdirectories.
func NewInbox(dir string, importer Importer, settle time.Duration, logger *slog.Logger) (*Inbox, error) {
	for _, d := range []string{dir, filepath.Join(dir, processedDir), filepath.Join(dir, failedDir)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create inbox dir: %w", err)
		}
	}

	w, err := New(logger, Options{
		Extensions:  []string{".json", ".jsonl"},
		SettleDelay: settle,
	})
	if err != nil {
		return nil, err
	}
	if err := w.Watch(dir); err != nil {
		w.Stop() //nolint:errcheck // already failing
		return nil, err
	}

	return &Inbox{
		dir:      dir,
		importer: importer,
		watcher:  w,
		logger:   logger.With("component", "inbox", "dir", dir),
	}, nil
}

// Run imports files already in the inbox, then every file that settles in
// it, until ctx is canceled.
func (in *Inbox) Run(ctx context.Context) error {
	defer in.watcher.Stop() //nolint:errcheck // shutdown

	go in.watcher.Start(ctx) //nolint:errcheck // returns on ctx cancel

	if err := in.ProcessExisting(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-in.watcher.Events():
			if event.Type == EventRemoved {
				continue
			}
			in.Process(ctx, event.Path)
		case err := <-in.watcher.Errors():
			in.logger.Warn("file watcher error", "error", err)
		}
	}
}

// ProcessExisting imports every payload file currently in the inbox, in
// name order.
func (in *Inbox) ProcessExisting(ctx context.Context) error {
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || in.watcher.opts.shouldIgnore(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)

	for _, name := range names {
		if ctx.Err() != nil {
			return nil
		}
		in.Process(ctx, filepath.Join(in.dir, name))
	}
	return nil
}

// Process imports one file and moves it out of the inbox. It returns the
// directory the file ended up in.
func (in *Inbox) Process(ctx context.Context, path string) string {
	in.mu.Lock()
	defer in.mu.Unlock()

	// A file can settle twice before it is moved away.
	if _, err := os.Stat(path); err != nil {
		return ""
	}

	report, err := in.importer.ImportFile(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return ""
		}
		in.logger.Error("import failed", "file", filepath.Base(path), "error", err)
		return in.move(path, failedDir)
	}

	in.logger.Info("imported file",
		"file", filepath.Base(path),
		"run_id", report.RunID,
		"new", report.Counts.New,
		"changed", report.Counts.Changed,
		"unchanged", report.Counts.Unchanged,
		"failed", report.Counts.Failed,
	)
	for _, item := range report.Items {
		if item.Failed() {
			in.logger.Warn("item not ingested",
				"file", filepath.Base(path),
				"index", item.Index,
				"external_id", item.ExternalID,
				"error", item.Error,
			)
		}
	}
	return in.move(path, processedDir)
}

// move renames path into sub, adding a timestamp when the name is taken.
func (in *Inbox) move(path, sub string) string {
	base := filepath.Base(path)
	dst := filepath.Join(in.dir, sub, base)
	if _, err := os.Stat(dst); err == nil {
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		dst = filepath.Join(in.dir, sub, fmt.Sprintf("%s.%d%s", stem, time.Now().UnixNano(), ext))
	}
	if err := os.Rename(path, dst); err != nil {
		in.logger.Error("failed to move file", "file", base, "to", sub, "error", err)
		return ""
	}
	return filepath.Join(in.dir, sub)
}
