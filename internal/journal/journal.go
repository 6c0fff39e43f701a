package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Journal is an append-only JSON-lines file. One entry per line, no
// rotation or compaction; housekeeping is an operational concern.
// Concurrent appenders serialize on an exclusive advisory lock held for
// the duration of a single line write.
type Journal struct {
	path string
}

// New returns a Journal writing to path. The file and its directory are
// created lazily on first append.
func New(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the journal's file path.
func (j *Journal) Path() string {
	return j.path
}

// Append marshals v and writes it as one line.
func (j *Journal) Append(ctx context.Context, v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}

	if dir := filepath.Dir(j.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal directory: %w", err)
		}
	}

	lock := flock.New(j.path + ".lock")
	locked, err := lock.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire journal lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire journal lock: not acquired")
	}
	defer lock.Unlock()

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// Stats scans the journal and returns the entry count and the timestamp
// of the last entry. A missing file is an empty journal, not an error.
// Consumers tolerate arbitrary interleaving of lines from concurrent
// requests; only count and last entry matter here.
func (j *Journal) Stats(ctx context.Context) (int, time.Time, error) {
	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, time.Time{}, nil
		}
		return 0, time.Time{}, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var (
		count    int
		lastLine []byte
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return 0, time.Time{}, err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		count++
		lastLine = append(lastLine[:0], scanner.Bytes()...)
	}
	if err := scanner.Err(); err != nil {
		return 0, time.Time{}, fmt.Errorf("scan journal: %w", err)
	}

	var last time.Time
	if len(lastLine) > 0 {
		var entry struct {
			Timestamp time.Time `json:"timestamp"`
		}
		if err := json.Unmarshal(lastLine, &entry); err == nil {
			last = entry.Timestamp
		}
	}

	return count, last, nil
}
