package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	logFileExt        = ".log"
	rotatedTimeLayout = "2006-01-02_15-04-05"
)

// sizeRotatingWriter appends to <dir>/<base>.log and rotates the file when the
// next write would take it past maxSize. Rotated files are renamed to
// <base>_<timestamp>.log (<base>_<timestamp>.<n>.log on collision) and pruned
// according to the rotation strategy.
type sizeRotatingWriter struct {
	mu       sync.Mutex
	dir      string
	baseName string
	maxSize  int64
	strategy RotationStrategy
	clock    func() time.Time

	file *os.File
	size int64
}

func newSizeRotatingWriter(dir, baseName string, maxSize int64, strategy RotationStrategy, clock func() time.Time) *sizeRotatingWriter {
	if clock == nil {
		clock = time.Now
	}
	return &sizeRotatingWriter{
		dir:      dir,
		baseName: baseName,
		maxSize:  maxSize,
		strategy: strategy,
		clock:    clock,
	}
}

func (w *sizeRotatingWriter) activePath() string {
	return filepath.Join(w.dir, w.baseName+logFileExt)
}

// Write never splits p across files. A record larger than maxSize is written
// alone into a fresh file.
func (w *sizeRotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		if err := w.openLocked(); err != nil {
			return 0, err
		}
	}
	if w.maxSize > 0 && w.size > 0 && w.size+int64(len(p)) > w.maxSize {
		if err := w.rotateLocked(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *sizeRotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

func (w *sizeRotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	w.size = 0
	return err
}

// openLocked creates the directory lazily and appends to an existing active file.
func (w *sizeRotatingWriter) openLocked() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(w.activePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	w.file = f
	w.size = info.Size()
	return nil
}

func (w *sizeRotatingWriter) rotateLocked() error {
	if w.file != nil {
		_ = w.file.Sync()
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("close log file: %w", err)
		}
		w.file = nil
	}
	target, err := w.nextRotatedPath()
	if err != nil {
		return err
	}
	if err := os.Rename(w.activePath(), target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate log file: %w", err)
	}
	if err := w.openLocked(); err != nil {
		return err
	}
	w.pruneLocked()
	return nil
}

func (w *sizeRotatingWriter) nextRotatedPath() (string, error) {
	stamp := w.clock().Format(rotatedTimeLayout)
	candidate := filepath.Join(w.dir, fmt.Sprintf("%s_%s%s", w.baseName, stamp, logFileExt))
	for n := 1; ; n++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("stat rotated file: %w", err)
		}
		candidate = filepath.Join(w.dir, fmt.Sprintf("%s_%s.%d%s", w.baseName, stamp, n, logFileExt))
	}
}

type rotatedFile struct {
	name  string
	stamp string
	seq   int
}

// rotatedFiles lists rotated files of this writer, oldest first.
func (w *sizeRotatingWriter) rotatedFiles() ([]rotatedFile, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, err
	}
	prefix := w.baseName + "_"
	var out []rotatedFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, logFileExt) {
			continue
		}
		rest := strings.TrimSuffix(strings.TrimPrefix(name, prefix), logFileExt)
		if len(rest) < len(rotatedTimeLayout) {
			continue
		}
		stamp, suffix := rest[:len(rotatedTimeLayout)], rest[len(rotatedTimeLayout):]
		if _, err := time.Parse(rotatedTimeLayout, stamp); err != nil {
			continue
		}
		seq := 0
		if suffix != "" {
			if !strings.HasPrefix(suffix, ".") {
				continue
			}
			n, err := strconv.Atoi(suffix[1:])
			if err != nil {
				continue
			}
			seq = n
		}
		out = append(out, rotatedFile{name: name, stamp: stamp, seq: seq})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].stamp != out[j].stamp {
			return out[i].stamp < out[j].stamp
		}
		return out[i].seq < out[j].seq
	})
	return out, nil
}

func (w *sizeRotatingWriter) pruneLocked() {
	keep := w.strategy.retained()
	if keep < 0 {
		return
	}
	files, err := w.rotatedFiles()
	if err != nil || len(files) <= keep {
		return
	}
	for _, f := range files[:len(files)-keep] {
		_ = os.Remove(filepath.Join(w.dir, f.name))
	}
}
