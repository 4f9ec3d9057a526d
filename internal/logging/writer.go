package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Aman-CERP/tokengaps/internal/errors"
)

// RotatingWriter is an io.Writer over a log file that rolls over by size.
// Backups are named path.1 (newest) to path.N (oldest).
type RotatingWriter struct {
	path     string
	maxBytes int64
	maxFiles int

	mu   sync.Mutex
	file *os.File
	size int64
}

// NewRotatingWriter opens path for appending, creating its directory.
// A maxSizeMB of 0 rotates before every write.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.IOError("failed to create log directory", err).
			WithDetail("path", filepath.Dir(path))
	}

	w := &RotatingWriter{
		path:     path,
		maxBytes: int64(maxSizeMB) << 20,
		maxFiles: maxFiles,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends p, rotating first when p would push the file past its limit.
// A failed rotation keeps writing to the current file.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}
	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

// Close closes the file. Further writes reopen it.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.IOError("failed to open log file", err).WithDetail("path", w.path)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return errors.IOError("failed to stat log file", err).WithDetail("path", w.path)
	}
	w.file = f
	w.size = info.Size()
	return nil
}

// backup returns the name of the n-th backup.
func (w *RotatingWriter) backup(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}

// rotate shifts path.N-1 to path.N and so on down to path to path.1, then
// reopens an empty file. The oldest backup is dropped.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return err
		}
		w.file = nil
	}

	if w.maxFiles > 0 {
		_ = os.Remove(w.backup(w.maxFiles))
		for n := w.maxFiles - 1; n >= 1; n-- {
			if _, err := os.Stat(w.backup(n)); err == nil {
				_ = os.Rename(w.backup(n), w.backup(n+1))
			}
		}
		if err := os.Rename(w.path, w.backup(1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	} else if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	return w.open()
}
