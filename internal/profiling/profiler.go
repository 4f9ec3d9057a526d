// Package profiling writes CPU and heap profiles around a CLI run, for
// measuring analysis chains over large inputs.
package profiling

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/Aman-CERP/tokengaps/internal/errors"
)

// Options selects which profiles to write. Empty paths are skipped.
type Options struct {
	CPUPath  string
	HeapPath string
}

// Enabled reports whether any profile is requested.
func (o Options) Enabled() bool {
	return o.CPUPath != "" || o.HeapPath != ""
}

// Session is an active profiling run.
type Session struct {
	opts    Options
	cpuFile *os.File
}

// Start begins CPU profiling when requested. The heap profile is written by
// Stop, after the work it measures.
func Start(opts Options) (*Session, error) {
	s := &Session{opts: opts}
	if opts.CPUPath == "" {
		return s, nil
	}

	f, err := os.Create(opts.CPUPath)
	if err != nil {
		return nil, errors.New(errors.ErrCodeFilePermission, "failed to create CPU profile", err).
			WithDetail("path", opts.CPUPath)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, errors.InternalError("failed to start CPU profile", err)
	}
	s.cpuFile = f
	return s, nil
}

// Stop ends CPU profiling and writes the heap profile. Calling Stop twice
// is safe.
func (s *Session) Stop() error {
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		err := s.cpuFile.Close()
		s.cpuFile = nil
		if err != nil {
			return errors.IOError("failed to close CPU profile", err)
		}
	}

	if s.opts.HeapPath == "" {
		return nil
	}
	path := s.opts.HeapPath
	s.opts.HeapPath = ""
	return WriteHeap(path)
}

// WriteHeap writes a heap profile to path after a GC.
func WriteHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New(errors.ErrCodeFilePermission, "failed to create heap profile", err).
			WithDetail("path", path)
	}
	defer func() { _ = f.Close() }()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return errors.InternalError("failed to write heap profile", err)
	}
	return nil
}
