package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingWriter_RotatesAndKeepsNewestFirst(t *testing.T) {
	// Given: a writer that rotates before every write
	path := filepath.Join(t.TempDir(), "rotate.log")
	w, err := NewRotatingWriter(path, 0, 3)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	// When: writing three entries
	for _, line := range []string{"one\n", "two\n", "three\n"} {
		_, err := w.Write([]byte(line))
		require.NoError(t, err)
	}

	// Then: the current file holds the last entry and backups go newest first
	read := func(p string) string {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "three\n", read(path))
	assert.Equal(t, "two\n", read(path+".1"))
	assert.Equal(t, "one\n", read(path+".2"))
}

func TestRotatingWriter_MaxFilesLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maxfiles.log")
	w, err := NewRotatingWriter(path, 0, 2)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	for i := 0; i < 6; i++ {
		_, err := fmt.Fprintf(w, "entry %d\n", i)
		require.NoError(t, err)
	}

	assert.FileExists(t, path+".1")
	assert.FileExists(t, path+".2")
	assert.NoFileExists(t, path+".3")
}

func TestRotatingWriter_AppendsBelowLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "append.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o644))

	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	_, err = w.Write([]byte("more\n"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing\nmore\n", string(data))
	assert.NoFileExists(t, path+".1")
}

func TestRotatingWriter_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.log")
	w, err := NewRotatingWriter(path, 10, 3)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = fmt.Fprintf(w, "{\"id\":%d,\"iter\":%d}\n", id, j)
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, w.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 400, strings.Count(string(data), "\n"))
}
