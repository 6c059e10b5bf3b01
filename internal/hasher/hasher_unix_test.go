//go:build unix

package hasher

import (
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathDirectorySkipsSpecialFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"bin/tool": "tool"})
	before, err := Path(dir)
	require.NoError(t, err)

	fifo := filepath.Join(dir, "bin", "pipe")
	require.NoError(t, syscall.Mkfifo(fifo, 0o644))
	assert.True(t, Special(fifo))

	after, err := Path(dir)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSpecial(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"file": "x"})

	assert.False(t, Special(dir))
	assert.False(t, Special(filepath.Join(dir, "file")))
	assert.False(t, Special(filepath.Join(dir, "missing")))
}
