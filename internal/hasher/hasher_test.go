package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestBytes(t *testing.T) {
	t.Parallel()

	sum := sha256.Sum256([]byte("hello"))
	d := Bytes([]byte("hello"))

	assert.Equal(t, hex.EncodeToString(sum[:]), Hex(d))
	assert.Equal(t, d, Bytes([]byte("hello")))
}

func TestPathFileMatchesBytes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tool")
	content := make([]byte, 3*chunkSize+17)
	for i := range content {
		content[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, content, 0o644))

	d, err := Path(path)
	require.NoError(t, err)
	assert.Equal(t, Bytes(content), d)
}

func TestPathDirectoryDeterministic(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"bin/tool":         "#!/bin/sh\necho tool",
		"share/doc/README": "docs",
		"LICENSE":          "MIT",
	}
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, files)
	writeTree(t, b, files)

	// metadata differences must not matter
	require.NoError(t, os.Chmod(filepath.Join(b, "bin", "tool"), 0o755))
	old := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(b, "LICENSE"), old, old))

	da, err := Path(a)
	require.NoError(t, err)
	db, err := Path(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)

	again, err := Path(a)
	require.NoError(t, err)
	assert.Equal(t, da, again)
}

func TestPathDirectoryFoldsNamesAndDigests(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"b":     "two",
		"a":     "one",
		"sub/c": "three",
	})

	sub := sha256.New()
	c := sha256.Sum256([]byte("three"))
	sub.Write([]byte("c"))
	sub.Write(c[:])

	want := sha256.New()
	a := sha256.Sum256([]byte("one"))
	b := sha256.Sum256([]byte("two"))
	want.Write([]byte("a"))
	want.Write(a[:])
	want.Write([]byte("b"))
	want.Write(b[:])
	want.Write([]byte("sub"))
	want.Write(sub.Sum(nil))

	d, err := Path(dir)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want.Sum(nil)), Hex(d))
}

func TestPathDirectoryDetectsChanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		other map[string]string
	}{
		{name: "content", other: map[string]string{"a": "changed"}},
		{name: "rename", other: map[string]string{"z": "one"}},
		{name: "extra entry", other: map[string]string{"a": "one", "b": ""}},
		{name: "nesting", other: map[string]string{"d/a": "one"}},
	}

	base := t.TempDir()
	writeTree(t, base, map[string]string{"a": "one"})
	baseDigest, err := Path(base)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeTree(t, dir, tt.other)
			d, err := Path(dir)
			require.NoError(t, err)
			assert.NotEqual(t, baseDigest, d)
		})
	}
}

func TestPathDanglingSymlinkHashesEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	link := filepath.Join(dir, "broken")
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), link))

	d, err := Path(link)
	require.NoError(t, err)
	assert.Equal(t, Bytes(nil), d)
}

func TestPathMissing(t *testing.T) {
	t.Parallel()

	_, err := Path(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Valid(Hex(Bytes([]byte("x")))))
	assert.False(t, Valid("wrong"))
	assert.False(t, Valid("../../etc"))
	assert.False(t, Valid(""))
}
