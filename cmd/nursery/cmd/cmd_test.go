//go:build unix

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aweris/nursery"
)

// execute runs the root command with fresh flag values. Commands share
// global state so these tests never run in parallel.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func toolDir(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", name), []byte("#!/bin/sh\necho "+name+"\n"), 0o755))
	return dir
}

func addDir(t *testing.T, root, name string) string {
	t.Helper()
	dir := toolDir(t, name)
	hash, err := nursery.HashPath(dir)
	require.NoError(t, err)

	_, _, err = execute(t, "--root", root, "add", dir)
	require.NoError(t, err)
	return hash
}

func TestAddDirectory(t *testing.T) {
	root := t.TempDir()
	dir := toolDir(t, "tool")
	hash, err := nursery.HashPath(dir)
	require.NoError(t, err)

	out, _, err := execute(t, "--root", root, "add", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "hash:     "+hash)
	assert.Contains(t, out, "path:     "+filepath.Join(root, "store", hash))
	assert.Contains(t, out, "binaries: tool")
	assert.DirExists(t, filepath.Join(root, "store", hash))
}

func TestAddFileChecksHash(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(t.TempDir(), "tool")
	data := []byte("#!/bin/sh\necho hi\n")
	require.NoError(t, os.WriteFile(file, data, 0o644))

	_, _, err := execute(t, "--root", root, "add", "--sha256", strings.Repeat("0", 64), file)
	require.ErrorIs(t, err, nursery.ErrHashMismatch)

	out, _, err := execute(t, "--root", root, "add", "--sha256", nursery.HashBytes(data), file)
	require.NoError(t, err)
	assert.Contains(t, out, "binaries: bin")
}

func TestAddRejectsHashWithCopy(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tool")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, _, err := execute(t, "--root", t.TempDir(), "add", "--copy", "--sha256", nursery.HashBytes([]byte("x")), file)
	require.Error(t, err)
}

func TestGetUnknownHash(t *testing.T) {
	_, _, err := execute(t, "--root", t.TempDir(), "get", strings.Repeat("a", 64))
	require.ErrorIs(t, err, nursery.ErrNotFound)
}

func TestList(t *testing.T) {
	root := t.TempDir()

	out, _, err := execute(t, "--root", root, "list")
	require.NoError(t, err)
	assert.Equal(t, "(no packages)\n", out)

	hash := addDir(t, root, "tool")

	out, _, err = execute(t, "--root", root, "list")
	require.NoError(t, err)
	assert.Equal(t, hash+"\ttool\n", out)
}

func TestActivateAndDeactivate(t *testing.T) {
	root := t.TempDir()
	hash := addDir(t, root, "tool")
	link := filepath.Join(root, "bin", "tool")

	out, _, err := execute(t, "--root", root, "activate", hash)
	require.NoError(t, err)
	assert.Equal(t, "linked "+link+"\n", out)

	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "store", hash, "bin", "tool"), target)

	_, _, err = execute(t, "--root", root, "deactivate", hash)
	require.NoError(t, err)
	_, err = os.Lstat(link)
	assert.True(t, os.IsNotExist(err))
}

func TestAddWithActivate(t *testing.T) {
	root := t.TempDir()
	dir := toolDir(t, "tool")

	out, _, err := execute(t, "--root", root, "add", "--activate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "linked "+filepath.Join(root, "bin", "tool"))
}

func TestGCRefusesEmptyKeepSet(t *testing.T) {
	root := t.TempDir()
	hash := addDir(t, root, "tool")

	_, _, err := execute(t, "--root", root, "gc")
	require.Error(t, err)
	assert.DirExists(t, filepath.Join(root, "store", hash))

	out, _, err := execute(t, "--root", root, "gc", "--all")
	require.NoError(t, err)
	assert.Equal(t, "removed "+hash+"\n", out)
	assert.NoDirExists(t, filepath.Join(root, "store", hash))
}

func TestGCKeepsLockfileHashes(t *testing.T) {
	root := t.TempDir()
	kept := addDir(t, root, "kept")
	dropped := addDir(t, root, "dropped")

	lock := filepath.Join(t.TempDir(), "myenv.lock")
	content := fmt.Sprintf(`
[kept]
source = "github:example/kept"
constraint = "*"

[kept.github]
package = "example/kept"
version = "1.0.0"
hash = %q
`, kept)
	require.NoError(t, os.WriteFile(lock, []byte(content), 0o644))

	out, _, err := execute(t, "--root", root, "gc", "--dry-run", "--lockfile", lock)
	require.NoError(t, err)
	assert.Equal(t, "would remove "+dropped+"\n", out)
	assert.DirExists(t, filepath.Join(root, "store", dropped))

	out, _, err = execute(t, "--root", root, "gc", "--lockfile", lock)
	require.NoError(t, err)
	assert.Equal(t, "removed "+dropped+"\n", out)
	assert.DirExists(t, filepath.Join(root, "store", kept))
	assert.NoDirExists(t, filepath.Join(root, "store", dropped))
}

func TestGCKeepsArguments(t *testing.T) {
	root := t.TempDir()
	kept := addDir(t, root, "kept")
	dropped := addDir(t, root, "dropped")

	out, _, err := execute(t, "--root", root, "gc", kept)
	require.NoError(t, err)
	assert.Equal(t, "removed "+dropped+"\n", out)
}

func TestHash(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	out, _, err := execute(t, "hash", file)
	require.NoError(t, err)
	assert.Equal(t, nursery.HashBytes([]byte("hello"))+"\n", out)
}
