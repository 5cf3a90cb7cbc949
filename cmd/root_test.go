package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const conflictedBody = "a\n<<<<<<< HEAD\nb\n=======\nc\n>>>>>>> branch\nd\n"

// resetFlags puts the package-level flag vars back to their defaults so one
// invocation cannot leak into the next.
func resetFlags() {
	dryRun = false
	excludeDirs = nil
	gitOnly = false
	stage = false
	selectFiles = false
	configPath = ""
	verbose = false
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheckThenResolve(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "server", "index.js")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(conflictedBody), 0o644))

	out, err := execute(t, "check", root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflictsFound)
	assert.Contains(t, out, "Would resolve conflicts in: "+filepath.Join("server", "index.js"))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, conflictedBody, string(b))

	out, err = execute(t, root)
	require.NoError(t, err)
	assert.Contains(t, out, "Resolving conflicts in: "+filepath.Join("server", "index.js"))
	assert.Contains(t, out, "Conflict resolution complete.")

	b, err = os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nd\n", string(b))

	_, err = execute(t, "check", root)
	assert.NoError(t, err)
}

func TestBadRoot(t *testing.T) {
	_, err := execute(t, "resolve", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root_invalid")
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(p, []byte(conflictedBody), 0o644))

	out, err := execute(t, "--dry-run", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Would resolve conflicts in: a.txt")

	out, err = execute(t, root)
	require.NoError(t, err)
	assert.Contains(t, out, "Resolving conflicts in: a.txt")

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nd\n", string(b))
}

func TestExecutableName(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Base(exe)}, executableName())
}

func TestResolveSkipsOwnBinary(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	root := t.TempDir()
	self := filepath.Join(root, filepath.Base(exe))
	other := filepath.Join(root, "other.js")
	require.NoError(t, os.WriteFile(self, []byte(conflictedBody), 0o644))
	require.NoError(t, os.WriteFile(other, []byte(conflictedBody), 0o644))

	_, err = execute(t, root)
	require.NoError(t, err)

	b, err := os.ReadFile(self)
	require.NoError(t, err)
	assert.Equal(t, conflictedBody, string(b))

	b, err = os.ReadFile(other)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nd\n", string(b))
}
