package walk

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRules = Rules{
	ExcludeDirs: []string{".git", "node_modules"},
	SelfNames:   []string{"resolve_conflicts.py"},
}

func touch(t *testing.T, root, rel string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("x\n"), 0o644))
}

func relPaths(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, filepath.ToSlash(c.RelPath))
	}
	return out
}

func TestCandidates(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"index.js",
		"controllers/b.js",
		"controllers/a.js",
		".git/HEAD",
		".git/refs/heads/main",
		"node_modules/lib/index.js",
		"deep/node_modules/x.js",
		"resolve_conflicts.py",
		"scripts/resolve_conflicts.py",
		"my_node_modules_notes.txt",
		".github/workflows/ci.yml",
	} {
		touch(t, root, rel)
	}

	got, err := Candidates(root, testRules)
	require.NoError(t, err)
	assert.Equal(t, []string{
		".github/workflows/ci.yml",
		"controllers/a.js",
		"controllers/b.js",
		"index.js",
		"my_node_modules_notes.txt",
	}, relPaths(got))

	for _, c := range got {
		assert.NoError(t, c.Err)
		assert.True(t, filepath.IsAbs(c.AbsPath))
	}
}

func TestCandidatesSkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	touch(t, root, "real.txt")
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))

	got, err := Candidates(root, testRules)
	require.NoError(t, err)
	assert.Equal(t, []string{"real.txt"}, relPaths(got))
}

func TestCandidatesMissingRoot(t *testing.T) {
	_, err := Candidates(filepath.Join(t.TempDir(), "nope"), testRules)
	assert.Error(t, err)
}

func TestRulesAllows(t *testing.T) {
	tests := []struct {
		rel  string
		want bool
	}{
		{"a.txt", true},
		{"src/a.txt", true},
		{".git/config", false},
		{"pkg/node_modules/a.js", false},
		{"resolve_conflicts.py", false},
		{"tools/resolve_conflicts.py", false},
		{"node_modules", true},
		{"../outside.txt", false},
		{".", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, testRules.Allows(filepath.FromSlash(tt.rel)))
		})
	}
}

func TestFromPaths(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "repo", "server")
	paths := []string{
		filepath.Join(root, "b.js"),
		filepath.Join(root, "a.js"),
		filepath.Join(root, "a.js"),
		filepath.Join(root, "node_modules", "x.js"),
		filepath.Join(root, "..", "client", "c.js"),
	}

	got := FromPaths(root, paths, testRules)
	assert.Equal(t, []string{"a.js", "b.js"}, relPaths(got))
}
