package walk

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Candidate is a file the resolver should look at. Err is set when the
// entry could not even be listed; the driver reports those as skipped.
type Candidate struct {
	AbsPath string
	RelPath string
	Err     error
}

// Rules decide what is left out of a scan.
type Rules struct {
	// ExcludeDirs are directory names; a match on any path segment prunes it.
	ExcludeDirs []string
	// SelfNames are file base names that are always skipped.
	SelfNames []string
}

func (r Rules) excludedDir(name string) bool {
	for _, x := range r.ExcludeDirs {
		if name == x {
			return true
		}
	}
	return false
}

func (r Rules) selfFile(name string) bool {
	for _, x := range r.SelfNames {
		if name == x {
			return true
		}
	}
	return false
}

// Allows reports whether rel (relative to the root) survives the rules:
// no directory segment is excluded and the base name is not a self name.
func (r Rules) Allows(rel string) bool {
	rel = filepath.Clean(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return false
	}
	segs := strings.Split(rel, string(filepath.Separator))
	for _, s := range segs[:len(segs)-1] {
		if r.excludedDir(s) {
			return false
		}
	}
	return !r.selfFile(segs[len(segs)-1])
}

// Candidates lists regular files under root that the rules allow, sorted
// by relative path. Excluded directories are not descended into and
// symlinks are never followed or returned.
//
// Only a failure on root itself is returned as an error; unreadable
// entries further down come back as candidates with Err set.
func Candidates(root string, rules Rules) ([]Candidate, error) {
	root = filepath.Clean(root)

	out := make([]Candidate, 0, 128)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			rel, _ := filepath.Rel(root, path)
			out = append(out, Candidate{AbsPath: path, RelPath: rel, Err: walkErr})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && rules.excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if rules.selfFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, Candidate{AbsPath: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortCandidates(out)
	return out, nil
}

// FromPaths turns absolute paths (e.g. from git) into candidates under
// root, dropping anything outside root or disallowed by the rules.
func FromPaths(root string, paths []string, rules Rules) []Candidate {
	root = filepath.Clean(root)

	out := make([]Candidate, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		rel, err := filepath.Rel(root, p)
		if err != nil || !rules.Allows(rel) || seen[rel] {
			continue
		}
		seen[rel] = true
		out = append(out, Candidate{AbsPath: p, RelPath: rel})
	}

	sortCandidates(out)
	return out
}

func sortCandidates(c []Candidate) {
	sort.Slice(c, func(i, j int) bool { return c[i].RelPath < c[j].RelPath })
}
