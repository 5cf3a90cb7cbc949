package git

import (
	"context"
	"path/filepath"
	"strings"
)

// ConflictedFiles returns absolute paths of every unmerged file in the
// repository, whatever WorkDir is inside it.
func (repo *GitRepo) ConflictedFiles(ctx context.Context) ([]string, error) {
	top, err := repo.TopLevel(ctx)
	if err != nil {
		return nil, err
	}

	// -z keeps paths raw; without it git quotes anything unusual.
	out, err := repo.run(ctx, "list conflicted files", "diff", "--name-only", "--diff-filter=U", "-z")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, rel := range strings.Split(out.String(), "\x00") {
		if rel == "" {
			continue
		}
		files = append(files, filepath.Join(top, filepath.FromSlash(rel)))
	}
	return files, nil
}
