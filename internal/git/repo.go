package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type GitRepo struct {
	WorkDir string
}

func New(workDir string) *GitRepo {
	return &GitRepo{WorkDir: workDir}
}

func formatCommandError(operation string, err error, stdout, stderr bytes.Buffer) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w\nStdout: %s\nStderr: %s",
		operation, err, stdout.String(), stderr.String())
}

func (repo *GitRepo) run(ctx context.Context, operation string, args ...string) (bytes.Buffer, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = os.Environ()
	cmd.Dir = repo.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout, formatCommandError(operation, err, stdout, stderr)
}

// TopLevel returns the absolute path of the working tree root.
func (repo *GitRepo) TopLevel(ctx context.Context) (string, error) {
	out, err := repo.run(ctx, "find repository root", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return filepath.Clean(strings.TrimSpace(out.String())), nil
}

func (repo *GitRepo) GetCurrentBranch(ctx context.Context) (string, error) {
	out, err := repo.run(ctx, "get current branch", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

func (repo *GitRepo) AddFiles(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}

	args := append([]string{"add", "--"}, files...)
	_, err := repo.run(ctx, "add files", args...)
	return err
}
