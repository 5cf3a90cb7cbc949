package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// ErrCodeNotFound means --config named a file that does not exist.
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid means the config file could not be read or parsed, or a field is bad.
	ErrCodeInvalid = "config_invalid"
	// ErrCodeRootInvalid means the root to scan is missing or not a directory.
	ErrCodeRootInvalid = "root_invalid"
)

// FileName is the optional per-tree config file looked up in the root.
const FileName = ".keepours.json"

var (
	// DefaultExcludeDirs are never descended into.
	DefaultExcludeDirs = []string{".git", ".hg", ".svn", "node_modules"}
	// DefaultSelfNames are resolver scripts that may sit inside the tree
	// they clean; they contain marker literals and must not be touched.
	DefaultSelfNames = []string{"resolve_conflicts.py", "resolve_conflicts.js", "resolve_conflicts.cjs"}
)

// CLIArgs carries what the command line set. The *Set fields keep
// "explicitly false" distinct from "not given" so a flag can override the file.
type CLIArgs struct {
	Root       string
	ConfigPath string

	ExcludeDirs []string
	SelfNames   []string

	DryRun    bool
	DryRunSet bool

	Stage    bool
	StageSet bool

	GitOnly bool
	Select  bool
}

// FileConfig mirrors .keepours.json.
type FileConfig struct {
	ExcludeDirs []string `json:"exclude_dirs"`
	SelfNames   []string `json:"self_names"`
	DryRun      *bool    `json:"dry_run"`
	Stage       *bool    `json:"stage"`
}

// Config is the merged, normalized configuration the driver consumes.
type Config struct {
	Root string

	ExcludeDirs []string
	SelfNames   []string

	DryRun  bool
	Stage   bool
	GitOnly bool
	Select  bool

	// File is the config file that was applied, empty if none.
	File string
}

// Error is a configuration failure carrying a code.
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s: config file %q not found", e.Code, e.Path)
	case ErrCodeRootInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s: %q: %v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: %q", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: config file %q: %v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: config file %q", e.Code, e.Path)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code, or "" when err is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Load resolves the root against cwd, reads the config file and merges it
// with the CLI.
//
// Lookup:
//   - --config given: that file must exist.
//   - otherwise <root>/.keepours.json is read if present.
//
// Precedence: flag > file > default. Exclude dirs and self names from all
// sources are unioned with the defaults rather than replacing them.
func Load(cwd string, cli CLIArgs) (Config, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	rootArg := strings.TrimSpace(cli.Root)
	if rootArg == "" {
		rootArg = "."
	}
	root := absCleanFrom(cwdAbs, rootArg)
	info, err := os.Stat(root)
	if err != nil {
		return Config{}, &Error{Code: ErrCodeRootInvalid, Path: root, Err: err}
	}
	if !info.IsDir() {
		return Config{}, &Error{Code: ErrCodeRootInvalid, Path: root, Err: errors.New("not a directory")}
	}
	// WalkDir does not follow a symlinked root, and git reports real paths.
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return Config{}, &Error{Code: ErrCodeRootInvalid, Path: root, Err: err}
	}

	var (
		fc      FileConfig
		cfgPath string
		exists  bool
	)
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return Config{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else {
		cfgPath = filepath.Join(root, FileName)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}
	if !exists {
		cfgPath = ""
	}

	return merge(root, cli, fc, cfgPath)
}

func merge(root string, cli CLIArgs, fc FileConfig, cfgPath string) (Config, error) {
	excludes, err := names(DefaultExcludeDirs, fc.ExcludeDirs, cli.ExcludeDirs)
	if err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("exclude_dirs: %w", err)}
	}
	selfNames, err := names(DefaultSelfNames, fc.SelfNames, cli.SelfNames)
	if err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("self_names: %w", err)}
	}

	dryRun := false
	if cli.DryRunSet {
		dryRun = cli.DryRun
	} else if fc.DryRun != nil {
		dryRun = *fc.DryRun
	}

	stage := false
	if cli.StageSet {
		stage = cli.Stage
	} else if fc.Stage != nil {
		stage = *fc.Stage
	}

	return Config{
		Root:        root,
		ExcludeDirs: excludes,
		SelfNames:   selfNames,
		DryRun:      dryRun,
		Stage:       stage,
		GitOnly:     cli.GitOnly,
		Select:      cli.Select,
		File:        cfgPath,
	}, nil
}

// names unions the lists, drops blanks and rejects entries that are paths
// rather than single names. Matching happens per path segment.
func names(lists ...[]string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lists {
		for _, n := range l {
			n = strings.TrimSpace(n)
			if n == "" || seen[n] {
				continue
			}
			if strings.ContainsAny(n, `/\`) || n == "." || n == ".." {
				return nil, fmt.Errorf("%q must be a single name, not a path", n)
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out, nil
}

func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig reports exists=false without error when the file is absent.
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
