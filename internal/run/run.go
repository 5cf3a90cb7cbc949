package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/corpeningc/keepours/internal/config"
	"github.com/corpeningc/keepours/internal/conflict"
	"github.com/corpeningc/keepours/internal/git"
	"github.com/corpeningc/keepours/internal/textfile"
	"github.com/corpeningc/keepours/internal/walk"
)

// GitClient is the slice of git the driver needs for --git and --stage.
type GitClient interface {
	ConflictedFiles(ctx context.Context) ([]string, error)
	AddFiles(ctx context.Context, files []string) error
	GetCurrentBranch(ctx context.Context) (string, error)
}

// SelectFunc is shown the relative paths of files that would be rewritten
// and returns the subset to actually write.
type SelectFunc func(relPaths []string) ([]string, error)

type Options struct {
	Logger   *slog.Logger
	Observer Observer
	// Git defaults to a repository rooted at the configured root.
	Git GitClient
	// Select is required when the config asks for selection.
	Select SelectFunc
}

// ErrNoSelector is returned when selection is requested without a SelectFunc.
var ErrNoSelector = errors.New("selection requested but no selector configured")

type pending struct {
	fr    FileResult
	lines []string
}

// Execute resolves every candidate under cfg.Root, one file at a time.
//
// A file is rewritten only when the resolver saw a conflict-start marker.
// Unreadable files are skipped and failed writes are recorded; neither
// stops the walk. The returned error is non-nil only when the run itself
// could not proceed (listing candidates, selection, staging, cancellation);
// the report is still returned for whatever was done before that.
func Execute(ctx context.Context, cfg config.Config, opts Options) (Report, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	obs := opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	gc := opts.Git
	if gc == nil {
		gc = git.New(cfg.Root)
	}
	if cfg.Select && opts.Select == nil {
		return Report{}, ErrNoSelector
	}

	rr := Report{Root: cfg.Root, DryRun: cfg.DryRun}

	cands, err := candidates(ctx, cfg, gc)
	if err != nil {
		return rr, err
	}
	log.Debug("candidates listed", "root", cfg.Root, "count", len(cands), "git", cfg.GitOnly)

	if cfg.GitOnly || (cfg.Stage && !cfg.DryRun) {
		// Only used for reporting; a detached or unborn HEAD is not fatal.
		if branch, err := gc.GetCurrentBranch(ctx); err == nil {
			rr.Branch = branch
		} else {
			log.Debug("current branch unknown", "err", err)
		}
	}

	var queue []pending
	for _, c := range cands {
		if err := ctx.Err(); err != nil {
			obs.OnDone(rr)
			return rr, err
		}

		fr, lines := resolveOne(c, log)
		switch {
		case fr.Outcome == OutcomeSkipped:
			rr.add(fr)
			obs.OnSkipped(fr)
		case fr.Outcome == OutcomeFailed:
			rr.add(fr)
			obs.OnFailed(fr)
		case fr.Outcome == OutcomeUnchanged:
			rr.add(fr)
		case cfg.Select:
			queue = append(queue, pending{fr: fr, lines: lines})
		default:
			fr = commit(fr, lines, cfg.DryRun, log)
			rr.add(fr)
			notify(obs, fr)
		}
	}

	if cfg.Select && len(queue) > 0 {
		if err := selectAndCommit(&rr, queue, cfg.DryRun, opts.Select, obs, log); err != nil {
			obs.OnDone(rr)
			return rr, err
		}
	}

	if cfg.Stage && !cfg.DryRun {
		paths := rr.ResolvedPaths()
		if len(paths) > 0 {
			if err := gc.AddFiles(ctx, paths); err != nil {
				obs.OnDone(rr)
				return rr, fmt.Errorf("stage resolved files: %w", err)
			}
			rr.Staged = paths
			log.Debug("staged resolved files", "count", len(paths), "branch", rr.Branch)
		}
	}

	obs.OnDone(rr)
	return rr, nil
}

func candidates(ctx context.Context, cfg config.Config, gc GitClient) ([]walk.Candidate, error) {
	rules := walk.Rules{ExcludeDirs: cfg.ExcludeDirs, SelfNames: cfg.SelfNames}

	if cfg.GitOnly {
		paths, err := gc.ConflictedFiles(ctx)
		if err != nil {
			return nil, fmt.Errorf("list conflicted files: %w", err)
		}
		return walk.FromPaths(cfg.Root, paths, rules), nil
	}

	cands, err := walk.Candidates(cfg.Root, rules)
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", cfg.Root, err)
	}
	return cands, nil
}

// resolveOne reads and resolves c. The returned lines are only meaningful
// when the outcome is OutcomeResolved.
func resolveOne(c walk.Candidate, log *slog.Logger) (FileResult, []string) {
	fr := FileResult{Path: c.AbsPath, RelPath: c.RelPath}

	if c.Err != nil {
		fr.Outcome = OutcomeSkipped
		fr.Err = &textfile.DecodeError{Path: c.AbsPath, Err: c.Err}
		log.Debug("skipped", "path", c.RelPath, "err", c.Err)
		return fr, nil
	}

	f, err := textfile.Read(c.AbsPath)
	if err != nil {
		fr.Err = err
		if textfile.IsDecodeError(err) {
			fr.Outcome = OutcomeSkipped
			log.Debug("skipped", "path", c.RelPath, "err", err)
		} else {
			fr.Outcome = OutcomeFailed
			log.Warn("read failed", "path", c.RelPath, "err", err)
		}
		return fr, nil
	}
	fr.BytesBefore = f.Size
	fr.BytesAfter = f.Size

	res := conflict.Resolve(f.Lines)
	if !res.Modified {
		fr.Outcome = OutcomeUnchanged
		if res.Dropped > 0 {
			// Stray separator or end marker with no start: left in place.
			log.Debug("stray markers ignored", "path", c.RelPath, "lines", res.Dropped)
		}
		return fr, nil
	}

	fr.Outcome = OutcomeResolved
	fr.Conflicts = res.Conflicts
	fr.Dropped = res.Dropped
	fr.BytesAfter = byteLen(res.Lines)
	return fr, res.Lines
}

func commit(fr FileResult, lines []string, dryRun bool, log *slog.Logger) FileResult {
	if dryRun {
		log.Debug("dry run, not writing", "path", fr.RelPath)
		return fr
	}
	if _, err := textfile.Write(fr.Path, lines); err != nil {
		fr.Outcome = OutcomeFailed
		fr.Err = err
		log.Warn("rewrite failed", "path", fr.RelPath, "err", err)
		return fr
	}
	log.Debug("rewrote", "path", fr.RelPath, "conflicts", fr.Conflicts, "dropped", fr.Dropped)
	return fr
}

func selectAndCommit(rr *Report, queue []pending, dryRun bool, sel SelectFunc, obs Observer, log *slog.Logger) error {
	rels := make([]string, 0, len(queue))
	for _, p := range queue {
		rels = append(rels, p.fr.RelPath)
	}

	chosen, err := sel(rels)
	if err != nil {
		return fmt.Errorf("select files: %w", err)
	}
	keep := make(map[string]bool, len(chosen))
	for _, r := range chosen {
		keep[r] = true
	}

	for _, p := range queue {
		fr := p.fr
		if !keep[fr.RelPath] {
			fr.Outcome = OutcomeDeclined
			fr.BytesAfter = fr.BytesBefore
			rr.add(fr)
			log.Debug("declined", "path", fr.RelPath)
			continue
		}
		fr = commit(fr, p.lines, dryRun, log)
		rr.add(fr)
		notify(obs, fr)
	}
	return nil
}

func notify(obs Observer, fr FileResult) {
	if fr.Outcome == OutcomeFailed {
		obs.OnFailed(fr)
		return
	}
	obs.OnResolved(fr)
}

func byteLen(lines []string) int64 {
	var n int64
	for _, l := range lines {
		n += int64(len(l))
	}
	return n
}
