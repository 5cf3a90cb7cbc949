package run

// Outcome is what happened to one candidate file.
type Outcome string

const (
	// OutcomeResolved: markers found and the file was rewritten (or would
	// be, in a dry run).
	OutcomeResolved Outcome = "resolved"
	// OutcomeUnchanged: no conflict-start marker; the file was not touched.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeDeclined: markers found but the file was left out at selection.
	OutcomeDeclined Outcome = "declined"
	// OutcomeSkipped: unreadable or not UTF-8.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed: the file could not be read back or rewritten.
	OutcomeFailed Outcome = "failed"
)

type FileResult struct {
	Path    string
	RelPath string
	Outcome Outcome

	Conflicts int
	Dropped   int

	BytesBefore int64
	BytesAfter  int64

	Err error
}

type Summary struct {
	Scanned   int
	Resolved  int
	Unchanged int
	Declined  int
	Skipped   int
	Failed    int

	// BytesRemoved totals BytesBefore-BytesAfter over resolved files.
	BytesRemoved int64
}

type Report struct {
	Root   string
	DryRun bool
	// Branch is the checked-out branch whose side was kept; set only when
	// git was consulted.
	Branch string

	Files   []FileResult
	Staged  []string
	Summary Summary
}

func (r *Report) add(fr FileResult) {
	r.Files = append(r.Files, fr)
	r.Summary.Scanned++
	switch fr.Outcome {
	case OutcomeResolved:
		r.Summary.Resolved++
		r.Summary.BytesRemoved += fr.BytesBefore - fr.BytesAfter
	case OutcomeUnchanged:
		r.Summary.Unchanged++
	case OutcomeDeclined:
		r.Summary.Declined++
	case OutcomeSkipped:
		r.Summary.Skipped++
	case OutcomeFailed:
		r.Summary.Failed++
	}
}

// ResolvedPaths lists absolute paths of resolved files in report order.
func (r Report) ResolvedPaths() []string {
	var out []string
	for _, f := range r.Files {
		if f.Outcome == OutcomeResolved {
			out = append(out, f.Path)
		}
	}
	return out
}
