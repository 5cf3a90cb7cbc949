package conflict

import "strings"

const (
	startToken     = "<<<<<<<"
	separatorToken = "======="
	endToken       = ">>>>>>>"
)

type Marker int

const (
	NoMarker Marker = iota
	StartMarker
	SeparatorMarker
	EndMarker
)

func (m Marker) String() string {
	switch m {
	case StartMarker:
		return "start"
	case SeparatorMarker:
		return "separator"
	case EndMarker:
		return "end"
	default:
		return "none"
	}
}

// State is the region the next input line falls into.
type State int

const (
	Normal State = iota
	InsideOurs
	InsideTheirs
)

func (s State) String() string {
	switch s {
	case InsideOurs:
		return "ours"
	case InsideTheirs:
		return "theirs"
	default:
		return "normal"
	}
}

// Result is the outcome of resolving one file's lines.
type Result struct {
	Lines    []string
	Modified bool

	// Conflicts counts start markers seen, including nested ones.
	Conflicts int
	// Dropped counts input lines that were not emitted.
	Dropped int
}

// Classify reports which marker, if any, the line carries. Surrounding
// whitespace is ignored and anything after the token (branch name, label)
// does not matter.
func Classify(line string) Marker {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, startToken):
		return StartMarker
	case strings.HasPrefix(trimmed, separatorToken):
		return SeparatorMarker
	case strings.HasPrefix(trimmed, endToken):
		return EndMarker
	default:
		return NoMarker
	}
}

// Next is the transition function. Malformed sequences never fail: a start
// marker always restarts a block, an end marker always closes one, and a
// separator outside of "ours" is a no-op.
func (s State) Next(m Marker) State {
	switch m {
	case StartMarker:
		return InsideOurs
	case SeparatorMarker:
		if s == InsideOurs {
			return InsideTheirs
		}
		return s
	case EndMarker:
		return Normal
	default:
		return s
	}
}

// Emits reports whether a non-marker line is kept in this state.
func (s State) Emits() bool {
	return s != InsideTheirs
}

// Resolve keeps the "ours" side of every conflict block and drops the
// "theirs" side along with all marker lines.
//
// Modified is set only by a start marker. A stray separator or end marker
// is still removed from Lines, but callers that gate writes on Modified
// will leave such a file alone.
func Resolve(lines []string) Result {
	res := Result{Lines: make([]string, 0, len(lines))}
	state := Normal

	for _, line := range lines {
		m := Classify(line)
		if m == StartMarker {
			res.Modified = true
			res.Conflicts++
		}
		if m != NoMarker {
			state = state.Next(m)
			res.Dropped++
			continue
		}
		if !state.Emits() {
			res.Dropped++
			continue
		}
		res.Lines = append(res.Lines, line)
	}

	return res
}

// SplitLines splits text after every '\n', keeping the terminator on each
// line so "\r\n" and "\n" survive a round trip. A final line without a
// terminator is returned as is.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ResolveText resolves a whole document.
func ResolveText(text string) (string, Result) {
	res := Resolve(SplitLines(text))
	return strings.Join(res.Lines, ""), res
}
