package conflict

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Marker
	}{
		{"<<<<<<< HEAD\n", StartMarker},
		{"<<<<<<<\n", StartMarker},
		{"   <<<<<<< feature/x\r\n", StartMarker},
		{"=======\n", SeparatorMarker},
		{"\t=======  \n", SeparatorMarker},
		{">>>>>>> branch\n", EndMarker},
		{">>>>>>>", EndMarker},
		{"<<<<<< six only\n", NoMarker},
		{"====== six only\n", NoMarker},
		{"a <<<<<<< inside\n", NoMarker},
		{"plain text\n", NoMarker},
		{"\n", NoMarker},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.line), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestStateNext(t *testing.T) {
	tests := []struct {
		from State
		m    Marker
		want State
	}{
		{Normal, StartMarker, InsideOurs},
		{InsideOurs, StartMarker, InsideOurs},
		{InsideTheirs, StartMarker, InsideOurs},
		{Normal, SeparatorMarker, Normal},
		{InsideOurs, SeparatorMarker, InsideTheirs},
		{InsideTheirs, SeparatorMarker, InsideTheirs},
		{Normal, EndMarker, Normal},
		{InsideOurs, EndMarker, Normal},
		{InsideTheirs, EndMarker, Normal},
		{Normal, NoMarker, Normal},
		{InsideOurs, NoMarker, InsideOurs},
		{InsideTheirs, NoMarker, InsideTheirs},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.m.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.Next(tt.m))
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		in       []string
		want     []string
		modified bool
	}{
		{
			name:     "no markers",
			in:       []string{"x\n", "y\n"},
			want:     []string{"x\n", "y\n"},
			modified: false,
		},
		{
			name:     "single block",
			in:       []string{"a\n", "<<<<<<< HEAD\n", "b\n", "=======\n", "c\n", ">>>>>>> branch\n", "d\n"},
			want:     []string{"a\n", "b\n", "d\n"},
			modified: true,
		},
		{
			name: "two blocks in order",
			in: []string{
				"1\n", "<<<<<<< HEAD\n", "ours1\n", "=======\n", "theirs1\n", ">>>>>>> b\n",
				"2\n", "<<<<<<< HEAD\n", "ours2a\n", "ours2b\n", "=======\n", "theirs2\n", ">>>>>>> b\n", "3\n",
			},
			want:     []string{"1\n", "ours1\n", "2\n", "ours2a\n", "ours2b\n", "3\n"},
			modified: true,
		},
		{
			name:     "stray separator only",
			in:       []string{"a\n", "=======\n", "b\n"},
			want:     []string{"a\n", "b\n"},
			modified: false,
		},
		{
			name:     "stray end marker only",
			in:       []string{"a\n", ">>>>>>> x\n", "b\n"},
			want:     []string{"a\n", "b\n"},
			modified: false,
		},
		{
			name:     "nested start restarts block",
			in:       []string{"<<<<<<< HEAD\n", "o1\n", "=======\n", "t1\n", "<<<<<<< HEAD\n", "o2\n", "=======\n", "t2\n", ">>>>>>> b\n", "z\n"},
			want:     []string{"o1\n", "o2\n", "z\n"},
			modified: true,
		},
		{
			name:     "end without separator",
			in:       []string{"<<<<<<< HEAD\n", "o\n", ">>>>>>> b\n", "after\n"},
			want:     []string{"o\n", "after\n"},
			modified: true,
		},
		{
			name:     "unterminated theirs drops to eof",
			in:       []string{"a\n", "<<<<<<< HEAD\n", "o\n", "=======\n", "t\n", "t2\n"},
			want:     []string{"a\n", "o\n"},
			modified: true,
		},
		{
			name:     "second separator inside theirs is a no-op",
			in:       []string{"<<<<<<<\n", "o\n", "=======\n", "t\n", "=======\n", "t2\n", ">>>>>>>\n"},
			want:     []string{"o\n"},
			modified: true,
		},
		{
			name:     "crlf terminators preserved",
			in:       []string{"a\r\n", "<<<<<<< HEAD\r\n", "b\r\n", "=======\r\n", "c\r\n", ">>>>>>> x\r\n", "d"},
			want:     []string{"a\r\n", "b\r\n", "d"},
			modified: true,
		},
		{
			name:     "indented markers",
			in:       []string{"  <<<<<<< HEAD\n", "\tkeep\n", "  =======\n", "\tdrop\n", "  >>>>>>> x\n"},
			want:     []string{"\tkeep\n"},
			modified: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.in)
			assert.Equal(t, tt.want, res.Lines)
			assert.Equal(t, tt.modified, res.Modified)
			assert.Equal(t, len(tt.in)-len(tt.want), res.Dropped)
		})
	}
}

func TestResolveCountsConflicts(t *testing.T) {
	res := Resolve([]string{"<<<<<<<\n", "a\n", "<<<<<<<\n", "b\n", "=======\n", ">>>>>>>\n", "<<<<<<<\n", ">>>>>>>\n"})
	assert.Equal(t, 3, res.Conflicts)
}

func TestResolveEmpty(t *testing.T) {
	res := Resolve(nil)
	assert.Empty(t, res.Lines)
	assert.False(t, res.Modified)
	assert.Zero(t, res.Dropped)
}

func TestResolveIsIdempotent(t *testing.T) {
	inputs := [][]string{
		{"a\n", "<<<<<<< HEAD\n", "b\n", "=======\n", "c\n", ">>>>>>> branch\n", "d\n"},
		{"<<<<<<<\n", "x\n", "=======\n", "y\n", ">>>>>>>\n", "<<<<<<<\n", "=======\n", ">>>>>>>\n"},
		{"plain\n", "text"},
	}
	for _, in := range inputs {
		first := Resolve(in)
		second := Resolve(first.Lines)
		assert.Equal(t, first.Lines, second.Lines)
		assert.False(t, second.Modified)
		assert.Zero(t, second.Dropped)
	}
}

func TestResolveDoesNotAliasInput(t *testing.T) {
	in := []string{"a\n", "b\n"}
	res := Resolve(in)
	res.Lines[0] = "changed\n"
	assert.Equal(t, "a\n", in[0])
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single unterminated", "abc", []string{"abc"}},
		{"trailing newline", "a\nb\n", []string{"a\n", "b\n"}},
		{"no trailing newline", "a\nb", []string{"a\n", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a\r\n", "b\r\n"}},
		{"mixed", "a\r\nb\nc", []string{"a\r\n", "b\n", "c"}},
		{"blank lines", "\n\n", []string{"\n", "\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, strings.Join(got, ""))
		})
	}
}

func TestResolveText(t *testing.T) {
	out, res := ResolveText("a\r\n<<<<<<< HEAD\r\nb\r\n=======\r\nc\r\n>>>>>>> x\r\nd")
	require.True(t, res.Modified)
	assert.Equal(t, "a\r\nb\r\nd", out)
	assert.Equal(t, 1, res.Conflicts)
}
