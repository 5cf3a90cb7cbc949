// Package conflict strips merge-conflict markers from text, always keeping
// the "ours" side of a block and dropping the "theirs" side.
//
// The resolver is a three-state machine (Normal, InsideOurs, InsideTheirs)
// driven by one marker per line. It is lenient: unpaired separators, end
// markers with no start, and nested start markers are all absorbed without
// error.
package conflict
