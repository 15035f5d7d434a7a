package store

import "github.com/emberhall/ember/internal/chatcore"

// Path is an ordered sequence of message ids from a root to a node,
// comparable lexicographically the same way original_source compares
// `Vec<Id>`: element-wise, then by length. A path's last segment may be
// chatcore.LastPossibleMessageID(), a sentinel used to place an
// editor/pseudo cursor beneath a parent, after all of that parent's
// real children (§4.3/§4.5).
type Path struct {
	segments []chatcore.MessageID
}

// NewPath builds a Path from root-to-node segments.
func NewPath(segments []chatcore.MessageID) Path {
	return Path{segments: append([]chatcore.MessageID(nil), segments...)}
}

// First returns the path's root segment.
func (p Path) First() chatcore.MessageID {
	return p.segments[0]
}

// Last returns the path's final segment, the node (or sentinel) the
// path actually identifies.
func (p Path) Last() chatcore.MessageID {
	return p.segments[len(p.segments)-1]
}

// ParentSegments returns the path to this path's parent, i.e. every
// segment except the last.
func (p Path) ParentSegments() Path {
	if len(p.segments) == 0 {
		return Path{}
	}
	return Path{segments: p.segments[:len(p.segments)-1]}
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segments) }

// Segments returns a defensive copy of the path's root-to-node segments.
func (p Path) Segments() []chatcore.MessageID {
	return append([]chatcore.MessageID(nil), p.segments...)
}

// Less reports whether p sorts before other, comparing segment by
// segment and, on a common prefix, treating the shorter path as less
// (the same rule Rust's derived Vec<T> PartialOrd uses).
func (p Path) Less(other Path) bool {
	return p.compare(other) < 0
}

func (p Path) compare(other Path) int {
	n := len(p.segments)
	if len(other.segments) < n {
		n = len(other.segments)
	}
	for i := 0; i < n; i++ {
		if c := p.segments[i].Compare(other.segments[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(p.segments) < len(other.segments):
		return -1
	case len(p.segments) > len(other.segments):
		return 1
	default:
		return 0
	}
}

// Extend returns a new path with id appended as the final segment, used
// to place an editor/pseudo cursor beneath a parent without it being a
// real message in the tree.
func (p Path) Extend(id chatcore.MessageID) Path {
	segments := make([]chatcore.MessageID, len(p.segments)+1)
	copy(segments, p.segments)
	segments[len(p.segments)] = id
	return Path{segments: segments}
}

// Equal reports whether p and other identify the same path.
func (p Path) Equal(other Path) bool {
	return p.compare(other) == 0
}
