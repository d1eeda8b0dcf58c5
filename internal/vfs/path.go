package vfs

import (
	"iter"
	"slices"
	"strings"
)

// DefaultSeparator separates path segments unless a session configures another one.
const DefaultSeparator = "/"

const (
	currentSegment = "."
	parentSegment  = ".."
)

// Path is a normalized path expression. It holds the canonical segment
// sequence and whether the original string was absolute. Paths are values:
// every method returns a new Path and never modifies the receiver.
//
// The separator is only used for rendering; two paths built with different
// separators are Equal when their segments and absoluteness match.
type Path struct {
	segments []string
	absolute bool
	sep      string
}

// ParsePath normalizes raw into a Path using sep as the segment separator.
// Empty and "." segments are dropped, repeated separators collapse, and each
// ".." cancels the nearest preceding real name in the same expression. A ".."
// with nothing left to cancel is kept, since the base it climbs above is only
// known at resolution time.
//
// Rendering and re-parsing is only stable for separators accepted by
// ValidSeparator: with "aa", the relative path "a" renders as "aaa", which
// parses back as absolute.
func ParsePath(raw, sep string) Path {
	if sep == "" {
		sep = DefaultSeparator
	}

	var out []string
	// names holds, for every real name in out, the index of the real name
	// before it (-1 when there is none).
	var names []int
	last := -1
	for _, seg := range strings.Split(raw+sep, sep) {
		switch {
		case seg == "" || seg == currentSegment:
			continue
		case seg == parentSegment && last >= 0:
			out = slices.Delete(out, last, last+1)
			last, names = names[len(names)-1], names[:len(names)-1]
		case seg == parentSegment:
			out = append(out, seg)
		default:
			out = append(out, seg)
			names = append(names, last)
			last = len(out) - 1
		}
	}

	return Path{
		segments: out,
		absolute: strings.HasPrefix(raw, sep),
		sep:      sep,
	}
}

// ValidSeparator reports whether sep can separate path segments. It must be
// non-empty and must not overlap itself, that is no proper prefix of sep may
// also be a suffix of it.
func ValidSeparator(sep string) bool {
	if sep == "" {
		return false
	}
	for i := 1; i < len(sep); i++ {
		if strings.HasSuffix(sep, sep[:i]) {
			return false
		}
	}
	return true
}

// RootPath returns the absolute path of the root directory.
func RootPath(sep string) Path {
	return ParsePath(sep, sep)
}

// IsAbsolute reports whether the path was written starting with the separator.
func (p Path) IsAbsolute() bool {
	return p.absolute
}

// IsRoot reports whether the path is absolute and names no segment.
func (p Path) IsRoot() bool {
	return p.absolute && len(p.segments) == 0
}

// Len returns the number of canonical segments.
func (p Path) Len() int {
	return len(p.segments)
}

// Separator returns the separator used to render this path.
func (p Path) Separator() string {
	if p.sep == "" {
		return DefaultSeparator
	}
	return p.sep
}

// WithSeparator returns p rendered with sep instead of its own separator.
func (p Path) WithSeparator(sep string) Path {
	p.sep = sep
	return p
}

// Text returns the canonical text: every segment followed by the separator,
// or the bare separator when no segment survived normalization.
func (p Path) Text() string {
	sep := p.Separator()
	if len(p.segments) == 0 {
		return sep
	}
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteString(s)
		b.WriteString(sep)
	}
	return b.String()
}

// String renders the path so that parsing it again yields an Equal path.
func (p Path) String() string {
	sep := p.Separator()
	switch {
	case p.absolute && len(p.segments) == 0:
		return sep
	case p.absolute:
		return sep + p.Text()
	case len(p.segments) == 0:
		// The bare separator would read back as the root.
		return currentSegment
	default:
		return p.Text()
	}
}

// Segments returns the canonical segments in order. The sequence can be
// ranged over any number of times.
func (p Path) Segments() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, s := range p.segments {
			if !yield(s) {
				return
			}
		}
	}
}

// Base returns the last segment, or "" for a path without segments.
func (p Path) Base() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Dir returns the path without its last segment.
func (p Path) Dir() Path {
	if len(p.segments) == 0 {
		return p
	}
	return Path{
		segments: slices.Clone(p.segments[:len(p.segments)-1]),
		absolute: p.absolute,
		sep:      p.sep,
	}
}

// Join appends the segments of rel to p and normalizes the result. An
// absolute rel replaces p entirely.
func (p Path) Join(rel Path) Path {
	if rel.absolute {
		return rel
	}
	sep := p.Separator()
	return ParsePath(p.String()+sep+rel.Text(), sep)
}

// HasPrefix reports whether the segments of q are a prefix of p's segments.
// Absoluteness must match.
func (p Path) HasPrefix(q Path) bool {
	if p.absolute != q.absolute || len(q.segments) > len(p.segments) {
		return false
	}
	return slices.Equal(p.segments[:len(q.segments)], q.segments)
}

// Equal reports whether p and q have the same canonical segments and
// absoluteness. Separators are ignored.
func (p Path) Equal(q Path) bool {
	return p.absolute == q.absolute && slices.Equal(p.segments, q.segments)
}
