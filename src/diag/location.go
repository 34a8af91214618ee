// Package diag provides source-code locations and a bounded, crumb-style
// diagnostic bag used by every later compiler stage to report errors and
// warnings without throwing.
package diag

import "fmt"

// Location marks a span of source text: the file it came from, a pointer
// back into the full source string, and a (row, col, length) triple for
// rendering a caret under the offending text.
type Location struct {
	Path        string // Source file path.
	Source      string // Full source text the location was taken from.
	SourceBegin int    // Byte offset of the marked span within Source.
	Row         int    // 1-indexed row.
	Col         int    // 1-indexed column.
	Length      int    // Length in bytes of the marked span. Always >= 1.
}

// String renders a location as "path:row:col".
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Row, l.Col)
}

// Text returns the marked substring of the source.
func (l Location) Text() string {
	if l.SourceBegin < 0 || l.SourceBegin+l.Length > len(l.Source) {
		return ""
	}
	return l.Source[l.SourceBegin : l.SourceBegin+l.Length]
}

// line returns the full source line the location begins on, without the
// trailing newline.
func (l Location) line() string {
	begin := l.SourceBegin
	for begin > 0 && l.Source[begin-1] != '\n' {
		begin--
	}
	end := l.SourceBegin
	for end < len(l.Source) && l.Source[end] != '\n' {
		end++
	}
	return l.Source[begin:end]
}
