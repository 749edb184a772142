package bytecode

import "fmt"

// SourceLocation is the position an instruction was compiled from. Only the
// line and column are stored per instruction; the filename and source text
// are stored once on the Code.
type SourceLocation struct {
	Line   int // 1-based line number
	Column int // 1-based column number
}

func (s SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}
