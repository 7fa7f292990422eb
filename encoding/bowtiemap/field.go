package bowtiemap

import (
	"bytes"
	"fmt"
)

// DefaultMismatchCol is the 0-based index of the mismatch descriptor column.
const DefaultMismatchCol = 7

// ShortLineError is returned when a line does not have the requested column.
type ShortLineError struct {
	// Col is the 0-based column that was requested.
	Col int
	// NField is the number of fields actually found.
	NField int
	Line   string
}

func (e *ShortLineError) Error() string {
	return fmt.Sprintf("malformed MAP line: want column %d, found %d column(s): %q",
		e.Col+1, e.NField, e.Line)
}

// TrimEOL removes a trailing "\n" or "\r\n".
func TrimEOL(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
	}
	return line
}

// ReadName returns the read name, i.e., the first column of the line. The
// result aliases line.
func ReadName(line []byte) []byte {
	line = TrimEOL(line)
	if tab := bytes.IndexByte(line, '\t'); tab >= 0 {
		return line[:tab]
	}
	return line
}

// Field returns the col'th (0-based) tab-separated column of the line. The
// result aliases line. It returns a *ShortLineError if the line has col or
// fewer columns.
func Field(line []byte, col int) ([]byte, error) {
	line = TrimEOL(line)
	rest := line
	for i := 0; i < col; i++ {
		tab := bytes.IndexByte(rest, '\t')
		if tab < 0 {
			return nil, &ShortLineError{Col: col, NField: i + 1, Line: string(line)}
		}
		rest = rest[tab+1:]
	}
	if tab := bytes.IndexByte(rest, '\t'); tab >= 0 {
		rest = rest[:tab]
	}
	return rest, nil
}

// MismatchCount returns the number of descriptors in a mismatch column: zero
// if the column is empty, otherwise the number of comma-separated entries.
func MismatchCount(desc []byte) int {
	if len(desc) == 0 {
		return 0
	}
	return bytes.Count(desc, []byte{','}) + 1
}

// Mismatches extracts the mismatch column col from the line and returns its
// descriptor count.
func Mismatches(line []byte, col int) (int, error) {
	desc, err := Field(line, col)
	if err != nil {
		return 0, err
	}
	return MismatchCount(desc), nil
}
