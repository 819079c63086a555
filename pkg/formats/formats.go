// Package formats provides parsers for the Wavefront OBJ and MTL text formats.
//
// Parsers return flat attribute pools and 0-based corner references; they do
// not weld, triangulate beyond a simple fan, or resolve material files.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every *ParseError.
var ErrSyntax = errors.New("syntax error")

// maxLineSize bounds a single logical line.
const maxLineSize = 1 << 20

// ParseError reports a malformed line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Unwrap lets callers match parse failures with errors.Is(err, ErrSyntax).
func (e *ParseError) Unwrap() error {
	return ErrSyntax
}

func syntaxError(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// scanLines calls fn for every non-blank, non-comment line of r with the
// keyword, the remaining fields and the unsplit remainder of the line.
func scanLines(r io.Reader, fn func(line int, keyword string, args []string, rest string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		rest := strings.TrimSpace(text[len(fields[0]):])
		if err := fn(line, fields[0], fields[1:], rest); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading line %d: %w", line+1, err)
	}
	return nil
}

// parseFloats parses between min and max float32 values.
func parseFloats(line int, keyword string, args []string, min, max int) ([]float32, error) {
	if len(args) < min || len(args) > max {
		if min == max {
			return nil, syntaxError(line, "%s: expected %d values, got %d", keyword, min, len(args))
		}
		return nil, syntaxError(line, "%s: expected %d to %d values, got %d", keyword, min, max, len(args))
	}
	out := make([]float32, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, syntaxError(line, "%s: invalid number %q", keyword, a)
		}
		out[i] = float32(f)
	}
	return out, nil
}
