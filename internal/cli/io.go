package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// IO carries the command streams.
type IO struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	good   func(a ...any) string
	bad    func(a ...any) string
}

// NewIO creates a new IO instance. Colors follow fatih/color's terminal
// detection.
func NewIO(in io.Reader, out, errOut io.Writer) *IO {
	return &IO{
		in:     in,
		out:    out,
		errOut: errOut,
		good:   color.New(color.FgGreen).SprintFunc(),
		bad:    color.New(color.FgRed, color.Bold).SprintFunc(),
	}
}

// Println writes to stdout.
func (o *IO) Println(a ...any) { _, _ = fmt.Fprintln(o.out, a...) }

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) { _, _ = fmt.Fprintf(o.out, format, a...) }

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) { _, _ = fmt.Fprintln(o.errOut, a...) }

// Good colors a success marker.
func (o *IO) Good(a ...any) string { return o.good(a...) }

// Bad colors a failure marker.
func (o *IO) Bad(a ...any) string { return o.bad(a...) }
