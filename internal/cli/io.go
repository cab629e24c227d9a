package cli

import (
	"fmt"
	"io"
)

// IO bundles the streams a command reads from and writes to.
type IO struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// NewIO creates a new IO instance. Nil streams read EOF or discard output.
func NewIO(in io.Reader, out, errOut io.Writer) *IO {
	if in == nil {
		in = eofReader{}
	}

	if out == nil {
		out = io.Discard
	}

	if errOut == nil {
		errOut = io.Discard
	}

	return &IO{in: in, out: out, errOut: errOut}
}

// Stdin returns the input stream.
func (o *IO) Stdin() io.Reader {
	return o.in
}

// Stdout returns the output stream.
func (o *IO) Stdout() io.Writer {
	return o.out
}

// Stderr returns an IO whose standard output is this IO's error stream, for
// printing help text after a usage error.
func (o *IO) Stderr() *IO {
	return &IO{in: o.in, out: o.errOut, errOut: o.errOut}
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
