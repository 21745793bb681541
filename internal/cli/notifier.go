package cli

import (
	"fmt"
	"io"
)

// cliNotifier prints controller acknowledgments. Errors are returned to
// main and printed there, so failures only name the operation.
type cliNotifier struct {
	out    io.Writer
	errOut io.Writer
}

func (n cliNotifier) Success(msg string) {
	fmt.Fprintf(n.out, "✓ %s\n", msg)
}

func (n cliNotifier) Failure(msg string, err error) {
	fmt.Fprintf(n.errOut, "✗ %s\n", msg)
}
