package runner

import (
	"errors"
	"io"
	"os/exec"

	"github.com/creack/pty"
)

// errPTYUnavailable signals that the platform or environment cannot
// allocate a pseudo-terminal; the caller falls back to plain pipes.
var errPTYUnavailable = errors.New("pty unavailable")

// runWithPTY executes cmd under a pseudo-terminal, streaming combined
// output to out. Tools detect the pty and keep their color output, which
// matters for linters whose diagnostics rely on it.
func runWithPTY(cmd *exec.Cmd, out io.Writer) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return errPTYUnavailable
	}
	defer ptmx.Close()

	// The copy ends with an EIO-style read error when the child closes
	// its side of the pty; that is the normal shutdown path.
	_, _ = io.Copy(out, ptmx)

	return cmd.Wait()
}
