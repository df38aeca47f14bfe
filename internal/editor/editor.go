package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Editor launches an external interactive editor on a file. Command is
// the resolved editor command and may carry arguments ("code -w").
type Editor struct {
	Command string
}

// ExitError reports an editor that terminated with a non-zero status.
// Callers treat it as advisory: the edit itself may still have been
// saved before the editor died.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("editor exited with code %d", e.Code)
}

// Available checks that the editor binary can be found.
func (e Editor) Available() error {
	name := e.argv()[0]
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("editor %q not found in PATH (set EDITOR or the editor settings key)", name)
	}
	return nil
}

// Open launches the editor on path with the caller's terminal wired
// through, and blocks until it exits.
func (e Editor) Open(path string) error {
	argv := e.argv()
	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to run %s: %w", argv[0], err)
	}
	return nil
}

// argv splits the command into the binary and its leading arguments.
func (e Editor) argv() []string {
	fields := strings.Fields(e.Command)
	if len(fields) == 0 {
		return []string{"vi"}
	}
	return fields
}
