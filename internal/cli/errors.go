package cli

import "fmt"

// ExitError carries a shell exit code out of a cobra RunE function, so
// commands can signal failure without calling os.Exit themselves. [Execute]
// extracts the code at the top level; tests assert on it directly.
type ExitError struct {
	// Code is the exit code to return to the shell.
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an [ExitError] with the given exit code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError reports whether err is an *ExitError, returning its code.
func IsExitError(err error) (int, bool) {
	if exitErr, ok := err.(*ExitError); ok {
		return exitErr.Code, true
	}
	return 0, false
}
