package executor

import (
	"errors"
	"strings"
)

// ErrExecution matches every *ExecError through errors.Is.
var ErrExecution = errors.New("execution failed")

// ExecError is a failed command. Output is stdout, stderr and the process
// error joined and trimmed, falling back to "execution failed".
type ExecError struct {
	Command  string
	ExitCode int
	Output   string
}

func newExecError(command string, code int, stdout, stderr string, err error) *ExecError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &ExecError{
		Command:  command,
		ExitCode: code,
		Output:   CombineOutput(stdout, stderr, msg),
	}
}

// CombineOutput concatenates the three parts in order and trims the result.
func CombineOutput(stdout, stderr, message string) string {
	out := strings.TrimSpace(stdout + stderr + message)
	if out == "" {
		return ErrExecution.Error()
	}
	return out
}

func (e *ExecError) Error() string {
	return e.Output
}

func (e *ExecError) Is(target error) bool {
	return target == ErrExecution
}
