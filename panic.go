package dynpool

import (
	"fmt"
	"runtime"
)

// TaskPanicError wraps a panic recovered from a submitted task,
// together with the goroutine stack captured at the point of the
// panic. It is delivered to the pool's task error handler and
// returned from the task's Handle.
type TaskPanicError struct {
	// Value is the original value passed to panic().
	Value any

	// Stack is the goroutine stack trace at the point of panic.
	Stack string
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("dynpool: task panicked: %v\n\n%s", e.Value, e.Stack)
}

func newTaskPanicError(v any) *TaskPanicError {
	// runtime.Stack truncates gracefully if the buffer is too small.
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &TaskPanicError{
		Value: v,
		Stack: string(buf[:n]),
	}
}
