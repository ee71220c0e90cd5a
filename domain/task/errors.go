package task

import "errors"

// ErrNotFound indicates the task was not found.
var ErrNotFound = errors.New("task not found")
