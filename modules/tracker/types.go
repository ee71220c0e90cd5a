package tracker

import (
	"errors"

	"github.com/example/task-tracker/domain/failure"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
)

// Error codes carried in ServiceError.Code.
const (
	CodeValidation        = "validation_error"
	CodeDuplicateIdentity = "duplicate_identity"
	CodeUserNotFound      = "user_not_found"
	CodeTaskNotFound      = "task_not_found"
)

// ServiceError is a domain failure carried inside a reply. Typed Go errors do
// not survive the bus, so the code is used to restore errors.Is matching on
// the caller's side.
type ServiceError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *ServiceError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + failure.FormatFields(e.Fields)
}

// Is matches the domain sentinel the code stands for.
func (e *ServiceError) Is(target error) bool {
	switch e.Code {
	case CodeValidation:
		return target == failure.ErrValidation
	case CodeDuplicateIdentity:
		return target == user.ErrDuplicateIdentity
	case CodeUserNotFound:
		return target == user.ErrNotFound
	case CodeTaskNotFound:
		return target == task.ErrNotFound
	}
	return false
}

// UserView is the wire form of a user. Only the identity field of the
// configured kind is set.
type UserView struct {
	ID         int64  `json:"id"`
	Nickname   string `json:"nickname,omitempty"`
	TelegramID int64  `json:"telegram_id,omitempty"`
}

// TaskView is the wire form of a task with its creator inlined.
type TaskView struct {
	ID      int64    `json:"id"`
	Text    string   `json:"text"`
	Done    bool     `json:"done"`
	Creator UserView `json:"creator"`
}

// RegisterUserRequest is the request for registering a user.
type RegisterUserRequest struct {
	Nickname   *string `json:"nickname,omitempty"`
	TelegramID *int64  `json:"telegram_id,omitempty"`
}

// GetUserRequest is the request for getting a user.
type GetUserRequest struct {
	UserID int64 `json:"user_id"`
}

// UserResponse is the response carrying a single user.
type UserResponse struct {
	User  *UserView     `json:"user,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// ResolveUserRequest is the request for mapping an identity to a user id.
type ResolveUserRequest struct {
	Identity string `json:"identity"`
}

// ResolveUserResponse is the response for resolving an identity.
type ResolveUserResponse struct {
	UserID int64         `json:"user_id,omitempty"`
	Error  *ServiceError `json:"error,omitempty"`
}

// DeleteUserRequest is the request for deleting a user.
type DeleteUserRequest struct {
	UserID int64 `json:"user_id"`
}

// DeleteResponse reports whether something was removed.
type DeleteResponse struct {
	Success bool          `json:"success"`
	Error   *ServiceError `json:"error,omitempty"`
}

// CreateTaskRequest is the request for creating a task. The creator is named
// by UserID or by the configured identity field.
type CreateTaskRequest struct {
	UserID     *int64  `json:"user_id,omitempty"`
	Nickname   *string `json:"nickname,omitempty"`
	TelegramID *int64  `json:"telegram_id,omitempty"`
	Text       string  `json:"text"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	TaskID int64 `json:"task_id"`
}

// SetTaskStatusRequest is the request for marking a task done or open.
type SetTaskStatusRequest struct {
	TaskID int64 `json:"task_id"`
	Done   *bool `json:"done"`
}

// TaskResponse is the response carrying a single task.
type TaskResponse struct {
	Task  *TaskView     `json:"task,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// ListTasksRequest is the request for listing a user's tasks.
type ListTasksRequest struct {
	UserID int64 `json:"user_id"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []TaskView    `json:"tasks"`
	Error *ServiceError `json:"error,omitempty"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID int64 `json:"task_id"`
}

// asServiceError converts a domain failure into a ServiceError. Any other
// error is returned unchanged as the second value. onIntegrity is the code a
// storage constraint violation stands for in the calling operation; empty
// means it is not a domain failure there.
func asServiceError(err error, onIntegrity string) (*ServiceError, error) {
	var verr *failure.ValidationError
	switch {
	case errors.As(err, &verr):
		return &ServiceError{Code: CodeValidation, Message: failure.ErrValidation.Error(), Fields: verr.Fields}, nil
	case errors.Is(err, user.ErrDuplicateIdentity):
		return &ServiceError{Code: CodeDuplicateIdentity, Message: err.Error()}, nil
	case errors.Is(err, user.ErrNotFound):
		return &ServiceError{Code: CodeUserNotFound, Message: err.Error()}, nil
	case errors.Is(err, task.ErrNotFound):
		return &ServiceError{Code: CodeTaskNotFound, Message: err.Error()}, nil
	case onIntegrity != "" && errors.Is(err, failure.ErrIntegrity):
		return &ServiceError{Code: onIntegrity, Message: integrityMessage(onIntegrity)}, nil
	}
	return nil, err
}

func integrityMessage(code string) string {
	switch code {
	case CodeDuplicateIdentity:
		return user.ErrDuplicateIdentity.Error()
	case CodeUserNotFound:
		return user.ErrNotFound.Error()
	}
	return failure.ErrIntegrity.Error()
}
