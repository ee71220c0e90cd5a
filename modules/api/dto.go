package api

// RegisterUserRequest is the HTTP request for registering a user. Only the
// field of the configured identity kind is accepted.
type RegisterUserRequest struct {
	Nickname   *string `json:"nickname,omitempty"`
	TelegramID *int64  `json:"telegram_id,omitempty"`
}

// CreateTaskRequest is the HTTP request for creating a task.
type CreateTaskRequest struct {
	UserID     *int64  `json:"user_id,omitempty"`
	Nickname   *string `json:"nickname,omitempty"`
	TelegramID *int64  `json:"telegram_id,omitempty"`
	Text       string  `json:"text"`
}

// UpdateTaskRequest is the HTTP request for changing a task's state.
type UpdateTaskRequest struct {
	Done *bool `json:"done"`
}

// UserIDResponse is the HTTP response for an identity lookup.
type UserIDResponse struct {
	ID int64 `json:"id"`
}

// SuccessResponse is the HTTP response for deletions.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
