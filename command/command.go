// Package command turns raw request payloads into validated commands.
//
// Every Parse function either returns a command that the services can run
// as is, or a *failure.ValidationError naming each offending field. Nothing
// here touches storage.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/task-tracker/domain/failure"
	"github.com/example/task-tracker/domain/user"
)

// RegisterUserInput is the raw payload for registering a user. Exactly one
// field is expected, matching the deployment's identity kind.
type RegisterUserInput struct {
	Nickname   *string `json:"nickname,omitempty"`
	TelegramID *int64  `json:"telegram_id,omitempty"`
}

// RegisterUser carries a normalized identity.
type RegisterUser struct {
	Identity string
}

// ParseRegisterUser validates in for the given identity kind.
func ParseRegisterUser(kind user.IdentityKind, in RegisterUserInput) (RegisterUser, error) {
	verr := &failure.ValidationError{}
	rejectForeignIdentity(kind, in.Nickname, in.TelegramID, verr)

	identity, ok := identityFrom(kind, in.Nickname, in.TelegramID, verr)
	if !ok && verr.Fields[kind.Field()] == "" {
		verr.Add(kind.Field(), "is required")
	}
	if !verr.Empty() {
		return RegisterUser{}, verr
	}
	return RegisterUser{Identity: identity}, nil
}

// CreateTaskInput is the raw payload for creating a task. The creator is
// given either by user_id or by the deployment's identity field; user_id
// wins when both are present.
type CreateTaskInput struct {
	UserID     *int64  `json:"user_id,omitempty"`
	Nickname   *string `json:"nickname,omitempty"`
	TelegramID *int64  `json:"telegram_id,omitempty"`
	Text       string  `json:"text"`
}

// CreateTask names the creator by UserID or, when UserID is zero, by Identity.
type CreateTask struct {
	UserID   int64
	Identity string
	Text     string
}

// ByIdentity reports whether the creator still has to be resolved.
func (c CreateTask) ByIdentity() bool {
	return c.UserID == 0
}

// ParseCreateTask validates in for the given identity kind.
func ParseCreateTask(kind user.IdentityKind, in CreateTaskInput) (CreateTask, error) {
	verr := &failure.ValidationError{}
	var cmd CreateTask

	cmd.Text = strings.TrimSpace(in.Text)
	if cmd.Text == "" {
		verr.Add("text", "is required")
	}

	rejectForeignIdentity(kind, in.Nickname, in.TelegramID, verr)

	switch {
	case in.UserID != nil:
		if *in.UserID <= 0 {
			verr.Add("user_id", "must be positive")
		}
		cmd.UserID = *in.UserID
	default:
		identity, ok := identityFrom(kind, in.Nickname, in.TelegramID, verr)
		if !ok && verr.Fields[kind.Field()] == "" {
			verr.Add("user_id", fmt.Sprintf("either user_id or %s must be provided", kind.Field()))
		}
		cmd.Identity = identity
	}

	if !verr.Empty() {
		return CreateTask{}, verr
	}
	return cmd, nil
}

// SetStatusInput is the raw payload for changing a task's state.
type SetStatusInput struct {
	Done *bool `json:"done"`
}

// SetStatus moves a task to an explicit state.
type SetStatus struct {
	TaskID int64
	Done   bool
}

// ParseSetStatus validates in for the task with taskID.
func ParseSetStatus(taskID int64, in SetStatusInput) (SetStatus, error) {
	verr := &failure.ValidationError{}
	if taskID <= 0 {
		verr.Add("id", "must be positive")
	}
	if in.Done == nil {
		verr.Add("done", "is required")
	}
	if !verr.Empty() {
		return SetStatus{}, verr
	}
	return SetStatus{TaskID: taskID, Done: *in.Done}, nil
}

// ParseID parses a positive integer id taken from field, such as a path
// parameter or query string value.
func ParseID(field, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, failure.NewValidationError(field, "is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, failure.NewValidationError(field, "must be an integer")
	}
	if id <= 0 {
		return 0, failure.NewValidationError(field, "must be positive")
	}
	return id, nil
}

// CheckID rejects ids that cannot name a stored row.
func CheckID(field string, id int64) error {
	if id <= 0 {
		return failure.NewValidationError(field, "must be positive")
	}
	return nil
}

// identityFrom normalizes whichever identity field matches kind. ok is false
// when that field was absent or invalid; invalid values are recorded on verr.
func identityFrom(kind user.IdentityKind, nickname *string, telegramID *int64, verr *failure.ValidationError) (string, bool) {
	var (
		identity string
		err      error
	)
	switch kind {
	case user.KindNickname:
		if nickname == nil {
			return "", false
		}
		identity, err = user.ParseIdentity(kind, *nickname)
	case user.KindTelegram:
		if telegramID == nil {
			return "", false
		}
		identity, err = user.TelegramIdentity(*telegramID)
	default:
		verr.Add("identity", fmt.Sprintf("unsupported identity kind %q", kind))
		return "", false
	}
	if err != nil {
		mergeInto(verr, err)
		return "", false
	}
	return identity, true
}

func rejectForeignIdentity(kind user.IdentityKind, nickname *string, telegramID *int64, verr *failure.ValidationError) {
	switch {
	case kind == user.KindTelegram && nickname != nil:
		verr.Add(user.KindNickname.Field(), "not accepted; users are identified by telegram_id")
	case kind == user.KindNickname && telegramID != nil:
		verr.Add(user.KindTelegram.Field(), "not accepted; users are identified by nickname")
	}
}

func mergeInto(verr *failure.ValidationError, err error) {
	if other, ok := err.(*failure.ValidationError); ok {
		for field, msg := range other.Fields {
			verr.Add(field, msg)
		}
		return
	}
	verr.Add("identity", err.Error())
}
