package user

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/example/task-tracker/domain/failure"
)

// IdentityKind selects which external attribute identifies a user.
type IdentityKind string

const (
	KindNickname IdentityKind = "nickname"
	KindTelegram IdentityKind = "telegram"
)

// MaxNicknameLength is the longest nickname accepted, in runes.
const MaxNicknameLength = 64

// Valid reports whether k is a known identity kind.
func (k IdentityKind) Valid() bool {
	return k == KindNickname || k == KindTelegram
}

// Field is the payload field name carrying an identity of this kind.
func (k IdentityKind) Field() string {
	if k == KindTelegram {
		return "telegram_id"
	}
	return "nickname"
}

// User is a registered user. ID is zero until the user is persisted.
type User struct {
	ID       int64  `json:"id"`
	Identity string `json:"identity"`
}

// New returns an unsaved user carrying an already normalized identity.
func New(identity string) (User, error) {
	if strings.TrimSpace(identity) == "" {
		return User{}, failure.NewValidationError("identity", "is required")
	}
	return User{Identity: identity}, nil
}

// Persisted reports whether the user has been assigned an ID.
func (u User) Persisted() bool {
	return u.ID != 0
}

// ParseIdentity normalizes raw into the canonical stored form for kind.
func ParseIdentity(kind IdentityKind, raw string) (string, error) {
	switch kind {
	case KindNickname:
		nick := strings.TrimSpace(raw)
		if nick == "" {
			return "", failure.NewValidationError(kind.Field(), "is required")
		}
		if utf8.RuneCountInString(nick) > MaxNicknameLength {
			return "", failure.NewValidationError(kind.Field(),
				fmt.Sprintf("must be at most %d characters", MaxNicknameLength))
		}
		return nick, nil
	case KindTelegram:
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return "", failure.NewValidationError(kind.Field(), "must be an integer")
		}
		return TelegramIdentity(id)
	default:
		return "", fmt.Errorf("unknown identity kind %q", kind)
	}
}

// TelegramIdentity returns the stored form of a telegram id.
func TelegramIdentity(id int64) (string, error) {
	if id <= 0 {
		return "", failure.NewValidationError(KindTelegram.Field(), "must be positive")
	}
	return strconv.FormatInt(id, 10), nil
}
