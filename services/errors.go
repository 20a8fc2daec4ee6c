package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind is the machine-readable class of a failure.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindConflict             Kind = "conflict"
	KindInvalid              Kind = "invalid"
	KindInsufficientResource Kind = "insufficient_resource"
	KindInternal             Kind = "internal"
)

// Error is returned by every service operation that fails for a reason the
// caller can act on. Anything else is an internal failure.
type Error struct {
	Kind    Kind                   `json:"error"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) with(message string, details map[string]interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: message, Details: details}
}

var (
	ErrPlayerNotFound      = &Error{Kind: KindNotFound, Code: "PLAYER_NOT_FOUND", Message: "player not found"}
	ErrQuestNotFound       = &Error{Kind: KindNotFound, Code: "QUEST_NOT_FOUND", Message: "quest not found or inactive"}
	ErrQuestNotComplete    = &Error{Kind: KindConflict, Code: "QUEST_NOT_COMPLETE", Message: "quest is not complete"}
	ErrAlreadyClaimed      = &Error{Kind: KindConflict, Code: "ALREADY_CLAIMED", Message: "reward already claimed"}
	ErrInsufficientCatalog = &Error{Kind: KindInsufficientResource, Code: "INSUFFICIENT_CATALOG", Message: "not enough quests in catalog"}
	ErrInvalid             = &Error{Kind: KindInvalid, Code: "INVALID_ARGUMENT", Message: "invalid argument"}
	ErrInternal            = &Error{Kind: KindInternal, Code: "INTERNAL", Message: "internal error"}
)

func invalidf(format string, args ...interface{}) *Error {
	return ErrInvalid.with(fmt.Sprintf(format, args...), nil)
}

// AsError unwraps err into an *Error, classifying anything unknown as internal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.with(err.Error(), nil)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isUniqueViolation reports a duplicate key from postgres (23505) or from a
// dialector that translates errors.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
