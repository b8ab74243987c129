// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
)

// Kind is the closed taxonomy of engine failures. Callers branch on the
// kind (and reason), never on message text.
type Kind string

const (
	KindValidation    Kind = "validation"     // malformed action arguments; caller's fault
	KindIllegalAction Kind = "illegal_action" // precondition failed; signals a stale client view
	KindNotFound      Kind = "not_found"      // room or player absent
	KindConflict      Kind = "conflict"       // version mismatch after the retry budget; retryable
	KindStorage       Kind = "storage"        // persistence collaborator failure; retryable with backoff
)

// Reason is the machine-readable precondition code inside a kind.
type Reason string

const (
	ReasonNotYourTurn        Reason = "not-your-turn"
	ReasonAlreadyDrew        Reason = "already-drew"
	ReasonPendingColorChoice Reason = "pending-color-choice"
	ReasonGameNotActive      Reason = "game-not-active"
	ReasonRoomNotFound       Reason = "room-not-found"
	ReasonPlayerNotFound     Reason = "player-not-found"
	ReasonCardNotInHand      Reason = "card-not-in-hand"
	ReasonCardNotPlayable    Reason = "card-not-playable"
	ReasonRoomFull           Reason = "room-full"
	ReasonNotInLobby         Reason = "not-in-lobby"
	ReasonTooFewPlayers      Reason = "too-few-players"
	ReasonMustDrawFirst      Reason = "must-draw-first"
	ReasonColorRequired      Reason = "color-required"
	ReasonNoPendingCatch     Reason = "no-pending-catch"
	ReasonCatchExpired       Reason = "catch-expired"
	ReasonUnoNotApplicable   Reason = "uno-not-applicable"
	ReasonAlreadyJoined      Reason = "already-joined"
	ReasonVersionConflict    Reason = "version-conflict"
	ReasonStorageFailure     Reason = "storage-failure"
	ReasonBadRequest         Reason = "bad-request"
)

// Error is the structured failure returned by every engine operation.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Reason, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Invalid builds a validation-kind error.
func Invalid(reason Reason, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Illegal builds an illegal-action-kind error.
func Illegal(reason Reason, format string, args ...interface{}) *Error {
	return &Error{Kind: KindIllegalAction, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found-kind error.
func NotFound(reason Reason, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a conflict-kind error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Reason: ReasonVersionConflict, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a persistence failure.
func Storage(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindStorage, Reason: ReasonStorageFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from any error, or empty when err is not an
// engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ReasonOf extracts the reason code from any error.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
