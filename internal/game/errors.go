package game

import (
	"errors"
	"fmt"
)

// RejectCode is a stable machine-readable reason for a validation rejection.
// Transport maps these to 4xx responses.
type RejectCode string

const (
	RejectGameNotActive          RejectCode = "game_not_active"
	RejectNotYourTurn            RejectCode = "not_your_turn"
	RejectUnknownAction          RejectCode = "unknown_action"
	RejectMalformedPayload       RejectCode = "malformed_payload"
	RejectWrongPhase             RejectCode = "wrong_phase"
	RejectCardNotInHand          RejectCode = "card_not_in_hand"
	RejectInvalidPosition        RejectCode = "invalid_position"
	RejectPositionOccupied       RejectCode = "position_occupied"
	RejectLayerMismatch          RejectCode = "layer_mismatch"
	RejectInsufficientResources  RejectCode = "insufficient_resources"
	RejectCardNotOnField         RejectCode = "card_not_on_field"
	RejectNotAUnit               RejectCode = "not_a_unit"
	RejectInvalidAbility         RejectCode = "invalid_ability"
	RejectInvalidTarget          RejectCode = "invalid_target"
	RejectInvalidPhaseTransition RejectCode = "invalid_phase_transition"
	RejectInvalidLayer           RejectCode = "invalid_layer"
)

// RuleError is an expected, user-facing rejection of an action. Game state is
// untouched when one is returned.
type RuleError struct {
	Code    RejectCode
	Message string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("action rejected (%s): %s", e.Code, e.Message)
}

func reject(code RejectCode, format string, args ...any) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is a validation rejection.
func IsRejection(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

// ErrGameNotFound is returned when the game code resolves to nothing.
var ErrGameNotFound = errors.New("game not found")

// ErrGameFinished is returned for any action against a finished game.
var ErrGameFinished = errors.New("game already finished")

// faultError marks an executor inconsistency the validator should have made
// impossible. These are programming faults, surfaced as 5xx and logged, never
// silently patched.
type faultError struct {
	msg string
}

func (e *faultError) Error() string { return "internal fault: " + e.msg }

func fault(format string, args ...any) error {
	return &faultError{msg: fmt.Sprintf(format, args...)}
}

// IsFault reports whether err is an internal consistency fault.
func IsFault(err error) bool {
	var fe *faultError
	return errors.As(err, &fe)
}
