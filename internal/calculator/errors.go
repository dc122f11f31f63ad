package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitperfect/internal/money"
)

var (
	// ErrUnknownParticipant is returned when a payer or sharer is not a group member.
	ErrUnknownParticipant = errors.New("unknown participant")
	// ErrEmptySharerSet is returned when a line item has nobody to split it among.
	ErrEmptySharerSet = errors.New("line item has no sharers")
	// ErrUnbalancedInput is returned when credits and debits do not net to zero.
	ErrUnbalancedInput = errors.New("balances do not net to zero")
	// ErrAmountOverflow is returned when a total leaves the representable money range.
	ErrAmountOverflow = money.ErrOverflow
)

// UnknownParticipantError identifies the expense that referenced a non-member.
type UnknownParticipantError struct {
	Participant ParticipantID
	Expense     string
}

func (e *UnknownParticipantError) Error() string {
	return fmt.Sprintf("expense %s: participant %q is not a group member", e.Expense, e.Participant)
}

func (e *UnknownParticipantError) Unwrap() error {
	return ErrUnknownParticipant
}

// EmptySharerSetError identifies the line item with no sharers.
type EmptySharerSetError struct {
	Expense string
	Item    int
}

func (e *EmptySharerSetError) Error() string {
	return fmt.Sprintf("expense %s: item %d has no sharers", e.Expense, e.Item+1)
}

func (e *EmptySharerSetError) Unwrap() error {
	return ErrEmptySharerSet
}

// UnbalancedInputError carries the amount that could not be settled.
type UnbalancedInputError struct {
	Residual money.Money
}

func (e *UnbalancedInputError) Error() string {
	return fmt.Sprintf("balances do not net to zero: residual %s", e.Residual)
}

func (e *UnbalancedInputError) Unwrap() error {
	return ErrUnbalancedInput
}
