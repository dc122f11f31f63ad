package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/splitperfect/internal/auth"
	"github.com/mmynk/splitperfect/internal/calculator"
	"github.com/mmynk/splitperfect/internal/middleware"
	"github.com/mmynk/splitperfect/internal/storage"
)

var (
	errNotMember   = errors.New("you are not a member of this group")
	errNotCreator  = errors.New("only the group creator can delete it")
	errNotPayer    = errors.New("only the payer can delete an expense")
	errNoItems     = errors.New("at least one item is required")
	errGroupName   = errors.New("group name is required")
	errJoinCode    = errors.New("join code is required")
	errGroupID     = errors.New("group_id is required")
	errExpenseID   = errors.New("expense_id is required")
	errBadQuantity = errors.New("item quantity cannot be negative")
)

// storeError maps a storage error onto a Connect code.
func storeError(err error) *connect.Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrAlreadyMember):
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// engineError maps a calculator error onto a Connect code. Malformed or
// oversized input is the caller's fault; unbalanced balances can only come
// from corrupt data.
func engineError(err error) *connect.Error {
	switch {
	case errors.Is(err, calculator.ErrUnknownParticipant), errors.Is(err, calculator.ErrEmptySharerSet):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, calculator.ErrAmountOverflow):
		return connect.NewError(connect.CodeOutOfRange, err)
	default:
		return connect.NewError(connect.CodeInternal, fmt.Errorf("failed to compute balances: %w", err))
	}
}

// requireUser returns the authenticated caller's ID.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}
