package model

import "errors"

// Cash register error taxonomy. Handlers map these to specific HTTP statuses
// so the client can always show which condition failed.
var (
	// ErrSessionAlreadyOpen: an open session already exists for the drawer.
	// The existing session must be closed first; never retried.
	ErrSessionAlreadyOpen = errors.New("a cash session is already open for this drawer")

	// ErrSessionClosed: movement append or close attempted on a session that
	// is no longer open. Indicates a stale client view.
	ErrSessionClosed = errors.New("cash session is not open")

	ErrSessionNotFound = errors.New("cash session not found")

	// ErrInvalidAmount: amount is negative (or zero where positive required).
	// Rejected before any write.
	ErrInvalidAmount = errors.New("amount must be a non-negative value")

	// ErrMissingDescription: withdrawal/supply movements require a reason.
	ErrMissingDescription = errors.New("description is required for withdrawals and supplies")

	// ErrWithdrawalExceedsBalance: the withdrawal is larger than the cash
	// expected in the drawer. Soft rule — resubmitting with confirm=true
	// accepts the movement anyway.
	ErrWithdrawalExceedsBalance = errors.New("withdrawal exceeds the expected cash balance; confirmation required")
)
