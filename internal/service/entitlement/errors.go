package entitlement

import "errors"

var (
	// ErrNotConfigured is returned when no receipt secret is configured.
	ErrNotConfigured = errors.New("receipt verification is not configured")

	// ErrInvalidReceipt is returned for malformed, unsigned or tampered receipts.
	ErrInvalidReceipt = errors.New("invalid receipt")

	// ErrExpiredReceipt is returned when the receipt's expiry has passed.
	ErrExpiredReceipt = errors.New("receipt has expired")

	// ErrUserMismatch is returned when the receipt belongs to another user.
	ErrUserMismatch = errors.New("receipt was issued for a different user")

	// ErrWrongTier is returned when the receipt does not grant the pro tier.
	ErrWrongTier = errors.New("receipt does not grant the pro tier")
)
