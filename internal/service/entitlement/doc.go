// Package entitlement verifies signed purchase receipts that unlock the pro
// tier.
//
// A receipt is an HS256-signed JWT issued by the store backend. Its subject
// is the user ID the purchase belongs to and its "tier" claim must be "pro".
// Receipts may carry an expiry; lifetime purchases omit it.
package entitlement
