package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/snapsolve/snapsolve/internal/clock"
	"github.com/snapsolve/snapsolve/internal/config"
	"github.com/snapsolve/snapsolve/internal/platform/logger"
)

// TierPro is the tier claim that unlocks unlimited quotas.
const TierPro = "pro"

// MinSecretLength is the shortest accepted HMAC secret.
const MinSecretLength = 32

// receiptClaims defines the structure of receipt claims
type receiptClaims struct {
	Tier    string `json:"tier"`
	Product string `json:"product,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256-signed receipts.
type Verifier struct {
	signingKey []byte
	issuer     string
	clock      clock.Clock
	clockSkew  time.Duration
}

// NewVerifier creates a Verifier from the entitlement configuration.
func NewVerifier(cfg config.EntitlementConfig, clk clock.Clock) (*Verifier, error) {
	if cfg.ReceiptSecret == "" {
		return nil, ErrNotConfigured
	}
	if len(cfg.ReceiptSecret) < MinSecretLength {
		return nil, fmt.Errorf("receipt secret must be at least %d characters", MinSecretLength)
	}
	if clk == nil {
		return nil, errors.New("clock cannot be nil")
	}

	return &Verifier{
		signingKey: []byte(cfg.ReceiptSecret),
		issuer:     cfg.Issuer,
		clock:      clk,
		clockSkew:  2 * time.Minute,
	}, nil
}

// Verify checks that receipt is a valid pro receipt for userID.
func (v *Verifier) Verify(ctx context.Context, receipt string, userID string) error {
	log := logger.FromContext(ctx)
	now := v.clock.Now()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithIssuedAt(),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(
		receipt,
		&receiptClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("receipt verification failed: expired", "error", err)
			return ErrExpiredReceipt
		}
		log.Debug("receipt verification failed",
			"error", err,
			"error_type", fmt.Sprintf("%T", err))
		return ErrInvalidReceipt
	}

	claims, ok := token.Claims.(*receiptClaims)
	if !ok || !token.Valid {
		return ErrInvalidReceipt
	}
	if claims.Tier != TierPro {
		log.Debug("receipt verification failed: wrong tier", "tier", claims.Tier)
		return ErrWrongTier
	}
	if claims.Subject != userID {
		log.Debug("receipt verification failed: user mismatch", "receipt_id", claims.ID)
		return ErrUserMismatch
	}

	log.Debug("receipt verified", "receipt_id", claims.ID, "product", claims.Product)
	return nil
}

// Issue signs a pro receipt for userID. A zero lifetime issues a receipt
// that never expires. It backs local tooling and tests; production receipts
// come from the store backend.
func (v *Verifier) Issue(userID, product string, lifetime time.Duration) (string, error) {
	now := v.clock.Now()
	claims := receiptClaims{
		Tier:    TierPro,
		Product: product,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			Issuer:   v.issuer,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
	}
	if lifetime > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(lifetime))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign receipt with HMAC-SHA256: %w", err)
	}
	return signed, nil
}
