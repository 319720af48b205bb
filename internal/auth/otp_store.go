package auth

import (
	"context"
	"time"

	"mfbrokers/internal/cache"
)

const (
	otpKeyPrefix = "otp:"
	// OTPTTL bounds how long a pending code stays valid.
	OTPTTL = 300 * time.Second
)

// OTPStoreInterface defines storage for pending one-time codes.
type OTPStoreInterface interface {
	Store(ctx context.Context, email, otp string) error
	Consume(ctx context.Context, email, otp string) (bool, error)
}

// OTPStore keeps pending codes in Redis, keyed by email. Redis is the sole
// source of truth: no in-process copy, so codes survive restarts and are
// shared across instances.
type OTPStore struct {
	cache *cache.Client
}

// Ensure OTPStore implements OTPStoreInterface
var _ OTPStoreInterface = (*OTPStore)(nil)

// NewOTPStore creates a new OTP store.
func NewOTPStore(cache *cache.Client) *OTPStore {
	return &OTPStore{cache: cache}
}

// Store saves the code for email with the standard TTL, replacing any
// previous pending code.
func (s *OTPStore) Store(ctx context.Context, email, otp string) error {
	return s.cache.Set(ctx, otpKeyPrefix+email, []byte(otp), OTPTTL)
}

// Consume checks the submitted code and deletes the entry on a match in a
// single atomic step. A matching code verifies exactly once; replays and
// expired entries report false. A wrong guess leaves the stored code in
// place.
func (s *OTPStore) Consume(ctx context.Context, email, otp string) (bool, error) {
	return s.cache.CompareAndDelete(ctx, otpKeyPrefix+email, []byte(otp))
}
