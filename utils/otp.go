// utils/otp.go
package utils

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
)

// DemoOTP is the fixed code issued in demo mode.
const DemoOTP = "000000"

// OTPDigits is the length of generated codes.
const OTPDigits = 6

// GenerateNumericOTP returns a cryptographically random code of n decimal digits.
func GenerateNumericOTP(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}

// HashOTP hashes a code for storage.
func HashOTP(code string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CompareOTP reports whether code matches the stored hash.
func CompareOTP(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

// AttemptLimiter bounds how often a key may attempt OTP verification.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) error
}

// NoopAttemptLimiter allows every attempt.
type NoopAttemptLimiter struct{}

func (NoopAttemptLimiter) Allow(context.Context, string) error { return nil }

// RedisAttemptLimiter counts attempts per key in a fixed window.
type RedisAttemptLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

// NewAttemptLimiter returns a Redis-backed limiter, or a no-op one when client is nil.
func NewAttemptLimiter(client *redis.Client, max int, window time.Duration) AttemptLimiter {
	if client == nil || max <= 0 {
		return NoopAttemptLimiter{}
	}
	return &RedisAttemptLimiter{client: client, max: int64(max), window: window}
}

// Allow counts one attempt for key. The window TTL is (re)applied whenever the
// counter has none, so a failed Expire cannot leave a key that never resets.
func (l *RedisAttemptLimiter) Allow(ctx context.Context, key string) error {
	redisKey := "otp_attempts:" + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	if ttl.Val() < 0 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return fmt.Errorf("set attempt window: %w", err)
		}
	}

	if incr.Val() > l.max {
		return RateLimitedError("too many OTP attempts")
	}
	return nil
}
