package mintr

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

type RetryOptions struct {
	MaxRetries int
	BaseDelay  time.Duration

	// Timer and Rand are swapped out in tests.
	Timer retry.Timer
	Rand  func() float64
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.Rand == nil {
		o.Rand = rand.Float64
	}
	return o
}

// BackoffDelay is base * 2^(n-1) * (0.5 + r*0.5) for the n-th retry (n >= 1).
func BackoffDelay(base time.Duration, n uint, r float64) time.Duration {
	if n == 0 {
		n = 1
	}
	if n > 30 {
		n = 30
	}
	mult := float64(uint64(1)<<(n-1)) * (0.5 + r*0.5)
	return time.Duration(float64(base) * mult)
}

// Retry runs op until it succeeds or MaxRetries+1 attempts have failed, and
// then returns the last error unchanged. Errors wrapped with
// retry.Unrecoverable stop immediately.
func Retry[T any](ctx context.Context, log *zap.SugaredLogger, what string, op func(context.Context) (T, error), o RetryOptions) (T, error) {
	o = o.withDefaults()
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	// retry-go's own attempt index is not part of its contract; count here
	var retries uint
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(o.MaxRetries) + 1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(uint, error, *retry.Config) time.Duration {
			retries++
			return BackoffDelay(o.BaseDelay, retries, o.Rand())
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warnw("attempt failed", "op", what, "attempt", n+1, "of", o.MaxRetries+1, "err", err)
		}),
	}
	if o.Timer != nil {
		opts = append(opts, retry.WithTimer(o.Timer))
	}

	return retry.DoWithData(func() (T, error) {
		v, err := op(ctx)
		if permanent(err) {
			return v, retry.Unrecoverable(err)
		}
		return v, err
	}, opts...)
}

// permanent errors cannot change between attempts.
func permanent(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) || errors.Is(err, ErrNotAMint)
}
