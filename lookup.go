package mintr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// SOLDecimals is the number of decimals of a lamport amount.
const SOLDecimals = 9

// failover asks each endpoint of net in order and returns the first answer
// without error, with the endpoint that gave it. Endpoints that refuse access
// or rate limit are evicted from d.
func failover[T any](ctx context.Context, d Dialer, net Network, log *zap.SugaredLogger, what string, fn func(context.Context, Chain) (T, error)) (T, string, error) {
	var (
		zero T
		errs []error
	)
	if len(net.Endpoints) == 0 {
		return zero, "", fmt.Errorf("network %s has no endpoints", net.Name)
	}
	for _, ep := range net.Endpoints {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}
		v, err := fn(ctx, d.Chain(ep))
		if err == nil {
			return v, ep, nil
		}
		if permanent(err) {
			return zero, ep, err
		}

		switch Classify(err) {
		case KindForbidden, KindRateLimited:
			d.Evict(ep)
		}
		log.Warnw("endpoint failed", "op", what, "endpoint", ep, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", ep, err))
	}
	return zero, "", errors.Join(errs...)
}

type endpointResult[T any] struct {
	v  T
	ep string
}

// readAny is failover wrapped in Retry: each attempt walks the endpoint list.
func readAny[T any](ctx context.Context, d Dialer, net Network, log *zap.SugaredLogger, o RetryOptions, what string, fn func(context.Context, Chain) (T, error)) (T, string, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	res, err := Retry(ctx, log, what, func(ctx context.Context) (endpointResult[T], error) {
		v, ep, err := failover(ctx, d, net, log, what, fn)
		return endpointResult[T]{v: v, ep: ep}, err
	}, o)
	if err != nil {
		return res.v, "", readErr(what, err)
	}
	return res.v, res.ep, nil
}

// LookupMint reads a mint from the first endpoint of net that answers.
// Endpoints of other networks are never consulted.
func LookupMint(ctx context.Context, d Dialer, net Network, mint solana.PublicKey, o RetryOptions, log *zap.SugaredLogger) (*TokenInfo, string, error) {
	return readAny(ctx, d, net, log, o, "mint", func(ctx context.Context, c Chain) (*TokenInfo, error) {
		return c.MintInfo(ctx, mint)
	})
}

// Balance returns owner's SOL balance in lamports.
func Balance(ctx context.Context, d Dialer, net Network, owner solana.PublicKey, o RetryOptions, log *zap.SugaredLogger) (uint64, error) {
	v, _, err := readAny(ctx, d, net, log, o, "balance", func(ctx context.Context, c Chain) (uint64, error) {
		return c.Balance(ctx, owner)
	})
	return v, err
}

// Airdrop requests test SOL and waits for it to confirm. It is never retried.
func Airdrop(ctx context.Context, c Chain, net Network, owner solana.PublicKey, lamports uint64, wait time.Duration) (solana.Signature, error) {
	if !net.Faucet {
		return solana.Signature{}, fmt.Errorf("%w: %s", ErrNoFaucet, net.Name)
	}
	if lamports == 0 {
		return solana.Signature{}, invalid("amount", "must be positive")
	}
	sig, err := c.Airdrop(ctx, owner, lamports)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("airdrop: %w", err)
	}
	if wait <= 0 {
		wait = DefaultConfirmWait
	}
	cctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	return sig, c.Confirm(cctx, sig, Anchor{})
}
