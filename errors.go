package mintr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var (
	ErrWalletDisconnected = errors.New("connect wallet first")
	ErrBusy               = errors.New("operation already in progress")
	ErrMintNotFound       = errors.New("mint not found")
	ErrNotAMint           = errors.New("account is not an spl token mint")
	ErrNotMintAuthority   = errors.New("wallet is not the mint authority")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrConfirmTimeout     = errors.New("timed out waiting for confirmation")
	ErrBlockhashExpired   = errors.New("blockhash expired before confirmation")
	ErrUnconfirmed        = errors.New("confirmation not observed")
	ErrTxFailed           = errors.New("transaction failed on chain")
	ErrNoFaucet           = errors.New("network has no faucet")
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindWalletDisconnected
	KindBusy
	KindInsufficientFunds
	KindForbidden
	KindRateLimited
	KindTimeout
	KindNotFound
	KindRead
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindWalletDisconnected:
		return "wallet-disconnected"
	case KindBusy:
		return "busy"
	case KindInsufficientFunds:
		return "insufficient-funds"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate-limited"
	case KindTimeout:
		return "timeout"
	case KindNotFound:
		return "not-found"
	case KindRead:
		return "read"
	case KindRejected:
		return "rejected"
	}
	return "unknown"
}

// Indeterminate kinds mean the transaction may still land.
func (k ErrorKind) Indeterminate() bool {
	return k == KindTimeout
}

// ValidationError is raised before any network call.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ReadError marks a failure of a read query that already went through Retry.
type ReadError struct {
	What string
	Err  error
}

func (e *ReadError) Error() string { return "could not verify " + e.What + ": " + e.Err.Error() }
func (e *ReadError) Unwrap() error { return e.Err }

func readErr(what string, err error) error {
	if err == nil {
		return nil
	}
	return &ReadError{What: what, Err: err}
}

// Classify maps err onto an ErrorKind. Typed values are checked first; message
// matching is only used for RPC errors that carry no usable code.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return KindValidation
	case errors.Is(err, ErrWalletDisconnected):
		return KindWalletDisconnected
	case errors.Is(err, ErrBusy):
		return KindBusy
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrConfirmTimeout), errors.Is(err, ErrBlockhashExpired), errors.Is(err, ErrUnconfirmed),
		errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrMintNotFound), errors.Is(err, rpc.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotMintAuthority), errors.Is(err, ErrNotAMint), errors.Is(err, ErrTxFailed):
		return KindRejected
	}

	var herr *jsonrpc.HTTPError
	if errors.As(err, &herr) {
		switch herr.Code {
		case http.StatusForbidden, http.StatusUnauthorized:
			return KindForbidden
		case http.StatusTooManyRequests:
			return KindRateLimited
		case http.StatusGatewayTimeout, http.StatusRequestTimeout:
			return KindTimeout
		}
	}

	var rerr *jsonrpc.RPCError
	if errors.As(err, &rerr) {
		if k := classifyMessage(rerr.Message); k != KindUnknown {
			return k
		}
		// Data carries program logs and addresses; only funds markers mean anything there.
		if insufficientFunds(strings.ToLower(fmt.Sprint(rerr.Data))) {
			return KindInsufficientFunds
		}
	}

	var rd *ReadError
	if errors.As(err, &rd) {
		if k := Classify(rd.Err); k != KindUnknown {
			return k
		}
		return KindRead
	}

	return classifyMessage(err.Error())
}

func classifyMessage(msg string) ErrorKind {
	m := strings.ToLower(msg)
	switch {
	case insufficientFunds(m):
		return KindInsufficientFunds
	case strings.Contains(m, "forbidden"), strings.Contains(m, "status code: 403"):
		return KindForbidden
	case strings.Contains(m, "too many requests"), strings.Contains(m, "rate limit"),
		strings.Contains(m, "status code: 429"):
		return KindRateLimited
	case strings.Contains(m, "timeout"), strings.Contains(m, "timed out"):
		return KindTimeout
	}
	return KindUnknown
}

func insufficientFunds(m string) bool {
	return strings.Contains(m, "insufficient funds") ||
		strings.Contains(m, "insufficient lamports") ||
		strings.Contains(m, "no record of a prior credit") ||
		strings.Contains(m, "custom program error: 0x1\n") ||
		strings.HasSuffix(m, "custom program error: 0x1")
}

// Remedy is the user-facing line for an error of kind k.
func Remedy(k ErrorKind) string {
	switch k {
	case KindWalletDisconnected:
		return "connect wallet first (mintr init or mintr recover)"
	case KindBusy:
		return "wait for the current operation to finish"
	case KindInsufficientFunds:
		return "insufficient funds: top up SOL for fees or check the token balance"
	case KindForbidden:
		return "rpc endpoint refused access (403): use another endpoint with --rpc"
	case KindRateLimited:
		return "rpc endpoint is rate limiting: retry later or use another endpoint"
	case KindTimeout:
		return "outcome unknown: check the explorer before trying again"
	case KindNotFound:
		return "account not found on this network"
	case KindRead:
		return "could not verify on-chain state: check the rpc endpoint"
	case KindRejected:
		return "the network rejected the operation"
	}
	return ""
}
