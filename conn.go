package mintr

import (
	"net/http"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

const DefaultRPCTimeout = 60 * time.Second

type ConnOptions struct {
	Timeout          time.Duration
	RetryOnRateLimit bool
	RateLimit        float64
	Transport        http.RoundTripper
}

func DefaultConnOptions() ConnOptions {
	return ConnOptions{
		Timeout:          DefaultRPCTimeout,
		RetryOnRateLimit: true,
	}
}

// Conn is a client handle for one endpoint.
type Conn struct {
	endpoint   string
	commitment rpc.CommitmentType
	timeout    time.Duration
	retry429   bool

	rpc *rpc.Client
	log *zap.SugaredLogger
}

func NewConn(endpoint string, o ConnOptions, log *zap.SugaredLogger) *Conn {
	if o.Timeout <= 0 {
		o.Timeout = DefaultRPCTimeout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	httpClient := &http.Client{
		Timeout:   o.Timeout,
		Transport: newLimitTransport(o.Transport, o.RateLimit, o.RetryOnRateLimit),
	}
	client := rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
		HTTPClient: httpClient,
	}))
	return &Conn{
		endpoint:   endpoint,
		commitment: rpc.CommitmentConfirmed,
		timeout:    o.Timeout,
		retry429:   o.RetryOnRateLimit,
		rpc:        client,
		log:        log.With("endpoint", endpoint),
	}
}

func (c *Conn) Endpoint() string               { return c.endpoint }
func (c *Conn) Commitment() rpc.CommitmentType { return c.commitment }
func (c *Conn) Timeout() time.Duration         { return c.timeout }
func (c *Conn) RetryOnRateLimit() bool         { return c.retry429 }
func (c *Conn) RPC() *rpc.Client               { return c.rpc }

// ConnCache memoizes one Conn per endpoint string. It is owned by whoever
// builds the panels and passed to them; there is no package-level instance.
type ConnCache struct {
	mu    sync.Mutex
	conns map[string]*Conn
	opts  ConnOptions
	log   *zap.SugaredLogger
}

func NewConnCache(o ConnOptions, log *zap.SugaredLogger) *ConnCache {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ConnCache{
		conns: make(map[string]*Conn),
		opts:  o,
		log:   log,
	}
}

func (cc *ConnCache) Get(endpoint string) *Conn {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if c, ok := cc.conns[endpoint]; ok {
		return c
	}
	c := NewConn(endpoint, cc.opts, cc.log)
	cc.conns[endpoint] = c
	return c
}

// Evict drops the handle for endpoint so the next Get builds a fresh one.
func (cc *ConnCache) Evict(endpoint string) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	c, ok := cc.conns[endpoint]
	if !ok {
		return false
	}
	delete(cc.conns, endpoint)
	c.log.Debugw("connection evicted")
	return true
}

func (cc *ConnCache) Len() int {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return len(cc.conns)
}

// Dialer hands out a Chain per endpoint. *ConnCache is the production one.
type Dialer interface {
	Chain(endpoint string) Chain
	Evict(endpoint string) bool
}

func (cc *ConnCache) Chain(endpoint string) Chain {
	return cc.Get(endpoint)
}
