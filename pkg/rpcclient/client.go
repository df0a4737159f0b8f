package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/core/metadata"
	"github.com/vne-network/priceoracle-go/pkg/util"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout    = 4 * time.Second
	defaultRequestTimeout = 4 * time.Second

	// Message limit for receiving side, metadata responses are big.
	wsReadLimit = 32 * 1024 * 1024

	// Disconnection timeout.
	wsPongLimit = 60 * time.Second

	// Ping period for connection liveness check.
	wsPingPeriod = wsPongLimit / 2

	// Write deadline.
	wsWriteLimit = wsPingPeriod / 2

	// Number of blocks with decoded events kept in memory.
	eventsCacheSize = 64

	// Number of not yet registered subscriptions with early statuses kept
	// and the number of statuses kept for each of them.
	earlySubscriptionsLimit = 16
	earlyStatusesLimit      = 16
)

// WSClient is a websocket JSON-RPC client for Substrate nodes. It keeps a
// persistent connection and supports extrinsic status subscriptions. Every
// blocking method accepts a context, RequestTimeout is applied on top of it.
// WSClient is thread-safe.
type WSClient struct {
	endpoint *url.URL
	opts     Options
	log      *zap.Logger

	ws       *websocket.Conn
	done     chan struct{}
	requests chan *chainrpc.Request
	shutdown chan struct{}
	closeErr atomic.Error
	once     sync.Once

	respLock     sync.Mutex
	respChannels map[uint64]chan *chainrpc.Response

	subscriptionsLock sync.Mutex
	subscriptions     map[string]*subscriber
	// early keeps statuses received before the subscription is registered,
	// the node may send them ahead of the submission response.
	early *lru.Cache

	cacheLock sync.RWMutex
	// cache stores node related information the client is bound to, it's
	// filled in by Init.
	cache cache

	events *lru.Cache

	latestReqID *atomic.Uint64
	// getNextRequestID returns an ID to be used for the subsequent request
	// creation. It's a field to allow tests to override it.
	getNextRequestID func() uint64
}

// Options defines options for the RPC client. All values are optional, if
// any duration is not specified, a default of 4 seconds is used.
type Options struct {
	DialTimeout    time.Duration
	RequestTimeout time.Duration
	// Logger is used for connection-level events, nothing is logged if nil.
	Logger *zap.Logger
}

// subscriber is a registered status receiver. It's closed on overflow, but
// stays registered until unwatched.
type subscriber struct {
	rcvr   chan<- result.TxStatus
	closed bool
}

type cache struct {
	initDone    bool
	genesisHash util.Uint256
	chain       string
	version     result.RuntimeVersion
	metadata    *metadata.Metadata
}

// requestResponse is a combined type for responses and notifications since
// we can get any of them here.
type requestResponse struct {
	chainrpc.Response
	Method string                       `json:"method,omitempty"`
	Params *chainrpc.NotificationParams `json:"params,omitempty"`
}

// NewWS returns a new WSClient ready to use (with established websocket
// connection). The endpoint must be a ws:// or wss:// URL. Any failure is
// returned as *ConnectionError, the client never redials.
func NewWS(ctx context.Context, endpoint string, opts Options) (*WSClient, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, &ConnectionError{Endpoint: endpoint, Err: err}
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, &ConnectionError{Endpoint: endpoint, Err: fmt.Errorf("%w: %q scheme", ErrInvalidEndpoint, u.Scheme)}
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	dialer := websocket.Dialer{HandshakeTimeout: opts.DialTimeout}
	dialCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	ws, resp, err := dialer.DialContext(dialCtx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, &ConnectionError{Endpoint: endpoint, Err: err}
	}
	// Never errors for positive size.
	events, _ := lru.New(eventsCacheSize)
	early, _ := lru.New(earlySubscriptionsLimit)
	c := &WSClient{
		endpoint:      u,
		opts:          opts,
		log:           opts.Logger.With(zap.String("endpoint", u.Redacted())),
		ws:            ws,
		done:          make(chan struct{}),
		requests:      make(chan *chainrpc.Request),
		shutdown:      make(chan struct{}),
		respChannels:  make(map[uint64]chan *chainrpc.Response),
		subscriptions: make(map[string]*subscriber),
		early:         early,
		events:        events,
		latestReqID:   atomic.NewUint64(0),
	}
	c.getNextRequestID = c.getRequestID
	go c.wsReader()
	go c.wsWriter()
	c.log.Debug("connected")
	return c, nil
}

func (c *WSClient) getRequestID() uint64 {
	return c.latestReqID.Inc()
}

// Endpoint returns the URL the client is connected to.
func (c *WSClient) Endpoint() string {
	return c.endpoint.String()
}

// Close closes connection to the remote side rendering this client instance
// unusable. It's safe to call it multiple times.
func (c *WSClient) Close() {
	c.once.Do(func() {
		// Closing shutdown channel makes wsWriter close the connection which
		// in turn makes wsReader exit closing c.done.
		close(c.shutdown)
	})
	<-c.done
}

// GetError returns the reason of the connection loss, nil if the connection
// is alive or was closed by Close.
func (c *WSClient) GetError() error {
	select {
	case <-c.done:
		return c.closeErr.Load()
	default:
		return nil
	}
}

func (c *WSClient) wsReader() {
	c.ws.SetReadLimit(wsReadLimit)
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(wsPongLimit))
	})
	var connErr error
readloop:
	for {
		rr := new(requestResponse)
		err := c.ws.SetReadDeadline(time.Now().Add(wsPongLimit))
		if err == nil {
			err = c.ws.ReadJSON(rr)
		}
		if err != nil {
			// Timeout/connection loss/malformed response.
			select {
			case <-c.shutdown:
			default:
				connErr = fmt.Errorf("failed to read JSON response (timeout/connection loss/malformed response): %w", err)
			}
			break readloop
		}
		switch {
		case rr.ID == nil && rr.Method != "":
			if rr.Params == nil {
				connErr = fmt.Errorf("notification %s without params", rr.Method)
				break readloop
			}
			c.notify(rr.Method, rr.Params)
		case rr.ID != nil:
			var id uint64
			if err := json.Unmarshal(rr.ID, &id); err != nil {
				connErr = fmt.Errorf("failed to retrieve response ID from %s: %w", rr.ID, err)
				break readloop
			}
			c.respLock.Lock()
			ch, ok := c.respChannels[id]
			c.respLock.Unlock()
			if !ok {
				c.log.Debug("response for unknown request", zap.Uint64("id", id))
				continue
			}
			ch <- &rr.Response // Buffered, one response per request.
		default:
			connErr = errors.New("unknown message, neither a response nor a notification")
			break readloop
		}
	}
	if connErr != nil {
		c.closeErr.Store(fmt.Errorf("%w: %v", ErrConnectionLost, connErr))
		c.log.Warn("connection lost", zap.Error(connErr))
	}
	close(c.done)
	c.subscriptionsLock.Lock()
	for id, sub := range c.subscriptions {
		if !sub.closed {
			close(sub.rcvr)
		}
		delete(c.subscriptions, id)
		activeSubscriptions.Dec()
	}
	c.subscriptionsLock.Unlock()
}

func (c *WSClient) notify(method string, p *chainrpc.NotificationParams) {
	if method != chainrpc.AuthorExtrinsicUpdate {
		c.log.Debug("unexpected notification", zap.String("method", method))
		return
	}
	var st result.TxStatus
	if err := json.Unmarshal(p.Result, &st); err != nil {
		c.log.Warn("bad extrinsic status", zap.String("subscription", string(p.Subscription)), zap.Error(err))
		return
	}
	id := string(p.Subscription)
	c.subscriptionsLock.Lock()
	defer c.subscriptionsLock.Unlock()
	sub, ok := c.subscriptions[id]
	if !ok {
		c.keepEarly(id, st)
		return
	}
	c.deliver(id, sub, st)
}

// keepEarly stores the status of a subscription that is not registered yet.
// It must be called with subscriptionsLock held.
func (c *WSClient) keepEarly(id string, st result.TxStatus) {
	var statuses []result.TxStatus
	if v, ok := c.early.Get(id); ok {
		statuses = v.([]result.TxStatus)
	}
	if len(statuses) >= earlyStatusesLimit {
		c.log.Debug("too many statuses for unknown subscription", zap.String("subscription", id))
		return
	}
	c.early.Add(id, append(statuses, st))
}

// deliver sends the status to the subscriber closing it if its receiver is
// full. It must be called with subscriptionsLock held.
func (c *WSClient) deliver(id string, sub *subscriber, st result.TxStatus) bool {
	if sub.closed {
		return false
	}
	select {
	case sub.rcvr <- st:
		return true
	default:
		c.log.Warn("status receiver is full, closing subscription",
			zap.String("subscription", id),
			zap.Stringer("status", st))
		close(sub.rcvr)
		sub.closed = true
		return false
	}
}

func (c *WSClient) wsWriter() {
	pingTicker := time.NewTicker(wsPingPeriod)
	defer c.ws.Close()
	defer pingTicker.Stop()
	for {
		select {
		case <-c.shutdown:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteLimit))
			return
		case <-c.done:
			return
		case req := <-c.requests:
			if err := c.ws.SetWriteDeadline(time.Now().Add(c.opts.RequestTimeout)); err != nil {
				return
			}
			if err := c.ws.WriteJSON(req); err != nil {
				c.log.Debug("failed to write request", zap.String("method", req.Method), zap.Error(err))
				return
			}
		case <-pingTicker.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				return
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) connLost() error {
	if err := c.closeErr.Load(); err != nil {
		return err
	}
	return ErrConnectionLost
}

func (c *WSClient) makeWsRequest(ctx context.Context, r *chainrpc.Request) (*chainrpc.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := make(chan *chainrpc.Response, 1)
	c.respLock.Lock()
	select {
	case <-c.done:
		c.respLock.Unlock()
		return nil, c.connLost()
	default:
	}
	c.respChannels[r.ID] = ch
	c.respLock.Unlock()
	defer func() {
		c.respLock.Lock()
		delete(c.respChannels, r.ID)
		c.respLock.Unlock()
	}()

	select {
	case <-c.done:
		return nil, c.connLost()
	case <-ctx.Done():
		return nil, ctx.Err()
	case c.requests <- r:
	}
	select {
	case <-c.done:
		return nil, c.connLost()
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-ch:
		return resp, nil
	}
}

// performRequest sends the request and unmarshals its result into v.
func (c *WSClient) performRequest(ctx context.Context, method string, p []any, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	r := chainrpc.NewRequest(c.getNextRequestID(), method, p...)
	start := time.Now()
	raw, err := c.makeWsRequest(ctx, r)
	addReqTimeMetric(method, time.Since(start))

	if raw != nil && raw.Error != nil {
		return raw.Error
	} else if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	} else if raw == nil || raw.Result == nil {
		return fmt.Errorf("%s: %w", method, ErrNoResult)
	}
	if err := json.Unmarshal(raw.Result, v); err != nil {
		return fmt.Errorf("%s: invalid result: %w", method, err)
	}
	return nil
}

// Init fetches the genesis hash, the chain name, the runtime version and the
// runtime metadata and caches them. It must be called before any method
// that needs metadata (contract calls, events, transactions).
func (c *WSClient) Init(ctx context.Context) error {
	genesis, err := c.GetBlockHash(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get genesis hash: %w", err)
	}
	chain, err := c.SystemChain(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain name: %w", err)
	}
	version, err := c.GetRuntimeVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get runtime version: %w", err)
	}
	md, err := c.GetMetadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to get metadata: %w", err)
	}

	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	c.cache = cache{
		initDone:    true,
		genesisHash: genesis,
		chain:       chain,
		version:     *version,
		metadata:    md,
	}
	c.log.Info("connected to chain",
		zap.String("chain", chain),
		zap.String("runtime", version.SpecName),
		zap.Uint32("spec_version", version.SpecVersion),
		zap.Stringer("genesis", genesis))
	return nil
}

// GenesisHash returns the cached genesis block hash.
func (c *WSClient) GenesisHash() (util.Uint256, error) {
	c.cacheLock.RLock()
	defer c.cacheLock.RUnlock()

	if !c.cache.initDone {
		return util.Uint256{}, ErrNotInitialized
	}
	return c.cache.genesisHash, nil
}

// Chain returns the cached chain name.
func (c *WSClient) Chain() (string, error) {
	c.cacheLock.RLock()
	defer c.cacheLock.RUnlock()

	if !c.cache.initDone {
		return "", ErrNotInitialized
	}
	return c.cache.chain, nil
}

// RuntimeVersion returns the cached runtime version.
func (c *WSClient) RuntimeVersion() (*result.RuntimeVersion, error) {
	c.cacheLock.RLock()
	defer c.cacheLock.RUnlock()

	if !c.cache.initDone {
		return nil, ErrNotInitialized
	}
	v := c.cache.version
	return &v, nil
}

// Metadata returns the cached runtime metadata.
func (c *WSClient) Metadata() (*metadata.Metadata, error) {
	c.cacheLock.RLock()
	defer c.cacheLock.RUnlock()

	if !c.cache.initDone {
		return nil, ErrNotInitialized
	}
	return c.cache.metadata, nil
}
