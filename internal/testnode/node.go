// Package testnode implements a scripted websocket JSON-RPC node for client
// tests.
package testnode

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/vne-network/priceoracle-go/internal/testchain"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

type (
	// Node is a test node serving JSON-RPC over websocket.
	Node struct {
		t   testing.TB
		srv *httptest.Server

		lock     sync.Mutex
		handlers map[string]Handler
		calls    []*Call
		conns    []*websocket.Conn
	}

	// Call is a single request received by the node.
	Call struct {
		Method string
		Params []json.RawMessage

		early         []chainrpc.Notification
		notifications []chainrpc.Notification
	}

	// Handler produces a result for the call, returning *chainrpc.Error
	// makes the node reply with this error.
	Handler func(c *Call) (any, error)
)

// New starts a node answering the requests Init makes with the test chain
// data. It's stopped on test cleanup.
func New(t testing.TB) *Node {
	n := &Node{
		t:        t,
		handlers: make(map[string]Handler),
	}
	n.Handle(chainrpc.ChainGetBlockHash, func(c *Call) (any, error) {
		return testchain.GenesisHash(), nil
	})
	n.Handle(chainrpc.SystemChain, func(c *Call) (any, error) {
		return testchain.ChainName, nil
	})
	n.Handle(chainrpc.StateGetRuntimeVersion, func(c *Call) (any, error) {
		return &result.RuntimeVersion{
			SpecName:           "priceoracle-node",
			ImplName:           "priceoracle-node",
			SpecVersion:        testchain.SpecVersion,
			TransactionVersion: testchain.TransactionVersion,
			StateVersion:       1,
		}, nil
	})
	n.Handle(chainrpc.StateGetMetadata, func(c *Call) (any, error) {
		return testchain.MetadataHex(), nil
	})
	n.Handle(chainrpc.AuthorUnwatchExtrinsic, func(c *Call) (any, error) {
		return true, nil
	})
	n.srv = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.srv.Close)
	return n
}

// URL returns the websocket endpoint of the node.
func (n *Node) URL() string {
	return "ws" + strings.TrimPrefix(n.srv.URL, "http") + "/ws"
}

// Handle sets the handler for the method replacing the previous one.
func (n *Node) Handle(method string, h Handler) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.handlers[method] = h
}

// Calls returns the requests received for the method.
func (n *Node) Calls(method string) []*Call {
	n.lock.Lock()
	defer n.lock.Unlock()
	var res []*Call
	for _, c := range n.calls {
		if c.Method == method {
			res = append(res, c)
		}
	}
	return res
}

// Disconnect closes all client connections.
func (n *Node) Disconnect() {
	n.lock.Lock()
	defer n.lock.Unlock()
	for _, ws := range n.conns {
		_ = ws.Close()
	}
}

// Param unmarshals the i-th request parameter.
func (c *Call) Param(t testing.TB, i int, v any) {
	require.Less(t, i, len(c.Params))
	require.NoError(t, json.Unmarshal(c.Params[i], v))
}

// Notify queues a subscription notification sent right after the response
// to this call.
func (c *Call) Notify(method string, sub string, res any) {
	c.notifications = append(c.notifications, newNotification(method, sub, res))
}

// NotifyFirst queues a subscription notification sent before the response
// to this call.
func (c *Call) NotifyFirst(method string, sub string, res any) {
	c.early = append(c.early, newNotification(method, sub, res))
}

func newNotification(method string, sub string, res any) chainrpc.Notification {
	raw, err := json.Marshal(res)
	if err != nil {
		panic(err)
	}
	return chainrpc.Notification{
		JSONRPC: chainrpc.JSONRPCVersion,
		Method:  method,
		Params: chainrpc.NotificationParams{
			Subscription: chainrpc.SubscriptionID(sub),
			Result:       raw,
		},
	}
}

func (n *Node) serve(w http.ResponseWriter, req *http.Request) {
	var upgrader = websocket.Upgrader{}
	ws, err := upgrader.Upgrade(w, req, nil)
	require.NoError(n.t, err)
	n.lock.Lock()
	n.conns = append(n.conns, ws)
	n.lock.Unlock()
	defer ws.Close()
	for {
		_, p, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var r struct {
			ID     uint64            `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.Unmarshal(p, &r); err != nil {
			n.t.Errorf("cannot decode request: %s", p)
			return
		}
		call := &Call{Method: r.Method, Params: r.Params}
		n.lock.Lock()
		n.calls = append(n.calls, call)
		h, ok := n.handlers[r.Method]
		n.lock.Unlock()

		resp := map[string]any{
			"jsonrpc": chainrpc.JSONRPCVersion,
			"id":      r.ID,
		}
		var res any
		if !ok {
			err = chainrpc.NewError(chainrpc.MethodNotFoundCode, "Method not found")
		} else {
			res, err = h(call)
		}
		if err != nil {
			rpcErr, ok := err.(*chainrpc.Error)
			if !ok {
				rpcErr = chainrpc.NewError(chainrpc.InternalErrorCode, err.Error())
			}
			resp["error"] = rpcErr
		} else {
			resp["result"] = res
		}
		_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
		for _, note := range call.early {
			if err := ws.WriteJSON(note); err != nil {
				return
			}
		}
		if err := ws.WriteJSON(resp); err != nil {
			return
		}
		for _, note := range call.notifications {
			if err := ws.WriteJSON(note); err != nil {
				return
			}
		}
	}
}

// Include makes the node accept submitted extrinsics reporting the statuses
// for them, the last submitted extrinsic is put into the block at index 1
// and the events are served as the block events. Account nonces are always
// 3.
func (n *Node) Include(block util.Uint256, statuses []any, records ...map[string]any) {
	var (
		lock     sync.Mutex
		included result.HexBytes
	)
	n.Handle(chainrpc.SystemAccountNextIndex, func(c *Call) (any, error) {
		return 3, nil
	})
	n.Handle(chainrpc.AuthorSubmitAndWatch, func(c *Call) (any, error) {
		var raw result.HexBytes
		c.Param(n.t, 0, &raw)
		lock.Lock()
		included = raw
		lock.Unlock()
		for _, st := range statuses {
			c.Notify(chainrpc.AuthorExtrinsicUpdate, "sub1", st)
		}
		return "sub1", nil
	})
	n.Handle(chainrpc.ChainGetBlock, func(c *Call) (any, error) {
		var h util.Uint256
		c.Param(n.t, 0, &h)
		if !h.Equals(block) {
			return nil, nil
		}
		lock.Lock()
		defer lock.Unlock()
		return result.SignedBlock{Block: result.Block{
			Header:     result.Header{Number: 5},
			Extrinsics: []result.HexBytes{{0x01, 0x02}, included},
		}}, nil
	})
	n.Handle(chainrpc.StateGetStorage, func(c *Call) (any, error) {
		return result.HexBytes(testchain.EncodeEvents(records...)), nil
	})
}
