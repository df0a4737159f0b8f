package rpcclient

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/vne-network/priceoracle-go/pkg/chainrpc"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/core/metadata"
	"github.com/vne-network/priceoracle-go/pkg/core/transaction"
	"github.com/vne-network/priceoracle-go/pkg/encoding/address"
	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/util"
	"go.uber.org/zap"
)

func hexParam(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// GetBlockHash returns the hash of the block with the given number.
func (c *WSClient) GetBlockHash(ctx context.Context, number uint32) (util.Uint256, error) {
	var resp *util.Uint256
	if err := c.performRequest(ctx, chainrpc.ChainGetBlockHash, []any{number}, &resp); err != nil {
		return util.Uint256{}, err
	}
	if resp == nil {
		return util.Uint256{}, fmt.Errorf("block %d: %w", number, ErrNotFound)
	}
	return *resp, nil
}

// GetBlock returns the block with the given hash.
func (c *WSClient) GetBlock(ctx context.Context, hash util.Uint256) (*result.Block, error) {
	var resp *result.SignedBlock
	if err := c.performRequest(ctx, chainrpc.ChainGetBlock, []any{hash}, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("block %s: %w", hash, ErrNotFound)
	}
	return &resp.Block, nil
}

// GetRuntimeVersion returns the current runtime version.
func (c *WSClient) GetRuntimeVersion(ctx context.Context) (*result.RuntimeVersion, error) {
	var resp = new(result.RuntimeVersion)
	if err := c.performRequest(ctx, chainrpc.StateGetRuntimeVersion, nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetMetadata fetches and decodes the current runtime metadata. Use Metadata
// to get the cached one.
func (c *WSClient) GetMetadata(ctx context.Context) (*metadata.Metadata, error) {
	var resp result.HexBytes
	if err := c.performRequest(ctx, chainrpc.StateGetMetadata, nil, &resp); err != nil {
		return nil, err
	}
	return metadata.Decode(resp)
}

// GetStorage returns the raw storage value for the given key at the given
// block (best block if nil). Missing values are returned as nil without an
// error.
func (c *WSClient) GetStorage(ctx context.Context, key []byte, at *util.Uint256) ([]byte, error) {
	var (
		params = []any{hexParam(key)}
		resp   *result.HexBytes
	)
	if at != nil {
		params = append(params, *at)
	}
	if err := c.performRequest(ctx, chainrpc.StateGetStorage, params, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return *resp, nil
}

// StateCall calls a runtime API function with SCALE-encoded arguments at the
// given block (best block if nil) and returns its encoded result.
func (c *WSClient) StateCall(ctx context.Context, method string, data []byte, at *util.Uint256) ([]byte, error) {
	var (
		params = []any{method, hexParam(data)}
		resp   result.HexBytes
	)
	if at != nil {
		params = append(params, *at)
	}
	if err := c.performRequest(ctx, chainrpc.StateCall, params, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ContractCall performs a dry run of a contract call at the best block. It
// doesn't change the chain state and doesn't need a signature. Dispatch
// errors are resolved against metadata if the client is initialized.
func (c *WSClient) ContractCall(ctx context.Context, req *result.CallRequest) (*result.Invoke, error) {
	data, err := io.ToBytes(req)
	if err != nil {
		return nil, err
	}
	raw, err := c.StateCall(ctx, chainrpc.ContractsAPICall, data, nil)
	if err != nil {
		return nil, err
	}
	res, err := result.DecodeInvoke(raw)
	if err != nil {
		return nil, err
	}
	c.resolve(res.DispatchError)
	return res, nil
}

// ContractInstantiate performs a dry run of a contract instantiation which
// returns the address the contract would get.
func (c *WSClient) ContractInstantiate(ctx context.Context, req *result.InstantiateRequest) (*result.Instantiate, error) {
	data, err := io.ToBytes(req)
	if err != nil {
		return nil, err
	}
	raw, err := c.StateCall(ctx, chainrpc.ContractsAPIInstantiate, data, nil)
	if err != nil {
		return nil, err
	}
	res, err := result.DecodeInstantiate(raw)
	if err != nil {
		return nil, err
	}
	c.resolve(res.DispatchError)
	return res, nil
}

func (c *WSClient) resolve(e *result.DispatchError) {
	if e == nil {
		return
	}
	if md, err := c.Metadata(); err == nil {
		e.Resolve(md)
	}
}

// AccountNextIndex returns the next nonce of the account including
// transactions in the pool.
func (c *WSClient) AccountNextIndex(ctx context.Context, acc util.Uint160) (uint64, error) {
	var resp uint64
	if err := c.performRequest(ctx, chainrpc.SystemAccountNextIndex, []any{address.Uint160ToString(acc)}, &resp); err != nil {
		return 0, err
	}
	return resp, nil
}

// SystemChain returns the chain name.
func (c *WSClient) SystemChain(ctx context.Context) (string, error) {
	var resp string
	if err := c.performRequest(ctx, chainrpc.SystemChain, nil, &resp); err != nil {
		return "", err
	}
	return resp, nil
}

// SubmitAndWatchExtrinsic submits the extrinsic and subscribes to its status
// updates delivered to rcvr. The channel must be buffered, if an update
// doesn't fit, the channel is closed and no more updates are delivered. It's
// also closed when the connection is lost, UnwatchExtrinsic stops delivery
// without closing it. The returned ID is used to unwatch, it's needed even
// after the overflow.
func (c *WSClient) SubmitAndWatchExtrinsic(ctx context.Context, tx *transaction.Extrinsic, rcvr chan<- result.TxStatus) (string, error) {
	var id chainrpc.SubscriptionID

	if err := c.performRequest(ctx, chainrpc.AuthorSubmitAndWatch, []any{tx.Hex()}, &id); err != nil {
		return "", err
	}

	c.subscriptionsLock.Lock()
	defer c.subscriptionsLock.Unlock()
	select {
	case <-c.done:
		// Too late to be closed by the reader.
		return "", c.connLost()
	default:
	}
	sub := &subscriber{rcvr: rcvr}
	c.subscriptions[string(id)] = sub
	activeSubscriptions.Inc()
	if v, ok := c.early.Get(string(id)); ok {
		c.early.Remove(string(id))
		for _, st := range v.([]result.TxStatus) {
			if !c.deliver(string(id), sub, st) {
				break
			}
		}
	}
	c.log.Debug("extrinsic submitted",
		zap.Stringer("hash", tx.Hash()),
		zap.String("subscription", string(id)))
	return string(id), nil
}

// UnwatchExtrinsic cancels the subscription, no more updates are delivered
// to its receiver after this call.
func (c *WSClient) UnwatchExtrinsic(ctx context.Context, id string) error {
	c.subscriptionsLock.Lock()
	_, ok := c.subscriptions[id]
	if ok {
		delete(c.subscriptions, id)
		activeSubscriptions.Dec()
	}
	c.subscriptionsLock.Unlock()
	if !ok {
		return fmt.Errorf("subscription %s: %w", id, ErrNotFound)
	}

	var resp bool
	if err := c.performRequest(ctx, chainrpc.AuthorUnwatchExtrinsic, []any{id}, &resp); err != nil {
		return err
	}
	if !resp {
		c.log.Debug("node doesn't know subscription", zap.String("subscription", id))
	}
	return nil
}
