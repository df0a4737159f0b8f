package actor

import (
	"context"
	"fmt"

	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/core/metadata"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// RPCWaiter is a set of RPC methods needed to collect extrinsic results.
type RPCWaiter interface {
	Metadata() (*metadata.Metadata, error)
	GetBlock(ctx context.Context, hash util.Uint256) (*result.Block, error)
	GetBlockEvents(ctx context.Context, hash util.Uint256) ([]result.Event, error)
}

// Receipt is the result of an extrinsic included in a block.
type Receipt struct {
	TxHash util.Uint256
	// Status is the milestone status (InBlock or Finalized).
	Status    result.TxStatus
	BlockHash util.Uint256
	// Index is the position of the extrinsic in the block.
	Index  int
	Events []result.Event
}

// Waiter waits for submitted extrinsics to reach a milestone.
type Waiter struct {
	client RPCWaiter
	// Hook is called for every status received while waiting.
	Hook func(result.TxStatus)
}

// NewWaiter creates a Waiter.
func NewWaiter(client RPCWaiter) *Waiter {
	return &Waiter{client: client}
}

// Wait consumes subscription statuses until the extrinsic reaches the
// milestone (result.InBlock or result.Finalized, the latter also satisfies
// InBlock), then closes the subscription, fetches the block and returns the
// receipt with the extrinsic's events. Lifecycle failures are returned as
// *TxInvalidError, a failed dispatch as *ExtrinsicFailedError along with
// the receipt.
func (w *Waiter) Wait(ctx context.Context, sub *Subscription, milestone result.TxStatusKind) (*Receipt, error) {
	if milestone != result.InBlock && milestone != result.Finalized {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMilestone, milestone)
	}
	defer sub.Close()

	var st result.TxStatus
loop:
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case s, ok := <-sub.Statuses():
			if !ok {
				if err := sub.Err(); err != nil {
					return nil, err
				}
				return nil, ErrSubscriptionLost
			}
			if w.Hook != nil {
				w.Hook(s)
			}
			if s.Kind.IsFailure() {
				return nil, &TxInvalidError{Hash: sub.TxHash, Status: s}
			}
			if s.Kind == result.Finalized || s.Kind == milestone {
				st = s
				break loop
			}
		}
	}
	sub.Close()
	return w.receipt(ctx, sub.TxHash, st)
}

func (w *Waiter) receipt(ctx context.Context, h util.Uint256, st result.TxStatus) (*Receipt, error) {
	block, err := w.client.GetBlock(ctx, st.BlockHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get block %s: %w", st.BlockHash, err)
	}
	idx, ok := block.ExtrinsicIndex(h)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotInBlock, h, st.BlockHash)
	}
	events, err := w.client.GetBlockEvents(ctx, st.BlockHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get events of %s: %w", st.BlockHash, err)
	}
	r := &Receipt{
		TxHash:    h,
		Status:    st,
		BlockHash: st.BlockHash,
		Index:     idx,
		Events:    result.ExtrinsicEvents(events, idx),
	}
	for i := range r.Events {
		if !r.Events[i].Is("System", "ExtrinsicFailed") {
			continue
		}
		v, _ := r.Events[i].Field("dispatch_error")
		de, err := result.DispatchErrorFromValue(v)
		if err != nil {
			return r, fmt.Errorf("extrinsic %s failed: %w", h, err)
		}
		if md, err := w.client.Metadata(); err == nil {
			de.Resolve(md)
		}
		return r, &ExtrinsicFailedError{Receipt: r, DispatchError: de}
	}
	return r, nil
}

// Find returns receipt events of the given pallet and method.
func (r *Receipt) Find(pallet, method string) []result.Event {
	var res []result.Event
	for _, ev := range r.Events {
		if ev.Is(pallet, method) {
			res = append(res, ev)
		}
	}
	return res
}
