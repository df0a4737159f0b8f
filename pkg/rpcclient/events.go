package rpcclient

import (
	"context"

	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// GetBlockEvents returns decoded System.Events of the given block. Blocks
// are immutable, so results are cached by hash.
func (c *WSClient) GetBlockEvents(ctx context.Context, hash util.Uint256) ([]result.Event, error) {
	if v, ok := c.events.Get(hash); ok {
		return v.([]result.Event), nil
	}
	md, err := c.Metadata()
	if err != nil {
		return nil, err
	}
	entry, err := md.StorageEntry("System", "Events")
	if err != nil {
		return nil, err
	}
	key, err := md.StorageKey("System", "Events")
	if err != nil {
		return nil, err
	}
	raw, err := c.GetStorage(ctx, key, &hash)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = entry.Default
	}
	events, err := result.DecodeEvents(md, raw)
	if err != nil {
		return nil, err
	}
	c.events.Add(hash, events)
	return events, nil
}
