package actor

import (
	"errors"
	"fmt"

	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

var (
	// ErrUnexpectedStatus is returned when the node reports statuses
	// violating the extrinsic lifecycle.
	ErrUnexpectedStatus = errors.New("unexpected extrinsic status")
	// ErrSubscriptionLost is returned when status updates stop because the
	// connection to the node is lost or the client's status buffer overflows.
	ErrSubscriptionLost = errors.New("status subscription lost")
	// ErrInvalidMilestone is returned by Wait for milestones other than
	// InBlock and Finalized.
	ErrInvalidMilestone = errors.New("can only wait for inBlock or finalized")
	// ErrNotInBlock is returned when the block reported by the node doesn't
	// contain the extrinsic.
	ErrNotInBlock = errors.New("extrinsic is not in the block")
)

// TxInvalidError is returned when the extrinsic ends its lifecycle without
// being finalized (it's invalid, dropped, usurped or finality timed out).
type TxInvalidError struct {
	Hash   util.Uint256
	Status result.TxStatus
}

// Error implements the error interface.
func (e *TxInvalidError) Error() string {
	return fmt.Sprintf("extrinsic %s was not accepted: %s", e.Hash, e.Status)
}

// ExtrinsicFailedError is returned when the extrinsic is included in a block
// but its dispatch failed (System.ExtrinsicFailed event). The fee is still
// charged and the state is not changed.
type ExtrinsicFailedError struct {
	Receipt       *Receipt
	DispatchError *result.DispatchError
}

// Error implements the error interface.
func (e *ExtrinsicFailedError) Error() string {
	return fmt.Sprintf("extrinsic %s failed in block %s: %s", e.Receipt.TxHash, e.Receipt.BlockHash, e.DispatchError)
}
