package result

import (
	"encoding/json"
	"fmt"

	"github.com/vne-network/priceoracle-go/pkg/util"
)

// TxStatusKind is the kind of an extrinsic lifecycle status.
type TxStatusKind byte

// Extrinsic lifecycle statuses as reported by author_submitAndWatchExtrinsic.
const (
	Future TxStatusKind = iota
	Ready
	Broadcast
	InBlock
	Retracted
	FinalityTimeout
	Finalized
	Usurped
	Dropped
	Invalid
)

var txStatusNames = []string{"future", "ready", "broadcast", "inBlock", "retracted",
	"finalityTimeout", "finalized", "usurped", "dropped", "invalid"}

// String implements the fmt.Stringer interface.
func (k TxStatusKind) String() string {
	if int(k) < len(txStatusNames) {
		return txStatusNames[k]
	}
	return "unknown"
}

// Submitted is true for statuses of extrinsics that are in the pool but not
// yet in any block.
func (k TxStatusKind) Submitted() bool {
	return k <= Broadcast
}

// IsTerminal is true for statuses after which the node sends nothing else.
func (k TxStatusKind) IsTerminal() bool {
	switch k {
	case FinalityTimeout, Finalized, Usurped, Dropped, Invalid:
		return true
	}
	return false
}

// IsFailure is true for terminal statuses of extrinsics that never made it
// into a finalized block.
func (k TxStatusKind) IsFailure() bool {
	return k.IsTerminal() && k != Finalized
}

// TxStatus is a single lifecycle notification.
type TxStatus struct {
	Kind TxStatusKind
	// BlockHash is set for InBlock, Retracted, FinalityTimeout and Finalized.
	BlockHash util.Uint256
	// Usurper is the hash of the replacing extrinsic for Usurped.
	Usurper util.Uint256
	// Peers are set for Broadcast.
	Peers []string
}

// String implements the fmt.Stringer interface.
func (s TxStatus) String() string {
	switch s.Kind {
	case InBlock, Retracted, FinalityTimeout, Finalized:
		return fmt.Sprintf("%s(%s)", s.Kind, s.BlockHash.StringBE())
	case Usurped:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Usurper.StringBE())
	}
	return s.Kind.String()
}

// MarshalJSON implements the json.Marshaler interface.
func (s TxStatus) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case InBlock, Retracted, FinalityTimeout, Finalized:
		return json.Marshal(map[string]util.Uint256{s.Kind.String(): s.BlockHash})
	case Usurped:
		return json.Marshal(map[string]util.Uint256{s.Kind.String(): s.Usurper})
	case Broadcast:
		peers := s.Peers
		if peers == nil {
			peers = []string{}
		}
		return json.Marshal(map[string][]string{s.Kind.String(): peers})
	}
	return json.Marshal(s.Kind.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface. Statuses are
// either plain strings ("ready") or single-key objects ({"inBlock": "0x.."}).
func (s *TxStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		k, ok := txStatusKind(name)
		if !ok {
			return fmt.Errorf("unknown status %q", name)
		}
		switch k {
		case Future, Ready, Dropped, Invalid:
		default:
			return fmt.Errorf("status %q requires a value", name)
		}
		*s = TxStatus{Kind: k}
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid status: %w", err)
	}
	if len(obj) != 1 {
		return fmt.Errorf("invalid status: %d keys", len(obj))
	}
	for name, raw := range obj {
		k, ok := txStatusKind(name)
		if !ok {
			return fmt.Errorf("unknown status %q", name)
		}
		res := TxStatus{Kind: k}
		var err error
		switch k {
		case InBlock, Retracted, FinalityTimeout, Finalized:
			err = json.Unmarshal(raw, &res.BlockHash)
		case Usurped:
			err = json.Unmarshal(raw, &res.Usurper)
		case Broadcast:
			err = json.Unmarshal(raw, &res.Peers)
		default:
			err = fmt.Errorf("unexpected value")
		}
		if err != nil {
			return fmt.Errorf("status %q: %w", name, err)
		}
		*s = res
	}
	return nil
}

func txStatusKind(name string) (TxStatusKind, bool) {
	for i := range txStatusNames {
		if txStatusNames[i] == name {
			return TxStatusKind(i), true
		}
	}
	return 0, false
}
