package result

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/scale"
)

// ErrNoLimits is returned for calls without an explicit gas limit.
var ErrNoLimits = errors.New("gas limit is not set")

// Weight is a two-dimensional execution cost.
type Weight struct {
	RefTime   uint64 `json:"refTime" yaml:"ref_time"`
	ProofSize uint64 `json:"proofSize" yaml:"proof_size"`
}

// Limits are resource limits of a contract call.
type Limits struct {
	GasLimit Weight
	// StorageDepositLimit is nil for unlimited.
	StorageDepositLimit *uint256.Int
}

// IsZero returns true if both components are zero.
func (w Weight) IsZero() bool {
	return w.RefTime == 0 && w.ProofSize == 0
}

// String implements the fmt.Stringer interface.
func (w Weight) String() string {
	return fmt.Sprintf("{refTime: %d, proofSize: %d}", w.RefTime, w.ProofSize)
}

// ScaleValue implements the scale.Valuer interface. Weight v2 composites get
// both components, legacy single-number weights get RefTime.
func (w Weight) ScaleValue(t *scale.Type) (any, error) {
	if t.Kind == scale.KindComposite && len(t.Fields) == 2 {
		return map[string]any{"ref_time": w.RefTime, "proof_size": w.ProofSize}, nil
	}
	return w.RefTime, nil
}

// WeightFromValue converts a decoded Weight composite.
func WeightFromValue(v any) (Weight, error) {
	switch v := v.(type) {
	case uint64:
		return Weight{RefTime: v}, nil
	case *scale.Composite:
		var w Weight
		for _, f := range []struct {
			name string
			dst  *uint64
		}{{"ref_time", &w.RefTime}, {"proof_size", &w.ProofSize}} {
			fv, ok := v.Get(f.name)
			if !ok {
				return Weight{}, fmt.Errorf("weight: no %s", f.name)
			}
			n, ok := scale.Uint256(fv)
			if !ok || !n.IsUint64() {
				return Weight{}, fmt.Errorf("weight: invalid %s", f.name)
			}
			*f.dst = n.Uint64()
		}
		return w, nil
	}
	return Weight{}, fmt.Errorf("weight: unexpected %T", v)
}

// DecodeBinary implements the io.Serializable interface.
func (w *Weight) DecodeBinary(r *io.BinReader) {
	w.RefTime = r.ReadCompact()
	w.ProofSize = r.ReadCompact()
}

// EncodeBinary implements the io.Serializable interface.
func (w *Weight) EncodeBinary(bw *io.BinWriter) {
	bw.WriteCompact(w.RefTime)
	bw.WriteCompact(w.ProofSize)
}

// Validate checks that limits are set explicitly.
func (l Limits) Validate() error {
	if l.GasLimit.RefTime == 0 || l.GasLimit.ProofSize == 0 {
		return fmt.Errorf("%w: %s", ErrNoLimits, l.GasLimit)
	}
	return nil
}

// String implements the fmt.Stringer interface.
func (l Limits) String() string {
	sdl := "unlimited"
	if l.StorageDepositLimit != nil {
		sdl = l.StorageDepositLimit.ToBig().String()
	}
	return fmt.Sprintf("gas %s, storage deposit %s", l.GasLimit, sdl)
}

// ScaleDepositLimit returns the storage deposit limit as an optional
// value, nil meaning None.
func (l Limits) ScaleDepositLimit() any {
	if l.StorageDepositLimit == nil {
		return nil
	}
	return l.StorageDepositLimit
}

// ParseBalance parses a decimal u128 balance, underscores may be used as
// digit separators.
func ParseBalance(s string) (*uint256.Int, error) {
	b, ok := new(big.Int).SetString(strings.ReplaceAll(s, "_", ""), 10)
	if !ok || b.Sign() < 0 {
		return nil, fmt.Errorf("invalid balance %q", s)
	}
	u, overflow := uint256.FromBig(b)
	if overflow || u.BitLen() > 128 {
		return nil, fmt.Errorf("balance %q overflows u128", s)
	}
	return u, nil
}
