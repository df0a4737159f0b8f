package result

import (
	"fmt"

	"github.com/vne-network/priceoracle-go/pkg/core/metadata"
	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/scale"
)

// DispatchErrorKind is the sp_runtime::DispatchError variant index.
type DispatchErrorKind byte

// Dispatch error kinds.
const (
	Other DispatchErrorKind = iota
	CannotLookup
	BadOrigin
	Module
	ConsumerRemaining
	NoProviders
	TooManyConsumers
	Token
	Arithmetic
	Transactional
	Exhausted
	Corruption
	Unavailable
	RootNotAllowed
)

var dispatchErrorNames = []string{"Other", "CannotLookup", "BadOrigin", "Module", "ConsumerRemaining",
	"NoProviders", "TooManyConsumers", "Token", "Arithmetic", "Transactional", "Exhausted",
	"Corruption", "Unavailable", "RootNotAllowed"}

var (
	tokenErrors = []string{"FundsUnavailable", "OnlyProvider", "BelowMinimum", "CannotCreate",
		"UnknownAsset", "Frozen", "Unsupported", "CannotCreateHold", "NotExpendable", "Blocked"}
	arithmeticErrors    = []string{"Underflow", "Overflow", "DivisionByZero"}
	transactionalErrors = []string{"LimitReached", "NoLayer"}
)

// String implements the fmt.Stringer interface.
func (k DispatchErrorKind) String() string {
	if int(k) < len(dispatchErrorNames) {
		return dispatchErrorNames[k]
	}
	return fmt.Sprintf("DispatchError(%d)", byte(k))
}

// DispatchError is a runtime dispatch error.
type DispatchError struct {
	Kind DispatchErrorKind
	// Index and Error identify the pallet error for Module errors.
	Index uint8
	Error [4]byte
	// Detail is the inner error index for Token, Arithmetic and
	// Transactional errors.
	Detail uint8
	// Name is the resolved "Pallet::Error" name of Module errors (if
	// resolved) or the inner error name for other kinds.
	Name string
	Docs []string
}

// String implements the fmt.Stringer interface.
func (e *DispatchError) String() string {
	switch e.Kind {
	case Module:
		if e.Name != "" {
			return e.Name
		}
		return fmt.Sprintf("Module(%d, 0x%x)", e.Index, e.Error)
	case Token, Arithmetic, Transactional:
		if e.Name != "" {
			return fmt.Sprintf("%s::%s", e.Kind, e.Name)
		}
		return fmt.Sprintf("%s(%d)", e.Kind, e.Detail)
	}
	return e.Kind.String()
}

// Resolve fills Name and Docs of Module errors from metadata.
func (e *DispatchError) Resolve(md *metadata.Metadata) {
	if e.Kind != Module || md == nil {
		return
	}
	me, err := md.ModuleError(e.Index, e.Error)
	if err != nil {
		return
	}
	e.Name = me.String()
	e.Docs = me.Docs
}

// DecodeBinary implements the io.Decodable interface.
func (e *DispatchError) DecodeBinary(r *io.BinReader) {
	e.Kind = DispatchErrorKind(r.ReadB())
	if r.Err != nil {
		return
	}
	switch e.Kind {
	case Module:
		e.Index = r.ReadB()
		r.ReadBytes(e.Error[:])
	case Token, Arithmetic, Transactional:
		e.Detail = r.ReadB()
		e.Name = detailName(e.Kind, e.Detail)
	default:
		if e.Kind > RootNotAllowed {
			r.Err = errUnknownVariant("DispatchError", byte(e.Kind))
		}
	}
}

// EncodeBinary implements the io.Encodable interface.
func (e *DispatchError) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(e.Kind))
	switch e.Kind {
	case Module:
		w.WriteB(e.Index)
		w.WriteBytes(e.Error[:])
	case Token, Arithmetic, Transactional:
		w.WriteB(e.Detail)
	}
}

// DispatchErrorFromValue converts a DispatchError decoded via the registry
// (like the dispatch_error field of System.ExtrinsicFailed).
func DispatchErrorFromValue(v any) (*DispatchError, error) {
	vr, ok := v.(*scale.Variant)
	if !ok {
		return nil, fmt.Errorf("dispatch error: unexpected %T", v)
	}
	e := &DispatchError{Kind: DispatchErrorKind(vr.Index)}
	switch e.Kind {
	case Module:
		mod, ok := vr.Value().(*scale.Composite)
		if !ok {
			return nil, fmt.Errorf("module error: unexpected %T", vr.Value())
		}
		idx, _ := mod.Get("index")
		errv, _ := mod.Get("error")
		i, ok := idx.(uint8)
		if !ok {
			return nil, fmt.Errorf("module error index: unexpected %T", idx)
		}
		e.Index = i
		switch b := errv.(type) {
		case []byte:
			copy(e.Error[:], b)
		case uint8:
			e.Error[0] = b
		default:
			return nil, fmt.Errorf("module error: unexpected %T", errv)
		}
	case Token, Arithmetic, Transactional:
		inner, ok := vr.Value().(*scale.Variant)
		if !ok {
			return nil, fmt.Errorf("%s error: unexpected %T", e.Kind, vr.Value())
		}
		e.Detail = inner.Index
		e.Name = inner.Name
	}
	return e, nil
}

func detailName(k DispatchErrorKind, d uint8) string {
	var names []string
	switch k {
	case Token:
		names = tokenErrors
	case Arithmetic:
		names = arithmeticErrors
	case Transactional:
		names = transactionalErrors
	}
	if int(d) < len(names) {
		return names[d]
	}
	return ""
}

func errUnknownVariant(typ string, idx byte) error {
	return &scale.UnknownVariantError{Type: typ, Index: int(idx)}
}
