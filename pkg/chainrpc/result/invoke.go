package result

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// FlagRevert is the ExecReturnValue flag set when the contract reverted its
// state changes.
const FlagRevert uint32 = 1

type (
	// StorageDeposit is the storage deposit charged or refunded by a call.
	StorageDeposit struct {
		Charge bool
		Amount *uint256.Int
	}

	// Invoke is the result of a dry-run contract call (ContractsApi_call).
	// Exactly one of DispatchError and (Flags, Data) is meaningful.
	Invoke struct {
		GasConsumed    Weight
		GasRequired    Weight
		StorageDeposit StorageDeposit
		DebugMessage   string
		Flags          uint32
		Data           []byte
		DispatchError  *DispatchError
	}

	// Instantiate is the result of a dry-run contract instantiation
	// (ContractsApi_instantiate).
	Instantiate struct {
		Invoke
		Address util.Uint160
	}
)

// String implements the fmt.Stringer interface.
func (d StorageDeposit) String() string {
	amount := "0"
	if d.Amount != nil {
		amount = d.Amount.ToBig().String()
	}
	if d.Charge {
		return "charge " + amount
	}
	return "refund " + amount
}

// DecodeBinary implements the io.Decodable interface.
func (d *StorageDeposit) DecodeBinary(r *io.BinReader) {
	switch kind := r.ReadB(); kind {
	case 0:
		d.Charge = false
	case 1:
		d.Charge = true
	default:
		if r.Err == nil {
			r.Err = errUnknownVariant("StorageDeposit", kind)
		}
		return
	}
	d.Amount = r.ReadU128LE()
}

// EncodeBinary implements the io.Encodable interface.
func (d *StorageDeposit) EncodeBinary(w *io.BinWriter) {
	w.WriteBool(d.Charge)
	w.WriteU128LE(d.Amount)
}

// Failed returns true if the call failed at the runtime level.
func (r *Invoke) Failed() bool {
	return r.DispatchError != nil
}

// Reverted returns true if the contract returned with the revert flag.
func (r *Invoke) Reverted() bool {
	return r.DispatchError == nil && r.Flags&FlagRevert != 0
}

// Error returns a dispatch or revert error, nil for successful calls.
func (r *Invoke) Error() error {
	switch {
	case r.Failed():
		return fmt.Errorf("dispatch error: %s", r.DispatchError)
	case r.Reverted():
		return fmt.Errorf("contract reverted: 0x%x", r.Data)
	}
	return nil
}

func (r *Invoke) decodeHeader(br *io.BinReader) {
	r.GasConsumed.DecodeBinary(br)
	r.GasRequired.DecodeBinary(br)
	r.StorageDeposit.DecodeBinary(br)
	r.DebugMessage = br.ReadString()
}

func (r *Invoke) encodeHeader(w *io.BinWriter) {
	r.GasConsumed.EncodeBinary(w)
	r.GasRequired.EncodeBinary(w)
	r.StorageDeposit.EncodeBinary(w)
	w.WriteString(r.DebugMessage)
}

// decodeResult reads the Result tag, returning true for Ok.
func (r *Invoke) decodeResult(br *io.BinReader) bool {
	switch tag := br.ReadB(); tag {
	case 0:
		r.Flags = br.ReadU32LE()
		r.Data = br.ReadVarBytes()
		return true
	case 1:
		r.DispatchError = new(DispatchError)
		r.DispatchError.DecodeBinary(br)
	default:
		if br.Err == nil {
			br.Err = errUnknownVariant("Result", tag)
		}
	}
	return false
}

func (r *Invoke) encodeResult(w *io.BinWriter) {
	if r.DispatchError != nil {
		w.WriteB(1)
		r.DispatchError.EncodeBinary(w)
		return
	}
	w.WriteB(0)
	w.WriteU32LE(r.Flags)
	w.WriteVarBytes(r.Data)
}

// DecodeBinary implements the io.Decodable interface. Newer nodes append the
// list of emitted events, use DecodeInvoke to ignore it.
func (r *Invoke) DecodeBinary(br *io.BinReader) {
	r.decodeHeader(br)
	r.decodeResult(br)
}

// EncodeBinary implements the io.Encodable interface.
func (r *Invoke) EncodeBinary(w *io.BinWriter) {
	r.encodeHeader(w)
	r.encodeResult(w)
}

// DecodeBinary implements the io.Decodable interface.
func (r *Instantiate) DecodeBinary(br *io.BinReader) {
	r.decodeHeader(br)
	if r.decodeResult(br) {
		br.ReadBytes(r.Address[:])
	}
}

// EncodeBinary implements the io.Encodable interface.
func (r *Instantiate) EncodeBinary(w *io.BinWriter) {
	r.encodeHeader(w)
	r.encodeResult(w)
	if r.DispatchError == nil {
		w.WriteBytes(r.Address[:])
	}
}

// DecodeInvoke decodes a ContractsApi_call result ignoring trailing data.
func DecodeInvoke(b []byte) (*Invoke, error) {
	res := new(Invoke)
	br := io.NewBinReaderFromBuf(b)
	res.DecodeBinary(br)
	if br.Err != nil {
		return nil, fmt.Errorf("invalid call result: %w", br.Err)
	}
	return res, nil
}

// DecodeInstantiate decodes a ContractsApi_instantiate result ignoring
// trailing data.
func DecodeInstantiate(b []byte) (*Instantiate, error) {
	res := new(Instantiate)
	br := io.NewBinReaderFromBuf(b)
	res.DecodeBinary(br)
	if br.Err != nil {
		return nil, fmt.Errorf("invalid instantiate result: %w", br.Err)
	}
	return res, nil
}
