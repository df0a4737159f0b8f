package result

import (
	"github.com/holiman/uint256"
	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// Code kinds for InstantiateRequest.
const (
	CodeUpload   byte = 0
	CodeExisting byte = 1
)

type (
	// CallRequest is the ContractsApi_call argument.
	CallRequest struct {
		Origin util.Uint160
		Dest   util.Uint160
		Value  *uint256.Int
		Limits Limits
		Input  []byte
	}

	// InstantiateRequest is the ContractsApi_instantiate argument. Either Code
	// (uploaded with the call) or CodeHash (already stored) is used.
	InstantiateRequest struct {
		Origin   util.Uint160
		Value    *uint256.Int
		Limits   Limits
		Code     []byte
		CodeHash *util.Uint256
		Data     []byte
		Salt     []byte
	}
)

func encodeLimits(l Limits, w *io.BinWriter) {
	w.WriteB(1)
	l.GasLimit.EncodeBinary(w)
	if l.StorageDepositLimit == nil {
		w.WriteB(0)
	} else {
		w.WriteB(1)
		w.WriteU128LE(l.StorageDepositLimit)
	}
}

// EncodeBinary implements the io.Encodable interface.
func (c *CallRequest) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(c.Origin[:])
	w.WriteBytes(c.Dest[:])
	w.WriteU128LE(c.Value)
	encodeLimits(c.Limits, w)
	w.WriteVarBytes(c.Input)
}

// DecodeBinary implements the io.Decodable interface.
func (c *CallRequest) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(c.Origin[:])
	r.ReadBytes(c.Dest[:])
	c.Value = r.ReadU128LE()
	c.Limits = decodeLimits(r)
	c.Input = r.ReadVarBytes()
}

// EncodeBinary implements the io.Encodable interface.
func (c *InstantiateRequest) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(c.Origin[:])
	w.WriteU128LE(c.Value)
	encodeLimits(c.Limits, w)
	if c.CodeHash != nil {
		w.WriteB(CodeExisting)
		w.WriteBytes(c.CodeHash[:])
	} else {
		w.WriteB(CodeUpload)
		w.WriteVarBytes(c.Code)
	}
	w.WriteVarBytes(c.Data)
	w.WriteVarBytes(c.Salt)
}

// DecodeBinary implements the io.Decodable interface.
func (c *InstantiateRequest) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(c.Origin[:])
	c.Value = r.ReadU128LE()
	c.Limits = decodeLimits(r)
	switch kind := r.ReadB(); kind {
	case CodeUpload:
		c.Code = r.ReadVarBytes(io.MaxArraySize)
	case CodeExisting:
		c.CodeHash = new(util.Uint256)
		r.ReadBytes(c.CodeHash[:])
	default:
		if r.Err == nil {
			r.Err = errUnknownVariant("Code", kind)
		}
	}
	c.Data = r.ReadVarBytes()
	c.Salt = r.ReadVarBytes()
}

func decodeLimits(r *io.BinReader) Limits {
	var l Limits
	if r.ReadBool() {
		l.GasLimit.DecodeBinary(r)
	}
	if r.ReadBool() {
		l.StorageDepositLimit = r.ReadU128LE()
	}
	return l
}
