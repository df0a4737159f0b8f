package deployments

import (
	"time"

	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// Record describes a deployed contract instance.
type Record struct {
	// Genesis is the genesis hash of the chain the contract is deployed to.
	Genesis  util.Uint256
	Address  util.Uint160
	Contract string
	CodeHash util.Uint256
	Deployer util.Uint160
	TxHash   util.Uint256
	Block    util.Uint256
	Salt     []byte
	Time     time.Time
}

// EncodeBinary implements the io.Serializable interface.
func (r *Record) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(r.Genesis[:])
	w.WriteBytes(r.Address[:])
	w.WriteString(r.Contract)
	w.WriteBytes(r.CodeHash[:])
	w.WriteBytes(r.Deployer[:])
	w.WriteBytes(r.TxHash[:])
	w.WriteBytes(r.Block[:])
	w.WriteVarBytes(r.Salt)
	w.WriteU64LE(uint64(r.Time.UnixMilli()))
}

// DecodeBinary implements the io.Serializable interface.
func (r *Record) DecodeBinary(br *io.BinReader) {
	br.ReadBytes(r.Genesis[:])
	br.ReadBytes(r.Address[:])
	r.Contract = br.ReadString(256)
	br.ReadBytes(r.CodeHash[:])
	br.ReadBytes(r.Deployer[:])
	br.ReadBytes(r.TxHash[:])
	br.ReadBytes(r.Block[:])
	r.Salt = br.ReadVarBytes(1024)
	r.Time = time.UnixMilli(int64(br.ReadU64LE()))
}
