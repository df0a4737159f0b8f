package testchain

import (
	"github.com/vne-network/priceoracle-go/pkg/util"
)

var dispatchInfo = map[string]any{
	"weight":   map[string]any{"ref_time": 1000, "proof_size": 100},
	"class":    "Normal",
	"pays_fee": "Yes",
}

func record(index uint32, pallet, method string, fields any) map[string]any {
	return map[string]any{
		"phase":  map[string]any{"ApplyExtrinsic": index},
		"event":  map[string]any{pallet: map[string]any{method: fields}},
		"topics": []any{},
	}
}

// ExtrinsicSuccess returns a System.ExtrinsicSuccess event record.
func ExtrinsicSuccess(index uint32) map[string]any {
	return record(index, "System", "ExtrinsicSuccess", dispatchInfo)
}

// ExtrinsicFailed returns a System.ExtrinsicFailed event record with a
// Contracts module error.
func ExtrinsicFailed(index uint32, contractsErr byte) map[string]any {
	return record(index, "System", "ExtrinsicFailed", map[string]any{
		"dispatch_error": map[string]any{"Module": map[string]any{
			"index": ContractsIndex, "error": []byte{contractsErr, 0, 0, 0}}},
		"dispatch_info": dispatchInfo,
	})
}

// Instantiated returns a Contracts.Instantiated event record.
func Instantiated(index uint32, deployer, contract util.Uint160) map[string]any {
	return record(index, "Contracts", "Instantiated", map[string]any{
		"deployer": deployer, "contract": contract})
}

// ContractEmitted returns a Contracts.ContractEmitted event record.
func ContractEmitted(index uint32, contract util.Uint160, data []byte) map[string]any {
	return record(index, "Contracts", "ContractEmitted", map[string]any{
		"contract": contract, "data": data})
}

// EncodeEvents encodes event records as a System.Events storage value.
func EncodeEvents(records ...map[string]any) []byte {
	md := Metadata()
	entry, err := md.StorageEntry("System", "Events")
	if err != nil {
		panic(err)
	}
	list := make([]any, len(records))
	for i := range records {
		list[i] = records[i]
	}
	b, err := md.Types.EncodeToBytes(entry.Value, list)
	if err != nil {
		panic(err)
	}
	return b
}
