package result_test

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/vne-network/priceoracle-go/internal/testchain"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/crypto/hash"
	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

func TestTxStatusJSON(t *testing.T) {
	h := util.Uint256{1, 2, 3}
	for _, tc := range []struct {
		in   string
		want result.TxStatus
	}{
		{`"future"`, result.TxStatus{Kind: result.Future}},
		{`"ready"`, result.TxStatus{Kind: result.Ready}},
		{`"dropped"`, result.TxStatus{Kind: result.Dropped}},
		{`"invalid"`, result.TxStatus{Kind: result.Invalid}},
		{`{"broadcast":["12D3KooW"]}`, result.TxStatus{Kind: result.Broadcast, Peers: []string{"12D3KooW"}}},
		{`{"inBlock":"` + h.String() + `"}`, result.TxStatus{Kind: result.InBlock, BlockHash: h}},
		{`{"retracted":"` + h.String() + `"}`, result.TxStatus{Kind: result.Retracted, BlockHash: h}},
		{`{"finalityTimeout":"` + h.String() + `"}`, result.TxStatus{Kind: result.FinalityTimeout, BlockHash: h}},
		{`{"finalized":"` + h.String() + `"}`, result.TxStatus{Kind: result.Finalized, BlockHash: h}},
		{`{"usurped":"` + h.String() + `"}`, result.TxStatus{Kind: result.Usurped, Usurper: h}},
	} {
		t.Run(tc.in, func(t *testing.T) {
			var s result.TxStatus
			require.NoError(t, json.Unmarshal([]byte(tc.in), &s))
			require.Equal(t, tc.want, s)

			data, err := json.Marshal(s)
			require.NoError(t, err)
			require.JSONEq(t, tc.in, string(data))
		})
	}

	for _, bad := range []string{`"finalized"`, `"pending"`, `{"inBlock":"0x01"}`, `{}`,
		`{"ready":1}`, `{"inBlock":"` + h.String() + `","finalized":"` + h.String() + `"}`, `42`} {
		var s result.TxStatus
		require.Error(t, json.Unmarshal([]byte(bad), &s), bad)
	}
}

func TestTxStatusKind(t *testing.T) {
	require.True(t, result.Future.Submitted())
	require.True(t, result.Ready.Submitted())
	require.True(t, result.Broadcast.Submitted())
	require.False(t, result.InBlock.Submitted())

	require.False(t, result.InBlock.IsTerminal())
	require.False(t, result.Retracted.IsTerminal())
	require.True(t, result.Finalized.IsTerminal())
	require.False(t, result.Finalized.IsFailure())
	require.True(t, result.Invalid.IsFailure())
	require.True(t, result.Dropped.IsFailure())
	require.True(t, result.Usurped.IsFailure())
	require.Equal(t, "inBlock", result.InBlock.String())
	require.Equal(t, "unknown", result.TxStatusKind(100).String())
}

func TestRuntimeVersion(t *testing.T) {
	data := `{"specName":"priceoracle","implName":"priceoracle-node","authoringVersion":1,
"specVersion":1042,"implVersion":0,"apis":[["0x68b66ba122c93fa7",1],["0xdf6acb689907609b",4]],
"transactionVersion":2,"stateVersion":1}`
	var v result.RuntimeVersion
	require.NoError(t, json.Unmarshal([]byte(data), &v))
	require.Equal(t, uint32(1042), v.SpecVersion)
	require.Equal(t, uint32(2), v.TransactionVersion)
	ver, ok := v.API("0xdf6acb689907609b")
	require.True(t, ok)
	require.Equal(t, uint32(4), ver)
	_, ok = v.API("0x00")
	require.False(t, ok)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	require.JSONEq(t, data, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"apis":[["0x01"]]}`), &v))
}

func TestBlock(t *testing.T) {
	ext1, ext2 := []byte{1, 2, 3}, []byte{4, 5, 6}
	data := `{"block":{"header":{"parentHash":"` + util.Uint256{7}.String() + `","number":"0x1a",
"stateRoot":"` + util.Uint256{8}.String() + `","extrinsicsRoot":"` + util.Uint256{9}.String() + `"},
"extrinsics":["0x010203","0x040506"]},"justifications":null}`
	var b result.SignedBlock
	require.NoError(t, json.Unmarshal([]byte(data), &b))
	require.Equal(t, result.HexNumber(26), b.Block.Header.Number)
	require.Equal(t, util.Uint256{7}, b.Block.Header.ParentHash)

	i, ok := b.Block.ExtrinsicIndex(hash.Blake2b256(ext2))
	require.True(t, ok)
	require.Equal(t, 1, i)
	i, ok = b.Block.ExtrinsicIndex(hash.Blake2b256(ext1))
	require.True(t, ok)
	require.Equal(t, 0, i)
	_, ok = b.Block.ExtrinsicIndex(util.Uint256{})
	require.False(t, ok)

	var n result.HexNumber
	require.NoError(t, json.Unmarshal([]byte(`26`), &n))
	require.Equal(t, result.HexNumber(26), n)
	require.Error(t, json.Unmarshal([]byte(`"0xzz"`), &n))
	out, err := json.Marshal(n)
	require.NoError(t, err)
	require.Equal(t, `"0x1a"`, string(out))
}

func TestLimits(t *testing.T) {
	var l result.Limits
	require.ErrorIs(t, l.Validate(), result.ErrNoLimits)
	l.GasLimit.RefTime = 1
	require.ErrorIs(t, l.Validate(), result.ErrNoLimits)
	l.GasLimit.ProofSize = 1
	require.NoError(t, l.Validate())
	require.Nil(t, l.ScaleDepositLimit())
	require.Equal(t, "gas {refTime: 1, proofSize: 1}, storage deposit unlimited", l.String())

	l.StorageDepositLimit = uint256.NewInt(100)
	require.Equal(t, uint256.NewInt(100), l.ScaleDepositLimit())
	require.Equal(t, "gas {refTime: 1, proofSize: 1}, storage deposit 100", l.String())
}

func TestParseBalance(t *testing.T) {
	b, err := result.ParseBalance("1_000_000_000_000_000_000")
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1_000_000_000_000_000_000), b)

	max, err := result.ParseBalance("340282366920938463463374607431768211455")
	require.NoError(t, err)
	require.Equal(t, 128, max.BitLen())

	for _, s := range []string{"", "abc", "-1", "1.5", "0x10", "340282366920938463463374607431768211456"} {
		_, err := result.ParseBalance(s)
		require.Error(t, err, s)
	}
}

func TestCallRequestEncoding(t *testing.T) {
	req := &result.CallRequest{
		Origin: testchain.AccountID(0),
		Dest:   testchain.ContractAddress(),
		Limits: result.Limits{GasLimit: result.Weight{RefTime: 1000, ProofSize: 64}},
		Input:  []byte{0x38, 0x6b, 0x9e, 0x44},
	}
	b, err := io.ToBytes(req)
	require.NoError(t, err)
	want := req.Origin.StringBE() + req.Dest.StringBE() +
		"00000000000000000000000000000000" + // value
		"01" + "a10f" + "0101" + // Some(weight)
		"00" + // no deposit limit
		"10386b9e44"
	require.Equal(t, want, hex.EncodeToString(b))

	var back result.CallRequest
	require.NoError(t, io.FromBytes(b, &back))
	require.Equal(t, req.Input, back.Input)
	require.Equal(t, req.Limits, back.Limits)
	require.Equal(t, req.Dest, back.Dest)
}

func TestInstantiateRequestEncoding(t *testing.T) {
	req := &result.InstantiateRequest{
		Origin: testchain.AccountID(0),
		Value:  uint256.NewInt(5),
		Limits: result.Limits{
			GasLimit:            result.Weight{RefTime: 1, ProofSize: 2},
			StorageDepositLimit: uint256.NewInt(7),
		},
		Code: []byte{0, 0x61, 0x73, 0x6d},
		Data: []byte{0x9b, 0xae, 0x9d, 0x5e},
		Salt: []byte{1},
	}
	b, err := io.ToBytes(req)
	require.NoError(t, err)
	want := req.Origin.StringBE() +
		"05000000000000000000000000000000" +
		"01" + "04" + "08" +
		"01" + "07000000000000000000000000000000" +
		"00" + "100061736d" +
		"109bae9d5e" +
		"0401"
	require.Equal(t, want, hex.EncodeToString(b))

	var back result.InstantiateRequest
	require.NoError(t, io.FromBytes(b, &back))
	require.Equal(t, req.Code, back.Code)
	require.Nil(t, back.CodeHash)

	h := util.Uint256{0xaa}
	req.Code, req.CodeHash = nil, &h
	b, err = io.ToBytes(req)
	require.NoError(t, err)
	back = result.InstantiateRequest{}
	require.NoError(t, io.FromBytes(b, &back))
	require.Equal(t, &h, back.CodeHash)
}

func TestDecodeInvoke(t *testing.T) {
	raw, err := hex.DecodeString(
		"0408" + "0c10" + // consumed, required
			"01" + "0a000000000000000000000000000000" + // charge 10
			"00" + // debug message
			"00" + "00000000" + "080001" + // Ok, flags, data
			"00") // trailing events
	require.NoError(t, err)
	res, err := result.DecodeInvoke(raw)
	require.NoError(t, err)
	require.Equal(t, result.Weight{RefTime: 1, ProofSize: 2}, res.GasConsumed)
	require.Equal(t, result.Weight{RefTime: 3, ProofSize: 4}, res.GasRequired)
	require.True(t, res.StorageDeposit.Charge)
	require.Equal(t, "charge 10", res.StorageDeposit.String())
	require.Equal(t, []byte{0, 1}, res.Data)
	require.False(t, res.Failed())
	require.False(t, res.Reverted())
	require.NoError(t, res.Error())

	res.Flags = result.FlagRevert
	require.True(t, res.Reverted())
	require.Error(t, res.Error())

	_, err = result.DecodeInvoke(raw[:5])
	require.Error(t, err)
}

func TestDecodeInvokeDispatchError(t *testing.T) {
	md := testchain.Metadata()
	res := &result.Invoke{
		StorageDeposit: result.StorageDeposit{Amount: uint256.NewInt(0)},
		DispatchError: &result.DispatchError{
			Kind:  result.Module,
			Index: testchain.ContractsIndex,
			Error: [4]byte{testchain.ErrContractTrapped},
		},
	}
	b, err := io.ToBytes(res)
	require.NoError(t, err)

	back, err := result.DecodeInvoke(b)
	require.NoError(t, err)
	require.True(t, back.Failed())
	require.False(t, back.Reverted())
	require.Equal(t, "Module(40, 0x03000000)", back.DispatchError.String())
	back.DispatchError.Resolve(md)
	require.Equal(t, "Contracts::ContractTrapped", back.DispatchError.String())
	require.EqualError(t, back.Error(), "dispatch error: Contracts::ContractTrapped")
}

func TestDecodeInstantiate(t *testing.T) {
	res := &result.Instantiate{
		Invoke: result.Invoke{
			GasRequired:    result.Weight{RefTime: 10, ProofSize: 20},
			StorageDeposit: result.StorageDeposit{Charge: true, Amount: uint256.NewInt(3)},
			DebugMessage:   "hello",
			Data:           []byte{0},
		},
		Address: testchain.ContractAddress(),
	}
	b, err := io.ToBytes(res)
	require.NoError(t, err)
	back, err := result.DecodeInstantiate(b)
	require.NoError(t, err)
	require.Equal(t, res.Address, back.Address)
	require.Equal(t, "hello", back.DebugMessage)
	require.Equal(t, res.GasRequired, back.GasRequired)

	res.DispatchError = &result.DispatchError{Kind: result.Arithmetic, Detail: 1}
	b, err = io.ToBytes(res)
	require.NoError(t, err)
	back, err = result.DecodeInstantiate(b)
	require.NoError(t, err)
	require.Equal(t, util.Uint160{}, back.Address)
	require.Equal(t, "Arithmetic::Overflow", back.DispatchError.String())
}

func TestDispatchErrorKinds(t *testing.T) {
	for _, tc := range []struct {
		hex  string
		want string
	}{
		{"02", "BadOrigin"},
		{"0700", "Token::FundsUnavailable"},
		{"0901", "Transactional::NoLayer"},
		{"0863", "Arithmetic(99)"},
		{"0d", "RootNotAllowed"},
	} {
		b, err := hex.DecodeString(tc.hex)
		require.NoError(t, err)
		var e result.DispatchError
		require.NoError(t, io.FromBytes(b, &e))
		require.Equal(t, tc.want, e.String())
	}
	var e result.DispatchError
	require.Error(t, io.FromBytes([]byte{0x0e}, &e))
}

func TestDecodeEvents(t *testing.T) {
	md := testchain.Metadata()
	entry, err := md.StorageEntry("System", "Events")
	require.NoError(t, err)

	deployer, contract := testchain.AccountID(0), testchain.ContractAddress()
	info := map[string]any{
		"weight":   map[string]any{"ref_time": 1, "proof_size": 2},
		"class":    "Normal",
		"pays_fee": "Yes",
	}
	topic := util.Uint256{0xee}
	records := []any{
		map[string]any{
			"phase":  "Initialization",
			"event":  map[string]any{"System": map[string]any{"NewAccount": deployer}},
			"topics": []any{},
		},
		map[string]any{
			"phase": map[string]any{"ApplyExtrinsic": 1},
			"event": map[string]any{"Contracts": map[string]any{"Instantiated": map[string]any{
				"deployer": deployer, "contract": contract}}},
			"topics": []any{topic.BytesBE()},
		},
		map[string]any{
			"phase": map[string]any{"ApplyExtrinsic": 1},
			"event": map[string]any{"System": map[string]any{"ExtrinsicFailed": map[string]any{
				"dispatch_error": map[string]any{"Module": map[string]any{
					"index": testchain.ContractsIndex, "error": []byte{testchain.ErrOutOfGas, 0, 0, 0}}},
				"dispatch_info": info,
			}}},
			"topics": []any{},
		},
		map[string]any{
			"phase":  map[string]any{"ApplyExtrinsic": 2},
			"event":  map[string]any{"System": map[string]any{"ExtrinsicSuccess": info}},
			"topics": nil,
		},
	}
	raw, err := md.Types.EncodeToBytes(entry.Value, records)
	require.NoError(t, err)

	events, err := result.DecodeEvents(md, raw)
	require.NoError(t, err)
	require.Len(t, events, 4)
	require.Equal(t, result.Phase{Kind: result.Initialization}, events[0].Phase)
	require.Equal(t, "System.NewAccount", events[0].String())

	inst := events[1]
	require.True(t, inst.Is("Contracts", "Instantiated"))
	require.Equal(t, result.Phase{Kind: result.ApplyExtrinsic, Extrinsic: 1}, inst.Phase)
	require.Equal(t, []util.Uint256{topic}, inst.Topics)
	c, ok := inst.Field("contract")
	require.True(t, ok)
	require.Equal(t, contract.BytesBE(), c)
	_, ok = inst.Field("nonexistent")
	require.False(t, ok)

	ext1 := result.ExtrinsicEvents(events, 1)
	require.Len(t, ext1, 2)
	failed := ext1[1]
	require.True(t, failed.Is("System", "ExtrinsicFailed"))
	de, ok := failed.Field("dispatch_error")
	require.True(t, ok)
	dispErr, err := result.DispatchErrorFromValue(de)
	require.NoError(t, err)
	dispErr.Resolve(md)
	require.Equal(t, "Contracts::OutOfGas", dispErr.String())

	require.Len(t, result.ExtrinsicEvents(events, 2), 1)
	require.Empty(t, result.ExtrinsicEvents(events, 3))

	_, err = result.DecodeEvents(md, raw[:len(raw)-1])
	require.Error(t, err)
}
