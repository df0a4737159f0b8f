package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/vne-network/priceoracle-go/internal/testchain"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/encoding/address"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/actor"
	"github.com/vne-network/priceoracle-go/pkg/rpcclient/unwrap"
	"github.com/vne-network/priceoracle-go/pkg/scale"
	"github.com/vne-network/priceoracle-go/pkg/smartcontract/manifest"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

type testAct struct {
	res *result.Invoke
	err error

	input []byte
	value *uint256.Int
	sent  bool
}

func (t *testAct) CallWithValue(ctx context.Context, contract util.Uint160, input []byte, value *uint256.Int) (*result.Invoke, error) {
	t.input, t.value = input, value
	return t.res, t.err
}

func (t *testAct) SendCall(ctx context.Context, contract util.Uint160, input []byte, value *uint256.Int) (*actor.Subscription, error) {
	t.sent = true
	return nil, t.err
}

func TestParseAddress(t *testing.T) {
	acc := testchain.AccountID(0)
	s := address.Uint160ToString(acc)

	u, err := ParseAddress(s)
	require.NoError(t, err)
	require.Equal(t, acc, u)

	u, err = ParseAddress(" " + s + "\n")
	require.NoError(t, err)
	require.Equal(t, acc, u)

	for _, bad := range []string{
		"",
		s[2:],
		s[:len(s)-1],
		"0x" + "zz" + s[4:],
		"0x7e5F4552091A69125d5DfCb7b8C2659029395Bdf",
	} {
		_, err := ParseAddress(bad)
		require.Error(t, err, bad)
	}
}

func TestNewReader(t *testing.T) {
	m := testchain.PriceOracle()
	c, err := NewReader(&testAct{}, testchain.ContractAddress(), m)
	require.NoError(t, err)
	require.Equal(t, testchain.ContractAddress(), c.Address())
	require.Equal(t, m, c.Manifest())
	require.Len(t, c.Methods(), 9)

	msg, err := c.Message("calculatePrice")
	require.NoError(t, err)
	require.Equal(t, "calculate_price", msg.Label)
	_, err = c.Message("transfer")
	require.ErrorIs(t, err, ErrUnknownMethod)

	broken := testchain.PriceOracle()
	broken.Spec.Messages[0].Args[0].Type.Type = 1000
	_, err = NewReader(&testAct{}, testchain.ContractAddress(), broken)
	var de *manifest.DecodeError
	require.ErrorAs(t, err, &de)
}

func TestQuery(t *testing.T) {
	m := testchain.PriceOracle()
	ta := &testAct{res: &result.Invoke{
		GasConsumed: result.Weight{RefTime: 100, ProofSize: 10},
		Data:        testchain.Output(m, "calculate_price", map[string]any{"Some": uint256.NewInt(40)}),
	}}
	c, err := NewReader(ta, testchain.ContractAddress(), m)
	require.NoError(t, err)

	out, err := c.Query(context.Background(), "calculate_price", nil, "abc", uint64(2))
	require.NoError(t, err)
	require.Nil(t, out.Rejected)
	require.Equal(t, uint64(100), out.Exec.GasConsumed.RefTime)
	v, err := unwrap.OptionalUint128(out.Value, nil)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(40), v)
	require.Equal(t, []byte{0xcd, 0x71, 0xb8, 0xb5, 3 << 2, 'a', 'b', 'c', 2, 0, 0, 0, 0, 0, 0, 0}, ta.input)

	v, err = unwrap.OptionalUint128(c.Call(context.Background(), "calculatePrice", "abc", uint64(2)))
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(40), v)

	t.Run("rejected", func(t *testing.T) {
		ta.res = &result.Invoke{DispatchError: &result.DispatchError{Kind: result.Module, Name: "Contracts::ContractTrapped"}}
		out, err := c.Query(context.Background(), "calculate_price", nil, "abc", uint64(0))
		require.NoError(t, err)
		require.Nil(t, out.Value)
		require.NotNil(t, out.Rejected)
		require.Equal(t, "Contracts::ContractTrapped", out.Rejected.DispatchError.Name)

		_, err = c.Call(context.Background(), "calculate_price", "abc", uint64(0))
		var rej *unwrap.RejectedError
		require.ErrorAs(t, err, &rej)
	})
	t.Run("bad arguments", func(t *testing.T) {
		_, err := c.Query(context.Background(), "calculate_price", nil, "abc")
		require.Error(t, err)
		_, err = c.Query(context.Background(), "calculate_price", nil, "abc", "-1")
		require.ErrorIs(t, err, scale.ErrTypeMismatch)
		_, err = c.Query(context.Background(), "nope", nil)
		require.ErrorIs(t, err, ErrUnknownMethod)
	})
	t.Run("rpc error", func(t *testing.T) {
		ta.err = errors.New("connection lost")
		_, err := c.Query(context.Background(), "read_owner", nil)
		require.Error(t, err)
		ta.err = nil
	})
}

func TestSubmit(t *testing.T) {
	m := testchain.PriceOracle()
	ta := &testAct{res: &result.Invoke{Data: testchain.Output(m, "add_premium_name", []any{})}}
	c, err := New(ta, testchain.ContractAddress(), m)
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), "addPremiumName", nil, "apple")
	require.NoError(t, err)
	require.True(t, ta.sent)

	ta.sent = false
	_, err = c.Submit(context.Background(), "get_premium_names", nil)
	require.ErrorIs(t, err, ErrReadOnly)
	_, err = c.Submit(context.Background(), "add_premium_name", uint256.NewInt(1), "apple")
	require.ErrorIs(t, err, ErrNotPayable)

	ta.res = &result.Invoke{DispatchError: &result.DispatchError{Kind: result.Module, Name: "Contracts::ContractTrapped"}}
	_, err = c.Submit(context.Background(), "add_premium_name", nil, "apple")
	var rej *unwrap.RejectedError
	require.ErrorAs(t, err, &rej)
	require.False(t, ta.sent)
}

func TestEvents(t *testing.T) {
	m := testchain.PriceOracle()
	c, err := NewReader(&testAct{}, testchain.ContractAddress(), m)
	require.NoError(t, err)

	emitted := func(contract util.Uint160, data []byte) result.Event {
		return result.Event{Pallet: "Contracts", Method: "ContractEmitted", Fields: []scale.NamedValue{
			{Name: "contract", Value: contract.BytesBE()},
			{Name: "data", Value: data},
		}}
	}
	r := &actor.Receipt{Events: []result.Event{
		{Pallet: "System", Method: "ExtrinsicSuccess"},
		emitted(util.Uint160{1}, []byte{0}),
	}}
	evs, err := c.Events(r)
	require.NoError(t, err)
	require.Empty(t, evs)

	r.Events = append(r.Events, emitted(testchain.ContractAddress(), []byte{0}))
	_, err = c.Events(r)
	var de *manifest.DecodeError
	require.ErrorAs(t, err, &de)
}
