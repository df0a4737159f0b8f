package unwrap

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/vne-network/priceoracle-go/internal/testchain"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/scale"
	"github.com/vne-network/priceoracle-go/pkg/smartcontract/manifest"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

func invoke(data []byte) *result.Invoke {
	return &result.Invoke{Data: data}
}

func TestStdErrors(t *testing.T) {
	m := testchain.PriceOracle()
	msg := m.Message("get_price_per_year")
	funcs := []func(v any, err error) (any, error){
		func(v any, err error) (any, error) { return Uint128(v, err) },
		func(v any, err error) (any, error) { return OptionalUint128(v, err) },
		func(v any, err error) (any, error) { return Bool(v, err) },
		func(v any, err error) (any, error) { return String(v, err) },
		func(v any, err error) (any, error) { return Strings(v, err) },
		func(v any, err error) (any, error) { return Address(v, err) },
		func(v any, err error) (any, error) { return nil, Unit(v, err) },
	}
	t.Run("error on input", func(t *testing.T) {
		for _, f := range funcs {
			_, err := f(Value(m, msg, nil, errors.New("some")))
			require.Error(t, err)
		}
	})
	t.Run("dispatch error", func(t *testing.T) {
		r := &result.Invoke{DispatchError: &result.DispatchError{Kind: result.Module, Name: "Contracts::ContractTrapped"}}
		for _, f := range funcs {
			_, err := f(Value(m, msg, r, nil))
			var rej *RejectedError
			require.ErrorAs(t, err, &rej)
			require.Equal(t, "get_price_per_year rejected: Contracts::ContractTrapped", rej.Error())
		}
	})
	t.Run("wrong type", func(t *testing.T) {
		for _, f := range funcs {
			_, err := f(struct{}{}, nil)
			require.ErrorIs(t, err, ErrUnexpectedType)
		}
	})
}

func TestValue(t *testing.T) {
	m := testchain.PriceOracle()

	t.Run("ok", func(t *testing.T) {
		msg := m.Message("getPricePerYear")
		v, err := Uint128(Value(m, msg, invoke(testchain.Output(m, "get_price_per_year", uint256.NewInt(20))), nil))
		require.NoError(t, err)
		require.Equal(t, uint256.NewInt(20), v)
	})
	t.Run("lang error", func(t *testing.T) {
		msg := m.Message("get_price_per_year")
		data, err := m.Types.EncodeToBytes(msg.ReturnType.Type, map[string]any{"Err": "CouldNotReadInput"})
		require.NoError(t, err)
		_, err = Value(m, msg, &result.Invoke{Flags: result.FlagRevert, Data: data}, nil)
		var rej *RejectedError
		require.ErrorAs(t, err, &rej)
		require.Equal(t, "CouldNotReadInput", rej.LangError)
		require.True(t, rej.Reverted)
		require.Contains(t, rej.Error(), "LangError::CouldNotReadInput")
	})
	t.Run("reverted garbage", func(t *testing.T) {
		msg := m.Message("get_price_per_year")
		_, err := Value(m, msg, &result.Invoke{Flags: result.FlagRevert, Data: []byte{0xff}}, nil)
		var rej *RejectedError
		require.ErrorAs(t, err, &rej)
		require.Contains(t, rej.Error(), "reverted with 0xff")
	})
	t.Run("bad output", func(t *testing.T) {
		msg := m.Message("get_price_per_year")
		_, err := Value(m, msg, invoke([]byte{0}), nil)
		var de *manifest.DecodeError
		require.ErrorAs(t, err, &de)
	})
}

func TestTyped(t *testing.T) {
	m := testchain.PriceOracle()
	call := func(method string, v any) (any, error) {
		return Value(m, m.Message(method), invoke(testchain.Output(m, method, v)), nil)
	}

	price, err := OptionalUint128(call("calculate_price", map[string]any{"Some": uint256.NewInt(42)}))
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(42), price)

	price, err = OptionalUint128(call("calculate_price", nil))
	require.NoError(t, err)
	require.Nil(t, price)

	names, err := Strings(call("get_premium_names", []string{"apple", "google"}))
	require.NoError(t, err)
	require.Equal(t, []string{"apple", "google"}, names)

	names, err = Strings(call("get_premium_names", []string{}))
	require.NoError(t, err)
	require.Empty(t, names)

	owner := util.Uint160{1, 2, 3}
	acc, err := Address(call("read_owner", owner.BytesBE()))
	require.NoError(t, err)
	require.Equal(t, owner, acc)

	ok, err := Bool(call("remove_premium_name", true))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, Unit(call("set_price_per_year", []any{})))
	require.Error(t, Unit(uint64(1), nil))

	_, err = OptionalUint128(scale.Some("x"), nil)
	require.ErrorIs(t, err, ErrUnexpectedType)
	_, err = Strings([]any{"a", uint64(1)}, nil)
	require.ErrorIs(t, err, ErrUnexpectedType)
}
