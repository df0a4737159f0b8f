/*
Package unwrap provides a set of proxy methods to process invocation results.

Value is intended to be used as a wrapper for functions that return
(*result.Invoke, error) pair, it checks for error, for the dispatch error
and the revert flag, decodes the message output and strips the ink!
MessageResult wrapper. Typed helpers then take the (value, error) pair Value
returns and cast it to the appropriate Go type. They're mostly useful for
contract-specific packages.
*/
package unwrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/scale"
	"github.com/vne-network/priceoracle-go/pkg/smartcontract/manifest"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// ErrUnexpectedType is returned when the decoded value doesn't have the
// expected type.
var ErrUnexpectedType = errors.New("unexpected value type")

// Decoder decodes message outputs, it's implemented by *manifest.Manifest.
type Decoder interface {
	DecodeOutput(msg *manifest.Message, data []byte) (any, error)
}

// RejectedError is returned when the contract rejected the call. Either the
// runtime failed to dispatch it (the contract trapped, ran out of gas, etc.),
// or the contract reverted or returned a LangError.
type RejectedError struct {
	Method string
	// DispatchError is set for calls failed at the runtime level.
	DispatchError *result.DispatchError
	// Reverted is set when the contract returned with the revert flag.
	Reverted bool
	// LangError is the ink! LangError variant name if any.
	LangError string
	// Data is the raw returned data.
	Data []byte
	// DebugMessage is the contract debug output.
	DebugMessage string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	var reason string
	switch {
	case e.DispatchError != nil:
		reason = e.DispatchError.String()
	case e.LangError != "":
		reason = "LangError::" + e.LangError
	case e.Reverted:
		reason = fmt.Sprintf("reverted with 0x%x", e.Data)
	default:
		reason = "unknown reason"
	}
	if e.DebugMessage != "" {
		reason += " (" + e.DebugMessage + ")"
	}
	return e.Method + " rejected: " + reason
}

// Value expects the call of msg to succeed and returns its decoded output
// with the MessageResult wrapper stripped (nil for messages returning
// nothing). Rejected calls return *RejectedError.
func Value(d Decoder, msg *manifest.Message, r *result.Invoke, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	rej := &RejectedError{
		Method:        msg.Label,
		DispatchError: r.DispatchError,
		Reverted:      r.Reverted(),
		Data:          r.Data,
		DebugMessage:  r.DebugMessage,
	}
	if r.Failed() {
		return nil, rej
	}
	v, err := d.DecodeOutput(msg, r.Data)
	if err != nil {
		if rej.Reverted {
			return nil, rej
		}
		return nil, err
	}
	if isMessageResult(msg) {
		res, ok := v.(*scale.Variant)
		if !ok {
			return nil, fmt.Errorf("%s: %w: %T", msg.Label, ErrUnexpectedType, v)
		}
		if res.Name != "Ok" {
			if lang, ok := res.Value().(*scale.Variant); ok {
				rej.LangError = lang.Name
			} else {
				rej.LangError = res.Name
			}
			return nil, rej
		}
		v = res.Value()
	}
	if rej.Reverted {
		return nil, rej
	}
	return v, nil
}

func isMessageResult(msg *manifest.Message) bool {
	if msg.ReturnType == nil || len(msg.ReturnType.DisplayName) == 0 {
		return false
	}
	dn := msg.ReturnType.DisplayName
	return dn[len(dn)-1] == "MessageResult" || strings.Join(dn, "::") == "Result"
}

func unexpected(v any) error {
	return fmt.Errorf("%w: %T", ErrUnexpectedType, v)
}

// Uint128 expects an unsigned integer value.
func Uint128(v any, err error) (*uint256.Int, error) {
	if err != nil {
		return nil, err
	}
	u, ok := scale.Uint256(v)
	if !ok {
		return nil, unexpected(v)
	}
	return u, nil
}

// OptionalUint128 expects an Option of an unsigned integer, nil is returned
// for None.
func OptionalUint128(v any, err error) (*uint256.Int, error) {
	if err != nil {
		return nil, err
	}
	opt, ok := v.(*scale.Variant)
	if !ok {
		return nil, unexpected(v)
	}
	switch opt.Name {
	case "None":
		return nil, nil
	case "Some":
		return Uint128(opt.Value(), nil)
	}
	return nil, fmt.Errorf("%w: variant %s", ErrUnexpectedType, opt.Name)
}

// Bool expects a boolean value.
func Bool(v any, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, unexpected(v)
	}
	return b, nil
}

// String expects a string value.
func String(v any, err error) (string, error) {
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", unexpected(v)
	}
	return s, nil
}

// Strings expects a sequence of strings.
func Strings(v any, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, unexpected(v)
	}
	res := make([]string, len(arr))
	for i := range arr {
		if res[i], err = String(arr[i], nil); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return res, nil
}

// Address expects a 20-byte account id.
func Address(v any, err error) (util.Uint160, error) {
	if err != nil {
		return util.Uint160{}, err
	}
	b, ok := v.([]byte)
	if !ok {
		return util.Uint160{}, unexpected(v)
	}
	return util.Uint160DecodeBytesBE(b)
}

// Unit expects an empty result (like the unit type returned by setters).
func Unit(v any, err error) error {
	if err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		if len(val) == 0 {
			return nil
		}
	}
	return unexpected(v)
}
