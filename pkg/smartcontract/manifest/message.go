package manifest

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/scale"
)

// SelectorSize is the size of message and constructor selectors.
const SelectorSize = 4

type (
	// Selector is the 4-byte dispatch prefix of a message or constructor.
	Selector [SelectorSize]byte

	// TypeSpec is a reference to a registry type with its display name.
	TypeSpec struct {
		DisplayName []string `json:"displayName"`
		Type        uint32   `json:"type"`
	}

	// Arg is a message or constructor argument.
	Arg struct {
		Label string   `json:"label"`
		Type  TypeSpec `json:"type"`
	}

	// Constructor describes a contract constructor.
	Constructor struct {
		Args       []Arg     `json:"args"`
		Default    bool      `json:"default"`
		Docs       []string  `json:"docs"`
		Label      string    `json:"label"`
		Payable    bool      `json:"payable"`
		ReturnType *TypeSpec `json:"returnType"`
		Selector   Selector  `json:"selector"`
	}

	// Message describes a contract message (a callable method).
	Message struct {
		Args       []Arg     `json:"args"`
		Default    bool      `json:"default"`
		Docs       []string  `json:"docs"`
		Label      string    `json:"label"`
		Mutates    bool      `json:"mutates"`
		Payable    bool      `json:"payable"`
		ReturnType *TypeSpec `json:"returnType"`
		Selector   Selector  `json:"selector"`
	}
)

// String implements the fmt.Stringer interface.
func (s Selector) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (s Selector) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *Selector) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	b, err := hex.DecodeString(strings.TrimPrefix(str, "0x"))
	if err != nil {
		return fmt.Errorf("invalid selector: %w", err)
	}
	if len(b) != SelectorSize {
		return fmt.Errorf("invalid selector length %d", len(b))
	}
	copy(s[:], b)
	return nil
}

// String returns the display name of the type.
func (t TypeSpec) String() string {
	return strings.Join(t.DisplayName, "::")
}

// String implements the fmt.Stringer interface. The return type is shown
// as declared, see Manifest.Signature for the resolved one.
func (m *Message) String() string {
	var ret string
	if m.ReturnType != nil {
		ret = m.ReturnType.String()
	}
	return signature(m.Label, m.Args, ret)
}

// String implements the fmt.Stringer interface.
func (c *Constructor) String() string {
	return signature(c.Label, c.Args, "")
}

// Signature returns the message signature with the actual return type: the
// MessageResult wrapper is stripped and nothing is shown for messages that
// return no value.
func (m *Manifest) Signature(msg *Message) string {
	return signature(msg.Label, msg.Args, m.returnName(msg.ReturnType))
}

func (m *Manifest) returnName(ret *TypeSpec) string {
	if ret == nil {
		return ""
	}
	if m.Types == nil {
		return ret.String()
	}
	t, err := m.Types.Type(ret.Type)
	if err != nil {
		return ret.String()
	}
	id := ret.Type
	if m.isMessageResult(t) {
		id, _ = t.Param("T")
	}
	if m.Types.IsEmpty(id) {
		return ""
	}
	if id == ret.Type {
		return ret.String()
	}
	return m.Types.TypeName(id)
}

// isMessageResult checks for Result<T, LangError> added by ink! to every
// message output.
func (m *Manifest) isMessageResult(t *scale.Type) bool {
	if !t.IsResult() {
		return false
	}
	if _, ok := t.Param("T"); !ok {
		return false
	}
	e, ok := t.Param("E")
	if !ok {
		return false
	}
	et, err := m.Types.Type(e)
	return err == nil && et.Name() == "LangError"
}

func signature(label string, args []Arg, ret string) string {
	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteByte('(')
	for i, a := range args {
		if i != 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Label)
		sb.WriteString(": ")
		sb.WriteString(a.Type.String())
	}
	sb.WriteByte(')')
	if ret != "" {
		sb.WriteString(" -> ")
		sb.WriteString(ret)
	}
	return sb.String()
}

// EncodeInput encodes the message call data: selector followed by
// arguments.
func (m *Manifest) EncodeInput(msg *Message, args ...any) ([]byte, error) {
	return m.encodeInput(msg.Label, msg.Selector, msg.Args, args)
}

// EncodeConstructor encodes the constructor call data.
func (m *Manifest) EncodeConstructor(c *Constructor, args ...any) ([]byte, error) {
	return m.encodeInput(c.Label, c.Selector, c.Args, args)
}

func (m *Manifest) encodeInput(label string, sel Selector, spec []Arg, args []any) ([]byte, error) {
	if len(args) != len(spec) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", label, len(spec), len(args))
	}
	w := io.NewBufBinWriter()
	w.WriteBytes(sel[:])
	for i := range spec {
		if err := m.Types.Encode(spec[i].Type.Type, args[i], w.BinWriter); err != nil {
			return nil, fmt.Errorf("%s: argument %s: %w", label, spec[i].Label, err)
		}
	}
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// DecodeOutput decodes the message return data. For ink! v4 contracts it's
// a Result with the LangError as the error type.
func (m *Manifest) DecodeOutput(msg *Message, data []byte) (any, error) {
	if msg.ReturnType == nil {
		if len(data) != 0 {
			return nil, &DecodeError{What: msg.Label, Err: fmt.Errorf("unexpected %d bytes of output", len(data))}
		}
		return nil, nil
	}
	v, err := m.Types.DecodeBytes(msg.ReturnType.Type, data)
	if err != nil {
		return nil, &DecodeError{What: msg.Label + " output", Err: err}
	}
	return v, nil
}

// DecodeInput decodes call data back into a message and its arguments.
func (m *Manifest) DecodeInput(data []byte) (*Message, []scale.NamedValue, error) {
	if len(data) < SelectorSize {
		return nil, nil, &DecodeError{What: "input", Err: fmt.Errorf("too short: %d bytes", len(data))}
	}
	var sel Selector
	copy(sel[:], data)
	var msg *Message
	for i := range m.Spec.Messages {
		if m.Spec.Messages[i].Selector == sel {
			msg = &m.Spec.Messages[i]
			break
		}
	}
	if msg == nil {
		return nil, nil, &DecodeError{What: "input", Err: fmt.Errorf("unknown selector %s", sel)}
	}
	r := io.NewBinReaderFromBuf(data[SelectorSize:])
	args := make([]scale.NamedValue, len(msg.Args))
	for i, a := range msg.Args {
		v, err := m.Types.Decode(a.Type.Type, r)
		if err != nil {
			return nil, nil, &DecodeError{What: msg.Label + " argument " + a.Label, Err: err}
		}
		args[i] = scale.NamedValue{Name: a.Label, Value: v}
	}
	if r.Len() != 0 {
		return nil, nil, &DecodeError{What: msg.Label, Err: &io.TrailingBytesError{Left: r.Len()}}
	}
	return msg, args, nil
}
