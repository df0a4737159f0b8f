// Package manifest implements ink! contract metadata (version 4): the
// interface description of a WASM contract with its constructors, messages,
// events and the type registry used to encode their arguments.
package manifest

import (
	"archive/zip"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vne-network/priceoracle-go/pkg/crypto/hash"
	"github.com/vne-network/priceoracle-go/pkg/scale"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// MetadataVersion is the only supported metadata version.
const MetadataVersion = "4"

// MaxManifestSize is the maximum metadata file size accepted.
const MaxManifestSize = 32 * 1024 * 1024

// ErrNoCode is returned for metadata without an embedded WASM blob.
var ErrNoCode = errors.New("metadata has no wasm code")

type (
	// Manifest is the contract metadata.
	Manifest struct {
		Source   Source          `json:"source"`
		Contract Info            `json:"contract"`
		Spec     Spec            `json:"spec"`
		Storage  json.RawMessage `json:"storage,omitempty"`
		Types    *scale.Registry `json:"types"`
		Version  Version         `json:"version"`

		messages map[string]*Message
	}

	// Source describes the contract code.
	Source struct {
		Hash      string          `json:"hash"`
		Language  string          `json:"language"`
		Compiler  string          `json:"compiler"`
		Wasm      string          `json:"wasm,omitempty"`
		BuildInfo json.RawMessage `json:"build_info,omitempty"`
	}

	// Info is the contract package information.
	Info struct {
		Name    string   `json:"name"`
		Version string   `json:"version"`
		Authors []string `json:"authors"`
	}

	// Spec is the contract interface.
	Spec struct {
		Constructors []Constructor `json:"constructors"`
		Docs         []string      `json:"docs"`
		Environment  *Environment  `json:"environment,omitempty"`
		Events       []Event       `json:"events"`
		LangError    *TypeSpec     `json:"lang_error,omitempty"`
		Messages     []Message     `json:"messages"`
	}

	// Environment lists the chain types the contract was built for.
	Environment struct {
		AccountID      TypeSpec `json:"accountId"`
		Balance        TypeSpec `json:"balance"`
		BlockNumber    TypeSpec `json:"blockNumber"`
		ChainExtension TypeSpec `json:"chainExtension"`
		Hash           TypeSpec `json:"hash"`
		MaxEventTopics int      `json:"maxEventTopics"`
		Timestamp      TypeSpec `json:"timestamp"`
	}

	// Version is the metadata version, a string in v4 and a number later.
	Version string
)

// UnmarshalJSON implements the json.Unmarshaler interface.
func (v *Version) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Version(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid version: %w", err)
	}
	*v = Version(n.String())
	return nil
}

// New parses and validates metadata JSON.
func New(data []byte) (*Manifest, error) {
	m := new(Manifest)
	if err := json.Unmarshal(data, m); err != nil {
		return nil, &DecodeError{What: "metadata", Err: err}
	}
	if err := m.IsValid(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewFromFile reads metadata from a .json file or a .contract bundle (which
// is the same JSON with the code embedded). A zip archive containing a
// single .json or .contract file is also accepted.
func NewFromFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxManifestSize {
		return nil, fmt.Errorf("%s: metadata is too big (%d bytes)", path, len(data))
	}
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		data, err = unzip(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	m, err := New(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return m, nil
}

func unzip(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		ext := filepath.Ext(f.Name)
		if ext != ".json" && ext != ".contract" {
			continue
		}
		if f.UncompressedSize64 > MaxManifestSize {
			return nil, fmt.Errorf("%s is too big", f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		rc.Close()
		return buf.Bytes(), err
	}
	return nil, errors.New("no metadata in archive")
}

// IsValid checks that the metadata has a supported version and that every
// type it references resolves in the registry. It also builds the message
// lookup table.
func (m *Manifest) IsValid() error {
	if m.Version != MetadataVersion {
		return &DecodeError{What: "version", Err: fmt.Errorf("unsupported metadata version %q", m.Version)}
	}
	if m.Types == nil {
		return &DecodeError{What: "types", Err: errors.New("no type registry")}
	}
	if len(m.Spec.Constructors) == 0 {
		return &DecodeError{What: "spec", Err: errors.New("no constructors")}
	}
	if err := m.checkType("lang_error", m.Spec.LangError); err != nil {
		return err
	}
	selectors := make(map[Selector]string)
	for i := range m.Spec.Constructors {
		c := &m.Spec.Constructors[i]
		if err := m.checkCallable("constructor "+c.Label, c.Args, c.ReturnType); err != nil {
			return err
		}
		if prev, ok := selectors[c.Selector]; ok {
			return &DecodeError{What: "constructor " + c.Label, Err: fmt.Errorf("selector %s is used by %s", c.Selector, prev)}
		}
		selectors[c.Selector] = c.Label
	}
	clear(selectors)
	m.messages = make(map[string]*Message, 2*len(m.Spec.Messages))
	for i := range m.Spec.Messages {
		msg := &m.Spec.Messages[i]
		if err := m.checkCallable("message "+msg.Label, msg.Args, msg.ReturnType); err != nil {
			return err
		}
		if prev, ok := selectors[msg.Selector]; ok {
			return &DecodeError{What: "message " + msg.Label, Err: fmt.Errorf("selector %s is used by %s", msg.Selector, prev)}
		}
		selectors[msg.Selector] = msg.Label
		for _, name := range []string{msg.Label, CamelCase(msg.Label)} {
			if other, ok := m.messages[name]; ok && other != msg {
				return &DecodeError{What: "message " + msg.Label, Err: fmt.Errorf("name %q is ambiguous", name)}
			}
			m.messages[name] = msg
		}
	}
	for i := range m.Spec.Events {
		ev := &m.Spec.Events[i]
		for _, a := range ev.Args {
			if err := m.checkType("event "+ev.Label+" "+a.Label, &a.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manifest) checkCallable(what string, args []Arg, ret *TypeSpec) error {
	for _, a := range args {
		if err := m.checkType(what+" argument "+a.Label, &a.Type); err != nil {
			return err
		}
	}
	return m.checkType(what+" return type", ret)
}

func (m *Manifest) checkType(what string, ts *TypeSpec) error {
	if ts == nil {
		return nil
	}
	if err := m.Types.Resolve(ts.Type); err != nil {
		return &DecodeError{What: what, Err: err}
	}
	return nil
}

// Name returns the contract name.
func (m *Manifest) Name() string {
	return m.Contract.Name
}

// Methods returns sorted message labels.
func (m *Manifest) Methods() []string {
	res := make([]string, 0, len(m.Spec.Messages))
	for i := range m.Spec.Messages {
		res = append(res, m.Spec.Messages[i].Label)
	}
	slices.Sort(res)
	return res
}

// Message returns the message with the given label or its camelCase form
// (like "calculatePrice" for "calculate_price"), nil if there is none.
func (m *Manifest) Message(name string) *Message {
	if m.messages != nil {
		return m.messages[name]
	}
	for i := range m.Spec.Messages {
		if m.Spec.Messages[i].Label == name || CamelCase(m.Spec.Messages[i].Label) == name {
			return &m.Spec.Messages[i]
		}
	}
	return nil
}

// Constructor returns the constructor with the given label (or its camelCase
// form), nil if there is none. An empty name returns the default
// constructor or the first one.
func (m *Manifest) Constructor(name string) *Constructor {
	if name == "" {
		for i := range m.Spec.Constructors {
			if m.Spec.Constructors[i].Default {
				return &m.Spec.Constructors[i]
			}
		}
		if len(m.Spec.Constructors) != 0 {
			return &m.Spec.Constructors[0]
		}
		return nil
	}
	for i := range m.Spec.Constructors {
		c := &m.Spec.Constructors[i]
		if c.Label == name || CamelCase(c.Label) == name {
			return c
		}
	}
	return nil
}

// Code returns the embedded WASM code.
func (m *Manifest) Code() ([]byte, error) {
	if m.Source.Wasm == "" {
		return nil, ErrNoCode
	}
	code, err := hex.DecodeString(strings.TrimPrefix(m.Source.Wasm, "0x"))
	if err != nil {
		return nil, &DecodeError{What: "wasm", Err: err}
	}
	return code, nil
}

// CodeHash returns the code hash from the metadata.
func (m *Manifest) CodeHash() (util.Uint256, error) {
	h, err := util.Uint256DecodeStringBE(m.Source.Hash)
	if err != nil {
		return h, &DecodeError{What: "source hash", Err: err}
	}
	return h, nil
}

// VerifyCode checks that the embedded code matches the source hash.
func (m *Manifest) VerifyCode() error {
	code, err := m.Code()
	if err != nil {
		return err
	}
	h, err := m.CodeHash()
	if err != nil {
		return err
	}
	if actual := hash.Blake2b256(code); !actual.Equals(h) {
		return fmt.Errorf("code hash mismatch: %s != %s", actual, h)
	}
	return nil
}

// CamelCase converts snake_case labels into lowerCamelCase.
func CamelCase(label string) string {
	parts := strings.Split(label, "_")
	var sb strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 || sb.Len() == 0 {
			sb.WriteString(p)
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(p[1:])
	}
	return sb.String()
}
