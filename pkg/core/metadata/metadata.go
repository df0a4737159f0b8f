// Package metadata decodes runtime metadata (version 14) returned by
// state_getMetadata and provides lookups of pallets, calls, storage entries,
// signed extensions and module errors.
package metadata

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/vne-network/priceoracle-go/pkg/crypto/hash"
	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/scale"
)

const (
	// Magic is the metadata prefix, "meta" in little-endian.
	Magic uint32 = 0x6174656d
	// Version is the only supported metadata version.
	Version = 14
)

var (
	// ErrInvalidMagic is returned for blobs not starting with Magic.
	ErrInvalidMagic = errors.New("invalid metadata magic")
	// ErrUnsupportedVersion is returned for metadata versions other than 14.
	ErrUnsupportedVersion = errors.New("unsupported metadata version")
)

// StorageModifier specifies what's returned for absent storage values.
type StorageModifier byte

// Storage modifiers.
const (
	Optional StorageModifier = iota
	Default
)

// Hasher is a storage map key hasher.
type Hasher byte

// Storage hashers.
const (
	Blake2_128 Hasher = iota
	Blake2_256
	Blake2_128Concat
	Twox128
	Twox256
	Twox64Concat
	Identity
)

type (
	// Metadata is the decoded runtime metadata.
	Metadata struct {
		Types       *scale.Registry
		Pallets     []Pallet
		Extrinsic   Extrinsic
		RuntimeType uint32
	}

	// Pallet describes a single runtime module.
	Pallet struct {
		Name      string
		Index     uint8
		Storage   *Storage
		Calls     *uint32
		Events    *uint32
		Constants []Constant
		Errors    *uint32
	}

	// Storage is the set of pallet storage entries.
	Storage struct {
		Prefix  string
		Entries []StorageEntry
	}

	// StorageEntry describes a storage item, Plain entries have only Value
	// type, maps have hashers and a Key type.
	StorageEntry struct {
		Name     string
		Modifier StorageModifier
		Plain    bool
		Hashers  []Hasher
		Key      uint32
		Value    uint32
		Default  []byte
		Docs     []string
	}

	// Constant is a pallet constant with its encoded value.
	Constant struct {
		Name  string
		Type  uint32
		Value []byte
		Docs  []string
	}

	// Extrinsic describes the extrinsic format.
	Extrinsic struct {
		Type             uint32
		Version          uint8
		SignedExtensions []SignedExtension
	}

	// SignedExtension is a single signed extension with its "extra" (Type)
	// and "additional signed" types.
	SignedExtension struct {
		Identifier       string
		Type             uint32
		AdditionalSigned uint32
	}

	// ExtrinsicParams are generic parameters of the UncheckedExtrinsic type.
	ExtrinsicParams struct {
		Address   uint32
		Call      uint32
		Signature uint32
		Extra     uint32
	}

	// ModuleError is a resolved pallet error.
	ModuleError struct {
		Pallet string
		Name   string
		Docs   []string
	}
)

// NotFoundError is returned when a pallet, an entry or a call is missing.
type NotFoundError struct {
	What string
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.What, e.Name)
}

// Decode decodes metadata from its SCALE form.
func Decode(b []byte) (*Metadata, error) {
	m := new(Metadata)
	r := io.NewBinReaderFromBuf(b)
	m.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	return m, nil
}

// DecodeHex decodes 0x-prefixed hex metadata as returned by the node.
func DecodeHex(s string) (*Metadata, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// DecodeBinary implements the io.Decodable interface.
func (m *Metadata) DecodeBinary(r *io.BinReader) {
	magic := r.ReadU32LE()
	if r.Err == nil && magic != Magic {
		r.Err = ErrInvalidMagic
		return
	}
	v := r.ReadB()
	if r.Err == nil && v != Version {
		r.Err = fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
		return
	}
	m.Types = new(scale.Registry)
	m.Types.DecodeBinary(r)
	n := r.ReadLength()
	m.Pallets = make([]Pallet, n)
	for i := range m.Pallets {
		m.Pallets[i].DecodeBinary(r)
	}
	m.Extrinsic.DecodeBinary(r)
	m.RuntimeType = readID(r)
}

// EncodeBinary implements the io.Encodable interface.
func (m *Metadata) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(Magic)
	w.WriteB(Version)
	m.Types.EncodeBinary(w)
	w.WriteCompact(uint64(len(m.Pallets)))
	for i := range m.Pallets {
		m.Pallets[i].EncodeBinary(w)
	}
	m.Extrinsic.EncodeBinary(w)
	w.WriteCompact(uint64(m.RuntimeType))
}

// DecodeBinary implements the io.Decodable interface.
func (p *Pallet) DecodeBinary(r *io.BinReader) {
	p.Name = r.ReadString()
	if r.ReadBool() {
		p.Storage = new(Storage)
		p.Storage.Prefix = r.ReadString()
		n := r.ReadLength()
		p.Storage.Entries = make([]StorageEntry, n)
		for i := range p.Storage.Entries {
			p.Storage.Entries[i].DecodeBinary(r)
		}
	}
	p.Calls = readOptionalID(r)
	p.Events = readOptionalID(r)
	n := r.ReadLength()
	p.Constants = make([]Constant, n)
	for i := range p.Constants {
		c := &p.Constants[i]
		c.Name = r.ReadString()
		c.Type = readID(r)
		c.Value = r.ReadVarBytes()
		c.Docs = readStrings(r)
	}
	p.Errors = readOptionalID(r)
	p.Index = r.ReadB()
}

// EncodeBinary implements the io.Encodable interface.
func (p *Pallet) EncodeBinary(w *io.BinWriter) {
	w.WriteString(p.Name)
	w.WriteBool(p.Storage != nil)
	if p.Storage != nil {
		w.WriteString(p.Storage.Prefix)
		w.WriteCompact(uint64(len(p.Storage.Entries)))
		for i := range p.Storage.Entries {
			p.Storage.Entries[i].EncodeBinary(w)
		}
	}
	writeOptionalID(w, p.Calls)
	writeOptionalID(w, p.Events)
	w.WriteCompact(uint64(len(p.Constants)))
	for _, c := range p.Constants {
		w.WriteString(c.Name)
		w.WriteCompact(uint64(c.Type))
		w.WriteVarBytes(c.Value)
		writeStrings(w, c.Docs)
	}
	writeOptionalID(w, p.Errors)
	w.WriteB(p.Index)
}

// DecodeBinary implements the io.Decodable interface.
func (e *StorageEntry) DecodeBinary(r *io.BinReader) {
	e.Name = r.ReadString()
	e.Modifier = StorageModifier(r.ReadB())
	switch kind := r.ReadB(); kind {
	case 0:
		e.Plain = true
		e.Value = readID(r)
	case 1:
		n := r.ReadLength()
		e.Hashers = make([]Hasher, n)
		for i := range e.Hashers {
			e.Hashers[i] = Hasher(r.ReadB())
		}
		e.Key = readID(r)
		e.Value = readID(r)
	default:
		if r.Err == nil {
			r.Err = fmt.Errorf("unknown storage entry type %d", kind)
		}
	}
	e.Default = r.ReadVarBytes()
	e.Docs = readStrings(r)
}

// EncodeBinary implements the io.Encodable interface.
func (e *StorageEntry) EncodeBinary(w *io.BinWriter) {
	w.WriteString(e.Name)
	w.WriteB(byte(e.Modifier))
	if e.Plain {
		w.WriteB(0)
		w.WriteCompact(uint64(e.Value))
	} else {
		w.WriteB(1)
		w.WriteCompact(uint64(len(e.Hashers)))
		for _, h := range e.Hashers {
			w.WriteB(byte(h))
		}
		w.WriteCompact(uint64(e.Key))
		w.WriteCompact(uint64(e.Value))
	}
	w.WriteVarBytes(e.Default)
	writeStrings(w, e.Docs)
}

// DecodeBinary implements the io.Decodable interface.
func (e *Extrinsic) DecodeBinary(r *io.BinReader) {
	e.Type = readID(r)
	e.Version = r.ReadB()
	n := r.ReadLength()
	e.SignedExtensions = make([]SignedExtension, n)
	for i := range e.SignedExtensions {
		se := &e.SignedExtensions[i]
		se.Identifier = r.ReadString()
		se.Type = readID(r)
		se.AdditionalSigned = readID(r)
	}
}

// EncodeBinary implements the io.Encodable interface.
func (e *Extrinsic) EncodeBinary(w *io.BinWriter) {
	w.WriteCompact(uint64(e.Type))
	w.WriteB(e.Version)
	w.WriteCompact(uint64(len(e.SignedExtensions)))
	for _, se := range e.SignedExtensions {
		w.WriteString(se.Identifier)
		w.WriteCompact(uint64(se.Type))
		w.WriteCompact(uint64(se.AdditionalSigned))
	}
}

// Pallet returns the pallet with the given name.
func (m *Metadata) Pallet(name string) (*Pallet, error) {
	for i := range m.Pallets {
		if m.Pallets[i].Name == name {
			return &m.Pallets[i], nil
		}
	}
	return nil, &NotFoundError{What: "pallet", Name: name}
}

// PalletByIndex returns the pallet with the given index.
func (m *Metadata) PalletByIndex(idx uint8) (*Pallet, error) {
	for i := range m.Pallets {
		if m.Pallets[i].Index == idx {
			return &m.Pallets[i], nil
		}
	}
	return nil, &NotFoundError{What: "pallet", Name: fmt.Sprintf("#%d", idx)}
}

// StorageEntry returns the given pallet storage entry.
func (m *Metadata) StorageEntry(pallet, entry string) (*StorageEntry, error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return nil, err
	}
	if p.Storage != nil {
		for i := range p.Storage.Entries {
			if p.Storage.Entries[i].Name == entry {
				return &p.Storage.Entries[i], nil
			}
		}
	}
	return nil, &NotFoundError{What: "storage entry", Name: pallet + "." + entry}
}

// StorageKey returns the key of the plain storage value.
func (m *Metadata) StorageKey(pallet, entry string) ([]byte, error) {
	e, err := m.StorageEntry(pallet, entry)
	if err != nil {
		return nil, err
	}
	if !e.Plain {
		return nil, fmt.Errorf("storage entry %s.%s is a map", pallet, entry)
	}
	prefix := pallet
	if p, _ := m.Pallet(pallet); p.Storage.Prefix != "" {
		prefix = p.Storage.Prefix
	}
	return hash.StorageKey(prefix, entry), nil
}

// Call returns the pallet index and the call variant with the given name.
func (m *Metadata) Call(pallet, call string) (uint8, *scale.VariantDef, error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return 0, nil, err
	}
	if p.Calls == nil {
		return 0, nil, &NotFoundError{What: "call", Name: pallet + "." + call}
	}
	t, err := m.Types.Type(*p.Calls)
	if err != nil {
		return 0, nil, err
	}
	vd, ok := t.VariantByName(call)
	if !ok {
		return 0, nil, &NotFoundError{What: "call", Name: pallet + "." + call}
	}
	return p.Index, vd, nil
}

// Constant decodes the given pallet constant.
func (m *Metadata) Constant(pallet, name string) (any, error) {
	p, err := m.Pallet(pallet)
	if err != nil {
		return nil, err
	}
	for _, c := range p.Constants {
		if c.Name == name {
			return m.Types.DecodeBytes(c.Type, c.Value)
		}
	}
	return nil, &NotFoundError{What: "constant", Name: pallet + "." + name}
}

// ExtrinsicParams returns the types UncheckedExtrinsic is parametrized with.
func (m *Metadata) ExtrinsicParams() (*ExtrinsicParams, error) {
	t, err := m.Types.Type(m.Extrinsic.Type)
	if err != nil {
		return nil, err
	}
	var res ExtrinsicParams
	for _, p := range []struct {
		name string
		dst  *uint32
	}{
		{"Address", &res.Address},
		{"Call", &res.Call},
		{"Signature", &res.Signature},
		{"Extra", &res.Extra},
	} {
		id, ok := t.Param(p.name)
		if !ok {
			return nil, fmt.Errorf("extrinsic type has no %s parameter", p.name)
		}
		*p.dst = id
	}
	return &res, nil
}

// ModuleError resolves a module error by pallet index and the first byte of
// its error code.
func (m *Metadata) ModuleError(index uint8, errBytes [4]byte) (*ModuleError, error) {
	p, err := m.PalletByIndex(index)
	if err != nil {
		return nil, err
	}
	if p.Errors == nil {
		return nil, &NotFoundError{What: "error", Name: fmt.Sprintf("%s#%d", p.Name, errBytes[0])}
	}
	t, err := m.Types.Type(*p.Errors)
	if err != nil {
		return nil, err
	}
	vd, ok := t.VariantByIndex(errBytes[0])
	if !ok {
		return nil, &NotFoundError{What: "error", Name: fmt.Sprintf("%s#%d", p.Name, errBytes[0])}
	}
	return &ModuleError{Pallet: p.Name, Name: vd.Name, Docs: vd.Docs}, nil
}

// String returns the "Pallet::Error" form of the error.
func (e *ModuleError) String() string {
	return e.Pallet + "::" + e.Name
}

func readID(r *io.BinReader) uint32 {
	v := r.ReadCompact()
	if r.Err == nil && v > 0xffffffff {
		r.Err = fmt.Errorf("type id %d is too big", v)
	}
	return uint32(v)
}

func readOptionalID(r *io.BinReader) *uint32 {
	if !r.ReadBool() {
		return nil
	}
	id := readID(r)
	return &id
}

func writeOptionalID(w *io.BinWriter, id *uint32) {
	w.WriteBool(id != nil)
	if id != nil {
		w.WriteCompact(uint64(*id))
	}
}

func readStrings(r *io.BinReader) []string {
	n := r.ReadLength()
	if n == 0 {
		return nil
	}
	res := make([]string, n)
	for i := range res {
		res[i] = r.ReadString()
	}
	return res
}

func writeStrings(w *io.BinWriter, ss []string) {
	w.WriteCompact(uint64(len(ss)))
	for _, s := range ss {
		w.WriteString(s)
	}
}
