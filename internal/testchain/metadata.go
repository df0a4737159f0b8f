package testchain

import (
	"encoding/hex"

	"github.com/vne-network/priceoracle-go/pkg/core/metadata"
	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/scale"
)

// Pallet indices of the test runtime.
const (
	SystemIndex    = 0
	BalancesIndex  = 10
	ContractsIndex = 40
)

// Contracts pallet error indices of the test runtime.
const (
	ErrOutOfGas          = 1
	ErrContractNotFound  = 2
	ErrContractTrapped   = 3
	ErrStorageDepositLim = 4
)

type typeBuilder struct {
	types []*scale.Type
}

func (b *typeBuilder) add(t *scale.Type) uint32 {
	t.ID = uint32(len(b.types))
	b.types = append(b.types, t)
	return t.ID
}

func (b *typeBuilder) prim(p scale.Primitive) uint32 {
	return b.add(&scale.Type{Kind: scale.KindPrimitive, Primitive: p})
}

func (b *typeBuilder) composite(path []string, fields ...scale.Field) uint32 {
	return b.add(&scale.Type{Kind: scale.KindComposite, Path: path, Fields: fields})
}

func (b *typeBuilder) variant(path []string, vs ...scale.VariantDef) uint32 {
	return b.add(&scale.Type{Kind: scale.KindVariant, Path: path, Variants: vs})
}

func field(name string, id uint32) scale.Field {
	return scale.Field{Name: name, Type: id}
}

func simpleEnum(path []string, names ...string) *scale.Type {
	t := &scale.Type{Kind: scale.KindVariant, Path: path}
	for i, n := range names {
		t.Variants = append(t.Variants, scale.VariantDef{Name: n, Index: uint8(i)})
	}
	return t
}

// Metadata returns runtime metadata of a minimal chain with System, Balances
// and Contracts pallets and Ethereum-style accounts.
func Metadata() *metadata.Metadata {
	b := new(typeBuilder)
	u8 := b.prim(scale.U8)
	u32 := b.prim(scale.U32)
	u64 := b.prim(scale.U64)
	u128 := b.prim(scale.U128)
	unit := b.add(&scale.Type{Kind: scale.KindTuple})
	bytes := b.add(&scale.Type{Kind: scale.KindSequence, Elem: u8})
	arr4 := b.add(&scale.Type{Kind: scale.KindArray, Len: 4, Elem: u8})
	arr20 := b.add(&scale.Type{Kind: scale.KindArray, Len: 20, Elem: u8})
	arr32 := b.add(&scale.Type{Kind: scale.KindArray, Len: 32, Elem: u8})
	arr65 := b.add(&scale.Type{Kind: scale.KindArray, Len: 65, Elem: u8})
	cu32 := b.add(&scale.Type{Kind: scale.KindCompact, Elem: u32})
	cu64 := b.add(&scale.Type{Kind: scale.KindCompact, Elem: u64})
	cu128 := b.add(&scale.Type{Kind: scale.KindCompact, Elem: u128})

	account := b.composite([]string{"fp_account", "AccountId20"}, field("", arr20))
	h256 := b.composite([]string{"primitive_types", "H256"}, field("", arr32))
	topics := b.add(&scale.Type{Kind: scale.KindSequence, Elem: h256})
	ecdsaSig := b.composite([]string{"sp_core", "ecdsa", "Signature"}, field("", arr65))
	ethSig := b.composite([]string{"fp_account", "EthereumSignature"}, field("", ecdsaSig))
	optCu128 := b.variant([]string{"Option"},
		scale.VariantDef{Name: "None", Index: 0},
		scale.VariantDef{Name: "Some", Index: 1, Fields: []scale.Field{field("", cu128)}})
	optH256 := b.variant([]string{"Option"},
		scale.VariantDef{Name: "None", Index: 0},
		scale.VariantDef{Name: "Some", Index: 1, Fields: []scale.Field{field("", h256)}})
	weight := b.composite([]string{"sp_weights", "weight_v2", "Weight"},
		field("ref_time", cu64), field("proof_size", cu64))

	// Dispatch results.
	dispatchClass := b.add(simpleEnum([]string{"frame_support", "dispatch", "DispatchClass"}, "Normal", "Operational", "Mandatory"))
	pays := b.add(simpleEnum([]string{"frame_support", "dispatch", "Pays"}, "Yes", "No"))
	dispatchInfo := b.composite([]string{"frame_support", "dispatch", "DispatchInfo"},
		field("weight", weight), field("class", dispatchClass), field("pays_fee", pays))
	moduleError := b.composite([]string{"sp_runtime", "ModuleError"}, field("index", u8), field("error", arr4))
	tokenError := b.add(simpleEnum([]string{"sp_runtime", "TokenError"}, "FundsUnavailable", "OnlyProvider", "BelowMinimum", "CannotCreate", "UnknownAsset", "Frozen", "Unsupported"))
	arithError := b.add(simpleEnum([]string{"sp_arithmetic", "ArithmeticError"}, "Underflow", "Overflow", "DivisionByZero"))
	txError := b.add(simpleEnum([]string{"sp_runtime", "TransactionalError"}, "LimitReached", "NoLayer"))
	dispatchError := b.variant([]string{"sp_runtime", "DispatchError"},
		scale.VariantDef{Name: "Other", Index: 0},
		scale.VariantDef{Name: "CannotLookup", Index: 1},
		scale.VariantDef{Name: "BadOrigin", Index: 2},
		scale.VariantDef{Name: "Module", Index: 3, Fields: []scale.Field{field("", moduleError)}},
		scale.VariantDef{Name: "ConsumerRemaining", Index: 4},
		scale.VariantDef{Name: "NoProviders", Index: 5},
		scale.VariantDef{Name: "TooManyConsumers", Index: 6},
		scale.VariantDef{Name: "Token", Index: 7, Fields: []scale.Field{field("", tokenError)}},
		scale.VariantDef{Name: "Arithmetic", Index: 8, Fields: []scale.Field{field("", arithError)}},
		scale.VariantDef{Name: "Transactional", Index: 9, Fields: []scale.Field{field("", txError)}},
		scale.VariantDef{Name: "Exhausted", Index: 10},
		scale.VariantDef{Name: "Corruption", Index: 11},
		scale.VariantDef{Name: "Unavailable", Index: 12},
		scale.VariantDef{Name: "RootNotAllowed", Index: 13},
	)

	// Pallet calls, events and errors.
	systemEvent := b.variant([]string{"frame_system", "pallet", "Event"},
		scale.VariantDef{Name: "ExtrinsicSuccess", Index: 0, Fields: []scale.Field{field("dispatch_info", dispatchInfo)}},
		scale.VariantDef{Name: "ExtrinsicFailed", Index: 1, Fields: []scale.Field{
			field("dispatch_error", dispatchError), field("dispatch_info", dispatchInfo)}},
		scale.VariantDef{Name: "NewAccount", Index: 3, Fields: []scale.Field{field("account", account)}},
	)
	systemError := b.add(simpleEnum([]string{"frame_system", "pallet", "Error"},
		"InvalidSpecName", "SpecVersionNeedsToIncrease", "FailedToExtractRuntimeVersion", "NonDefaultComposite", "NonZeroRefCount", "CallFiltered"))
	balancesEvent := b.variant([]string{"pallet_balances", "pallet", "Event"},
		scale.VariantDef{Name: "Transfer", Index: 2, Fields: []scale.Field{
			field("from", account), field("to", account), field("amount", u128)}},
		scale.VariantDef{Name: "Withdraw", Index: 8, Fields: []scale.Field{field("who", account), field("amount", u128)}},
	)
	balancesError := b.add(simpleEnum([]string{"pallet_balances", "pallet", "Error"},
		"VestingBalance", "LiquidityRestrictions", "InsufficientBalance", "ExistentialDeposit"))
	contractsCall := b.variant([]string{"pallet_contracts", "pallet", "Call"},
		scale.VariantDef{Name: "call", Index: 6, Fields: []scale.Field{
			field("dest", account), field("value", cu128), field("gas_limit", weight),
			field("storage_deposit_limit", optCu128), field("data", bytes)}},
		scale.VariantDef{Name: "instantiate_with_code", Index: 7, Fields: []scale.Field{
			field("value", cu128), field("gas_limit", weight), field("storage_deposit_limit", optCu128),
			field("code", bytes), field("data", bytes), field("salt", bytes)}},
	)
	contractsEvent := b.variant([]string{"pallet_contracts", "pallet", "Event"},
		scale.VariantDef{Name: "Instantiated", Index: 0, Fields: []scale.Field{
			field("deployer", account), field("contract", account)}},
		scale.VariantDef{Name: "ContractEmitted", Index: 3, Fields: []scale.Field{
			field("contract", account), field("data", bytes)}},
		scale.VariantDef{Name: "CodeStored", Index: 4, Fields: []scale.Field{field("code_hash", h256)}},
		scale.VariantDef{Name: "Called", Index: 8, Fields: []scale.Field{
			field("caller", account), field("contract", account)}},
	)
	contractsError := b.add(simpleEnum([]string{"pallet_contracts", "pallet", "Error"},
		"InvalidSchedule", "OutOfGas", "ContractNotFound", "ContractTrapped", "StorageDepositLimitExhausted", "DuplicateContract"))

	runtimeCall := b.variant([]string{"runtime", "RuntimeCall"},
		scale.VariantDef{Name: "Contracts", Index: ContractsIndex, Fields: []scale.Field{field("", contractsCall)}})
	runtimeEvent := b.variant([]string{"runtime", "RuntimeEvent"},
		scale.VariantDef{Name: "System", Index: SystemIndex, Fields: []scale.Field{field("", systemEvent)}},
		scale.VariantDef{Name: "Balances", Index: BalancesIndex, Fields: []scale.Field{field("", balancesEvent)}},
		scale.VariantDef{Name: "Contracts", Index: ContractsIndex, Fields: []scale.Field{field("", contractsEvent)}},
	)
	phase := b.variant([]string{"frame_system", "Phase"},
		scale.VariantDef{Name: "ApplyExtrinsic", Index: 0, Fields: []scale.Field{field("", u32)}},
		scale.VariantDef{Name: "Finalization", Index: 1},
		scale.VariantDef{Name: "Initialization", Index: 2},
	)
	eventRecord := b.composite([]string{"frame_system", "EventRecord"},
		field("phase", phase), field("event", runtimeEvent), field("topics", topics))
	events := b.add(&scale.Type{Kind: scale.KindSequence, Elem: eventRecord})

	// Signed extensions.
	era := b.add(simpleEnum([]string{"sp_runtime", "generic", "era", "Era"}, "Immortal"))
	nonZeroSender := b.composite([]string{"frame_system", "extensions", "check_non_zero_sender", "CheckNonZeroSender"})
	specVersion := b.composite([]string{"frame_system", "extensions", "check_spec_version", "CheckSpecVersion"})
	txVersion := b.composite([]string{"frame_system", "extensions", "check_tx_version", "CheckTxVersion"})
	genesis := b.composite([]string{"frame_system", "extensions", "check_genesis", "CheckGenesis"})
	mortality := b.composite([]string{"frame_system", "extensions", "check_mortality", "CheckMortality"}, field("", era))
	nonce := b.composite([]string{"frame_system", "extensions", "check_nonce", "CheckNonce"}, field("", cu32))
	checkWeight := b.composite([]string{"frame_system", "extensions", "check_weight", "CheckWeight"})
	payment := b.composite([]string{"pallet_transaction_payment", "ChargeTransactionPayment"}, field("", cu128))
	mode := b.add(simpleEnum([]string{"frame_metadata_hash_extension", "Mode"}, "Disabled", "Enabled"))
	metadataHash := b.composite([]string{"frame_metadata_hash_extension", "CheckMetadataHash"}, field("mode", mode))
	extra := b.add(&scale.Type{Kind: scale.KindTuple, Tuple: []uint32{
		nonZeroSender, specVersion, txVersion, genesis, mortality, nonce, checkWeight, payment, metadataHash}})

	extrinsic := b.add(&scale.Type{
		Kind: scale.KindSequence,
		Elem: u8,
		Path: []string{"sp_runtime", "generic", "unchecked_extrinsic", "UncheckedExtrinsic"},
		Params: []scale.TypeParam{
			{Name: "Address", Type: &account},
			{Name: "Call", Type: &runtimeCall},
			{Name: "Signature", Type: &ethSig},
			{Name: "Extra", Type: &extra},
		},
	})
	runtime := b.composite([]string{"runtime", "Runtime"})

	reg, err := scale.NewRegistry(b.types)
	if err != nil {
		panic(err)
	}
	return &metadata.Metadata{
		Types: reg,
		Pallets: []metadata.Pallet{
			{
				Name:  "System",
				Index: SystemIndex,
				Storage: &metadata.Storage{
					Prefix: "System",
					Entries: []metadata.StorageEntry{
						{Name: "Events", Modifier: metadata.Default, Plain: true, Value: events, Default: []byte{0}},
						{Name: "Number", Modifier: metadata.Default, Plain: true, Value: u32, Default: []byte{0, 0, 0, 0}},
					},
				},
				Events: &systemEvent,
				Constants: []metadata.Constant{
					{Name: "SS58Prefix", Type: u32, Value: []byte{0x2a, 0, 0, 0}},
				},
				Errors: &systemError,
			},
			{
				Name:   "Balances",
				Index:  BalancesIndex,
				Events: &balancesEvent,
				Constants: []metadata.Constant{
					{Name: "ExistentialDeposit", Type: u128, Value: make([]byte, 16)},
				},
				Errors: &balancesError,
			},
			{
				Name:   "Contracts",
				Index:  ContractsIndex,
				Calls:  &contractsCall,
				Events: &contractsEvent,
				Errors: &contractsError,
			},
		},
		Extrinsic: metadata.Extrinsic{
			Type:    extrinsic,
			Version: 4,
			SignedExtensions: []metadata.SignedExtension{
				{Identifier: "CheckNonZeroSender", Type: nonZeroSender, AdditionalSigned: unit},
				{Identifier: "CheckSpecVersion", Type: specVersion, AdditionalSigned: u32},
				{Identifier: "CheckTxVersion", Type: txVersion, AdditionalSigned: u32},
				{Identifier: "CheckGenesis", Type: genesis, AdditionalSigned: h256},
				{Identifier: "CheckMortality", Type: mortality, AdditionalSigned: h256},
				{Identifier: "CheckNonce", Type: nonce, AdditionalSigned: unit},
				{Identifier: "CheckWeight", Type: checkWeight, AdditionalSigned: unit},
				{Identifier: "ChargeTransactionPayment", Type: payment, AdditionalSigned: unit},
				{Identifier: "CheckMetadataHash", Type: metadataHash, AdditionalSigned: optH256},
			},
		},
		RuntimeType: runtime,
	}
}

// MetadataBytes returns SCALE-encoded test metadata.
func MetadataBytes() []byte {
	b, err := io.ToBytes(Metadata())
	if err != nil {
		panic(err)
	}
	return b
}

// MetadataHex returns test metadata the way state_getMetadata returns it.
func MetadataHex() string {
	return "0x" + hex.EncodeToString(MetadataBytes())
}
