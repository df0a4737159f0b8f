/*
Package chainrpc contains a set of types used for JSON-RPC communication with
Substrate nodes. It defines basic request/response/notification types, errors
and method names, results are defined in the result subpackage.
*/
package chainrpc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	// JSONRPCVersion is the only JSON-RPC protocol version supported.
	JSONRPCVersion = "2.0"
)

// Node methods used by the client.
const (
	ChainGetBlockHash      = "chain_getBlockHash"
	ChainGetBlock          = "chain_getBlock"
	StateGetRuntimeVersion = "state_getRuntimeVersion"
	StateGetMetadata       = "state_getMetadata"
	StateGetStorage        = "state_getStorage"
	StateCall              = "state_call"
	SystemAccountNextIndex = "system_accountNextIndex"
	SystemChain            = "system_chain"
	AuthorSubmitAndWatch   = "author_submitAndWatchExtrinsic"
	AuthorUnwatchExtrinsic = "author_unwatchExtrinsic"
	AuthorExtrinsicUpdate  = "author_extrinsicUpdate"
)

// Runtime API functions called via state_call.
const (
	ContractsAPICall        = "ContractsApi_call"
	ContractsAPIInstantiate = "ContractsApi_instantiate"
)

type (
	// Request represents JSON-RPC request.
	Request struct {
		// JSONRPC is the protocol version, only valid when it contains JSONRPCVersion.
		JSONRPC string `json:"jsonrpc"`
		// Method is the method being called.
		Method string `json:"method"`
		// Params is a set of method-specific parameters passed to the call.
		Params []any `json:"params"`
		// ID is an identifier associated with this request, the client uses
		// numeric identifiers.
		ID uint64 `json:"id"`
	}

	// Header is a generic JSON-RPC 2.0 response header (ID and JSON-RPC version).
	Header struct {
		ID      json.RawMessage `json:"id"`
		JSONRPC string          `json:"jsonrpc"`
	}

	// HeaderAndError adds an Error (that can be empty) to the Header, it's used
	// to construct type-specific responses.
	HeaderAndError struct {
		Header
		Error *Error `json:"error,omitempty"`
	}

	// Response represents a standard raw JSON-RPC 2.0
	// response: http://www.jsonrpc.org/specification#response_object.
	Response struct {
		HeaderAndError
		Result json.RawMessage `json:"result,omitempty"`
	}

	// Notification is a subscription update, it looks like a request without
	// ID, its params carry the subscription ID and the result.
	Notification struct {
		JSONRPC string             `json:"jsonrpc"`
		Method  string             `json:"method"`
		Params  NotificationParams `json:"params"`
	}

	// NotificationParams are the parameters of Notification.
	NotificationParams struct {
		Subscription SubscriptionID  `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	}
)

// SubscriptionID identifies a subscription, nodes use either strings or
// numbers for it.
type SubscriptionID string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *SubscriptionID) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = SubscriptionID(str)
		return nil
	}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid subscription id %s", data)
	}
	*s = SubscriptionID(strconv.FormatUint(n, 10))
	return nil
}

// NewRequest creates a new Request with the given id.
func NewRequest(id uint64, method string, params ...any) *Request {
	if params == nil {
		params = []any{}
	}
	return &Request{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  params,
		ID:      id,
	}
}
