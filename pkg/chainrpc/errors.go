package chainrpc

import (
	"encoding/json"
	"fmt"
)

// Error is a JSON-RPC 2.0 error returned by the node.
type Error struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Standard JSON-RPC error codes.
const (
	ParseErrorCode     = -32700
	InvalidRequestCode = -32600
	MethodNotFoundCode = -32601
	InvalidParamsCode  = -32602
	InternalErrorCode  = -32603
)

// Codes returned by the node's author API.
const (
	// PoolInvalidTxCode is returned for extrinsics failing validation.
	PoolInvalidTxCode = 1010
	// PoolUnknownValidityCode is returned when validity can't be determined.
	PoolUnknownValidityCode = 1011
	// PoolTemporarilyBannedCode is returned for recently rejected extrinsics.
	PoolTemporarilyBannedCode = 1012
	// PoolAlreadyImportedCode is returned for duplicates.
	PoolAlreadyImportedCode = 1013
	// PoolTooLowPriorityCode is returned when the nonce is already used.
	PoolTooLowPriorityCode = 1014
)

// NewError creates a new error with the given code and message.
func NewError(code int64, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("%s (%d)", e.Message, e.Code)
	}
	var s string
	if json.Unmarshal(e.Data, &s) == nil {
		return fmt.Sprintf("%s (%d) - %s", e.Message, e.Code, s)
	}
	return fmt.Sprintf("%s (%d) - %s", e.Message, e.Code, e.Data)
}

// Is denotes whether the error matches the target one by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}
