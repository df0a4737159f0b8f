package result

import (
	"encoding/json"
	"fmt"
)

type (
	// RuntimeVersion is the state_getRuntimeVersion result.
	RuntimeVersion struct {
		SpecName           string `json:"specName"`
		ImplName           string `json:"implName"`
		AuthoringVersion   uint32 `json:"authoringVersion"`
		SpecVersion        uint32 `json:"specVersion"`
		ImplVersion        uint32 `json:"implVersion"`
		APIs               []API  `json:"apis"`
		TransactionVersion uint32 `json:"transactionVersion"`
		StateVersion       uint8  `json:"stateVersion"`
	}

	// API is a runtime API identifier (hex-encoded blake2b-64 of its name)
	// and its version.
	API struct {
		ID      string
		Version uint32
	}
)

// MarshalJSON implements the json.Marshaler interface.
func (a API) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.ID, a.Version})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *API) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("api entry: expected 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &a.ID); err != nil {
		return fmt.Errorf("api id: %w", err)
	}
	if err := json.Unmarshal(raw[1], &a.Version); err != nil {
		return fmt.Errorf("api version: %w", err)
	}
	return nil
}

// API returns the version of the runtime API with the given id.
func (v *RuntimeVersion) API(id string) (uint32, bool) {
	for _, a := range v.APIs {
		if a.ID == id {
			return a.Version, true
		}
	}
	return 0, false
}
