package kafka

import "encoding/json"

// MustMarshal encodes values that are known to be encodable, like envelopes
// built from plain structs.
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
