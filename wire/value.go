package wire

import (
	"encoding/json"
	"fmt"
)

// EncodeValue serializes v the way every OwnedLocal/Owned/RefBorrow payload
// is serialized: plain JSON. Kept as a single chokepoint so every caller
// round-trips through the same encoding (spec.md §3 invariant 5).
func EncodeValue(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("wire: encode value: %w", err)
	}
	return string(b), nil
}

// DecodeValue is the generic inverse of EncodeValue.
func DecodeValue[T any](encoded string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(encoded), &v); err != nil {
		return v, fmt.Errorf("wire: decode value: %w", err)
	}
	return v, nil
}
