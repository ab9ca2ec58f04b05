package cache

import "encoding/json"

// Cache values are compact JSON. A value that fails to decode (schema drift,
// partial write) is treated exactly like an absent key.

func encode(v any) ([]byte, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return data, true
}

func decode[T any](data []byte) (T, bool) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}
