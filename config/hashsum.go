package config

import (
	"encoding/json"
	"hash/fnv"
)

// Hashsum calculates FNV non-cryptographic hash suitable for checking the equality
func Hashsum(args ...any) ([]byte, error) {
	h := fnv.New128()
	enc := json.NewEncoder(h)
	for _, arg := range args {
		if err := enc.Encode(arg); err != nil {
			return nil, err
		}
	}
	return h.Sum(nil), nil
}
