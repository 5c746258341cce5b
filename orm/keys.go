package orm

import "encoding/binary"

// CompositeKey joins given parts into a single key. Each part is prefixed
// with its length, so that no two different part lists produce the same key
// ("ab"+"c" and "a"+"bc" differ).
func CompositeKey(parts ...[]byte) []byte {
	size := 0
	for _, p := range parts {
		size += binary.MaxVarintLen64 + len(p)
	}
	key := make([]byte, 0, size)
	buf := make([]byte, binary.MaxVarintLen64)
	for _, p := range parts {
		n := binary.PutUvarint(buf, uint64(len(p)))
		key = append(key, buf[:n]...)
		key = append(key, p...)
	}
	return key
}
