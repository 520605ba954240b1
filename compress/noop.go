package compress

// NoOpCodec bypasses compression. Useful when the cache holds few tiles and
// CPU matters more than memory, and for measuring codec overhead.
//
// Both methods return the input slice as-is without copying; callers must not
// mutate payloads after handing them to the cache.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

func (NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (NoOpCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
