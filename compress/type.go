package compress

// Type identifies a payload cache compression algorithm.
type Type uint8

const (
	// TypeNone stores cached payloads uncompressed.
	TypeNone Type = 0x1
	// TypeZstd favors ratio; good for large embedded-model payloads held for
	// a long time.
	TypeZstd Type = 0x2
	// TypeS2 favors throughput over ratio.
	TypeS2 Type = 0x3
	// TypeLZ4 is the cache default: near-memcpy decompression keeps re-parse
	// of evicted-and-refetched tiles cheap.
	TypeLZ4 Type = 0x4
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeZstd:
		return "Zstd"
	case TypeS2:
		return "S2"
	case TypeLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
