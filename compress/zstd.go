package compress

// ZstdCodec compresses payloads with Zstandard. Best ratio of the available
// codecs; use it when the cache holds many large embedded-model payloads and
// memory is the constraint.
//
// Two implementations exist behind the same type: the cgo-backed gozstd
// binding when cgo is available, and the pure-Go klauspost decoder otherwise.
// The compressed bytes are interchangeable.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}
