package section

// MagicTag identifies an instanced-model tile. It occupies the first four
// bytes of every tile.
const MagicTag = "i3dm"

// Version is the only tile format version this library implements.
const Version = 1

// HeaderSize is the fixed header size in bytes. The four variable-length
// sections (feature table JSON/binary, batch table JSON/binary) and the model
// payload follow immediately after, in that order.
const HeaderSize = 36

// Payload format values. The payload section either holds a UTF-8 URI
// referencing an external model, or the model bytes themselves.
const (
	PayloadFormatURI      uint32 = 0
	PayloadFormatEmbedded uint32 = 1
)

// Byte offsets of the fixed header fields.
const (
	magicOffset                    = 0
	versionOffset                  = 4
	byteLengthOffset               = 8
	featureTableJSONLengthOffset   = 12
	featureTableBinaryLengthOffset = 16
	batchTableJSONLengthOffset     = 20
	batchTableBinaryLengthOffset   = 24
	payloadLengthOffset            = 28
	payloadFormatOffset            = 32
)
