package archive

// Magic is the UnityFS container signature every archive begins with.
const Magic = "UnityFS\x00"

// Header is the outer container header, always read
// big-endian.
type Header struct {
	Version                     uint32
	EngineVersion               string
	EngineRevision              string
	Size                        int64
	CompressedDescriptorSize    uint32
	UncompressedDescriptorSize  uint32
	Flags                       Flags
}

// StorageBlock is one compressed region of the archive's concatenated
// uncompressed payload.
type StorageBlock struct {
	UncompressedSize uint32
	CompressedSize   int32
	Flags            BlockFlags
}

// Node is one logical file the archive's descriptor exposes, addressed by
// an offset/size range into the concatenated uncompressed payload.
type Node struct {
	Offset int64
	Size   int64
	Flags  uint32
	Name   string
}

// descriptor is the decompressed form of the archive's blocks-and-
// directory-info region.
type descriptor struct {
	Hash   [16]byte
	Blocks []StorageBlock
	Nodes  []Node
}
