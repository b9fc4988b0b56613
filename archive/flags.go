package archive

import "github.com/unitydump/unityfs/format"

// Flags is the UnityFS header's bitfield: bits 0-5 select the
// descriptor's compression kind, the remaining bits are independent
// switches.
type Flags uint32

const (
	compressionMask Flags = 0x3F

	// FlagCombined marks the descriptor and block data as stored together
	// (informational only; the decoder doesn't special-case it).
	FlagCombined Flags = 1 << 6
	// FlagBlocksAtEnd marks the descriptor as living at the file tail
	// instead of immediately after the header.
	FlagBlocksAtEnd Flags = 1 << 7
	// FlagWebLegacy marks a legacy web-plugin archive.
	FlagWebLegacy Flags = 1 << 8
	// FlagPadBeforeBlocks marks that the reader must realign to a 16-byte
	// boundary after the descriptor, before the first storage block.
	FlagPadBeforeBlocks Flags = 1 << 9
)

// Compression extracts the descriptor's compression kind from the flags.
func (f Flags) Compression() format.CompressionKind {
	return format.CompressionKind(f & compressionMask)
}

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

// BlocksAtEnd reports the "descriptor at end of archive" bit.
func (f Flags) BlocksAtEnd() bool { return f.has(FlagBlocksAtEnd) }

// PadBeforeBlocks reports the "pad before blocks" bit.
func (f Flags) PadBeforeBlocks() bool { return f.has(FlagPadBeforeBlocks) }

// BlockFlags is a StorageBlock's per-block bitfield: bits 0-5 select its
// own compression kind (blocks may mix kinds within one descriptor, though
// in practice they don't), bit 6 marks it as streamed.
type BlockFlags uint16

const (
	blockCompressionMask BlockFlags = 0x3F
	// BlockStreamed marks a block as part of a streamed (audio/video)
	// resource; the decoder treats it identically to any other block.
	BlockStreamed BlockFlags = 1 << 6
)

// Compression extracts the block's compression kind.
func (f BlockFlags) Compression() format.CompressionKind {
	return format.CompressionKind(f & blockCompressionMask)
}

// Streamed reports the "streamed" bit.
func (f BlockFlags) Streamed() bool { return f&BlockStreamed != 0 }
