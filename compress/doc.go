// Package compress provides general-purpose whole-buffer compression
// shared across this module's layers that aren't the archive's own
// per-block codec path.
//
// The UnityFS block codecs live in archive/compress and are selected by
// the archive's own per-block compression kind, where the uncompressed
// size is always known ahead of time. This package instead backs
// whole-buffer compression needs elsewhere in the module — principally
// the schema package's external type-tree archive, distributed as a
// single zstd-compressed tar stream.
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Only Zstandard is registered as a built-in codec: it's the sole
// algorithm this module's own code reaches for. GetCodec is keyed by
// name rather than hardcoding NewZstdCompressor() at call sites so a
// caller building tooling on top of this decoder can swap in its own
// Codec implementation for other whole-buffer compression needs.
//
//	codec, _ := compress.GetCodec("zstd")
//	compressed, _ := codec.Compress(data)
//	original, _ := codec.Decompress(compressed)
//
// # Thread Safety
//
// ZstdCompressor is safe for concurrent use: it holds no instance state.
// The pure-Go build (!cgo) draws its encoder and decoder from sync.Pool on
// each call; the cgo build calls gozstd's one-shot functions.
package compress
