// Package serialize implements a single version-dispatched parser for the
// inner serialized-object-stream format (conventionally named with a
// "CAB-" prefix inside an archive), covering every format revision from 1
// through the revision 22 "large files" layout, rather than one
// near-duplicate parser per revision.
package serialize

import (
	"fmt"

	"github.com/unitydump/unityfs/endian"
	"github.com/unitydump/unityfs/errs"
)

// CommonHeader is the fixed 16-byte prefix every revision starts with
//, always big-endian.
type CommonHeader struct {
	MetadataSize uint32
	FileSize     uint32
	Version      uint32
	DataOffset   uint32
}

// ParseCommonHeader reads the common header, advancing r past it.
func ParseCommonHeader(r *endian.Reader) (CommonHeader, error) {
	var h CommonHeader

	var ok1, ok2, ok3, ok4 bool
	h.MetadataSize, ok1 = r.U32()
	h.FileSize, ok2 = r.U32()
	h.Version, ok3 = r.U32()
	h.DataOffset, ok4 = r.U32()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return h, fmt.Errorf("%w: common header truncated", errs.ErrParse)
	}

	return h, nil
}

// ExtendedHeader is the revision >= 22 "LargeFilesSupport" replacement for
// the file-size/data-offset pair, widened to u64, read immediately after
// the endianness byte and its 3 reserved bytes.
type ExtendedHeader struct {
	MetadataSize uint32 // duplicates CommonHeader.MetadataSize
	FileSize     uint64
	DataOffset   uint64
	Reserved     uint64
}

// ParseExtendedHeader reads the revision >= 22 extended header.
func ParseExtendedHeader(r *endian.Reader) (ExtendedHeader, error) {
	var h ExtendedHeader

	var ok1, ok2, ok3, ok4 bool
	h.MetadataSize, ok1 = r.U32()
	h.FileSize, ok2 = r.U64()
	h.DataOffset, ok3 = r.U64()
	h.Reserved, ok4 = r.U64()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return h, fmt.Errorf("%w: extended header truncated", errs.ErrParse)
	}

	return h, nil
}
