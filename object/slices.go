package object

import "github.com/unitydump/unityfs/endian"

// Float32Slice reconstructs a `vector<float>` field, fast-pathed from bulk
// form when the schema allows it.
func (o *Object) Float32Slice(path string) ([]float32, error) {
	return numericSlice(o, path, "float", (*endian.Reader).F32)
}

// Float64Slice reconstructs a `vector<double>` field.
func (o *Object) Float64Slice(path string) ([]float64, error) {
	return numericSlice(o, path, "double", (*endian.Reader).F64)
}

// Uint8Slice reconstructs a byte/char vector field via the typed-slice
// path rather than arrayBytes, for callers that want the UInt8 type check.
func (o *Object) Uint8Slice(path string) ([]uint8, error) {
	return numericSlice(o, path, "UInt8", (*endian.Reader).U8)
}

// Int8Slice reconstructs a `vector<SInt8>` field.
func (o *Object) Int8Slice(path string) ([]int8, error) {
	return numericSlice(o, path, "SInt8", (*endian.Reader).I8)
}

// Uint16Slice reconstructs a `vector<UInt16>` field.
func (o *Object) Uint16Slice(path string) ([]uint16, error) {
	return numericSlice(o, path, "UInt16", (*endian.Reader).U16)
}

// Int16Slice reconstructs a `vector<SInt16>` field.
func (o *Object) Int16Slice(path string) ([]int16, error) {
	return numericSlice(o, path, "SInt16", (*endian.Reader).I16)
}

// Uint32Slice reconstructs a `vector<UInt32>` field.
func (o *Object) Uint32Slice(path string) ([]uint32, error) {
	return numericSlice(o, path, "UInt32", (*endian.Reader).U32)
}

// Int32Slice reconstructs a `vector<SInt32>` field.
func (o *Object) Int32Slice(path string) ([]int32, error) {
	return numericSlice(o, path, "SInt32", (*endian.Reader).I32)
}

// Uint64Slice reconstructs a `vector<UInt64>` field.
func (o *Object) Uint64Slice(path string) ([]uint64, error) {
	return numericSlice(o, path, "UInt64", (*endian.Reader).U64)
}

// Int64Slice reconstructs a `vector<SInt64>` field.
func (o *Object) Int64Slice(path string) ([]int64, error) {
	return numericSlice(o, path, "SInt64", (*endian.Reader).I64)
}
