// Package conversion holds the byte-level encode/decode helpers used by
// vamana's persistence layer. Keeping them in one place means the on-disk
// layout (little-endian, no padding) is defined exactly once.
package conversion

import (
	"encoding/binary"
	"math"
)

// Float32ToBytes encodes a float32 slice as little-endian bytes.
func Float32ToBytes(f []float32) []byte {
	b := make([]byte, len(f)*4)
	for i, v := range f {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// BytesToFloat32 decodes a little-endian byte slice into a float32 slice.
func BytesToFloat32(b []byte) []float32 {
	f := make([]float32, len(b)/4)
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return f
}

// EdgeListToBytes encodes a uint32 adjacency list as little-endian bytes.
func EdgeListToBytes(edges []uint32) []byte {
	b := make([]byte, len(edges)*4)
	for i, e := range edges {
		binary.LittleEndian.PutUint32(b[i*4:], e)
	}
	return b
}

// BytesToEdgeList decodes a little-endian byte slice into a uint32 adjacency
// list.
func BytesToEdgeList(b []byte) []uint32 {
	edges := make([]uint32, len(b)/4)
	for i := range edges {
		edges[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return edges
}

// Uint32ToBytes encodes a single uint32 as little-endian bytes.
func Uint32ToBytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// BytesToUint32 decodes a little-endian uint32.
func BytesToUint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
