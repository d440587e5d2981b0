package journal

import (
	"encoding/binary"
	"fmt"
	"math"
)

// encodeRecord lays a Record out as: seq(8) kind(1) dim(4) numIds(4)
// ids(4*numIds) numVectors(4) vectors(4*numVectors).
func encodeRecord(rec Record) []byte {
	size := 8 + 1 + 4 + 4 + 4*len(rec.Ids) + 4 + 4*len(rec.Vectors)
	buf := make([]byte, size)
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], rec.Seq)
	off += 8
	buf[off] = byte(rec.Kind)
	off++
	binary.LittleEndian.PutUint32(buf[off:], uint32(rec.Dim))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(rec.Ids)))
	off += 4
	for _, id := range rec.Ids {
		binary.LittleEndian.PutUint32(buf[off:], id)
		off += 4
	}
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(rec.Vectors)))
	off += 4
	for _, f := range rec.Vectors {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
		off += 4
	}
	return buf
}

func decodeRecord(buf []byte) (Record, error) {
	if len(buf) < 8+1+4+4 {
		return Record{}, fmt.Errorf("journal record too short: %d bytes", len(buf))
	}
	off := 0
	rec := Record{}
	rec.Seq = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	rec.Kind = OpKind(buf[off])
	off++
	rec.Dim = int(binary.LittleEndian.Uint32(buf[off:]))
	off += 4
	numIds := int(binary.LittleEndian.Uint32(buf[off:]))
	off += 4
	if len(buf) < off+4*numIds+4 {
		return Record{}, fmt.Errorf("journal record truncated in id list")
	}
	rec.Ids = make([]uint32, numIds)
	for i := 0; i < numIds; i++ {
		rec.Ids[i] = binary.LittleEndian.Uint32(buf[off:])
		off += 4
	}
	numVectors := int(binary.LittleEndian.Uint32(buf[off:]))
	off += 4
	if len(buf) < off+4*numVectors {
		return Record{}, fmt.Errorf("journal record truncated in vector block")
	}
	rec.Vectors = make([]float32, numVectors)
	for i := 0; i < numVectors; i++ {
		rec.Vectors[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
	}
	return rec, nil
}
