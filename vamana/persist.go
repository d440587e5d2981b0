package vamana

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/annvector/vamana/config"
	"github.com/annvector/vamana/conversion"
	"github.com/annvector/vamana/journal"
	"github.com/annvector/vamana/store"
	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
)

const (
	magic         uint32 = 0x564d4e41 // "VMNA"
	formatVersion uint32 = 1
)

// Save writes the index as header + vector block + adjacency block + a
// trailing xxhash checksum of both blocks, per spec §4.10. Tombstone flags
// are not persisted: callers must Consolidate first, or accept that
// tombstoned vertices become live again on Load.
func (ix *Index) Save(path string) error {
	ix.buildMu.RLock()
	defer ix.buildMu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Cause: err}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	hasher := xxhash.New()
	mw := &multiWriter{w: w, h: hasher}

	n := ix.vs.Count()
	medoid, _ := ix.Medoid()

	header := make([]byte, 0, 32)
	header = append(header, conversion.Uint32ToBytes(magic)...)
	header = append(header, conversion.Uint32ToBytes(formatVersion)...)
	header = append(header, conversion.Uint32ToBytes(uint32(ix.cfg.Dim))...)
	header = append(header, conversion.Uint32ToBytes(uint32(ix.cfg.AlignedDim()))...)
	header = append(header, conversion.Uint32ToBytes(metricCode(ix.cfg.Metric))...)
	header = append(header, conversion.Uint32ToBytes(uint32(ix.cfg.R))...)
	header = append(header, conversion.Uint32ToBytes(n)...)
	header = append(header, conversion.Uint32ToBytes(medoid)...)
	if _, err := w.Write(header); err != nil {
		return &IOError{Path: path, Cause: err}
	}

	alignedDim := ix.cfg.AlignedDim()
	for id := uint32(0); id < n; id++ {
		v, ok := ix.vs.Get(id)
		if !ok {
			return &InternalError{Diagnostic: fmt.Sprintf("vertex %d missing from vector store during save", id)}
		}
		if err := mw.write(conversion.Float32ToBytes(v[:alignedDim])); err != nil {
			return &IOError{Path: path, Cause: err}
		}
	}

	for id := uint32(0); id < n; id++ {
		neighbors := ix.gs.Neighbors(id)
		if err := mw.write(conversion.Uint32ToBytes(uint32(len(neighbors)))); err != nil {
			return &IOError{Path: path, Cause: err}
		}
		if err := mw.write(conversion.EdgeListToBytes(neighbors)); err != nil {
			return &IOError{Path: path, Cause: err}
		}
	}

	sum := hasher.Sum64()
	if err := binary.Write(w, binary.LittleEndian, sum); err != nil {
		return &IOError{Path: path, Cause: err}
	}

	if err := w.Flush(); err != nil {
		return &IOError{Path: path, Cause: err}
	}

	if ix.journal != nil {
		if err := ix.journal.Checkpoint(); err != nil {
			ix.logger.Warn().Err(err).Msg("could not checkpoint journal after save")
		}
	}
	return nil
}

// Load reconstructs an Index from a file written by Save, validating the
// magic, version, and checksum, then rebuilding per-vertex locks fresh
// (spec §4.10). If an Option supplies a journal newer than this snapshot,
// the caller is expected to call Index.ReplayJournal afterwards.
func Load(path string, opts ...Option) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Cause: err}
	}
	defer f.Close()

	r := bufio.NewReader(f)
	hasher := xxhash.New()
	mr := &multiReader{r: r, h: hasher}

	headerBuf := make([]byte, 32)
	if _, err := readFull(r, headerBuf); err != nil {
		return nil, &IOError{Path: path, Cause: err}
	}

	gotMagic := conversion.BytesToUint32(headerBuf[0:4])
	if gotMagic != magic {
		return nil, &CorruptError{Reason: "bad magic"}
	}
	version := conversion.BytesToUint32(headerBuf[4:8])
	if version != formatVersion {
		return nil, &CorruptError{Reason: fmt.Sprintf("unsupported version %d", version)}
	}
	dim := int(conversion.BytesToUint32(headerBuf[8:12]))
	alignedDim := int(conversion.BytesToUint32(headerBuf[12:16]))
	metricC := conversion.BytesToUint32(headerBuf[16:20])
	r32 := int(conversion.BytesToUint32(headerBuf[20:24]))
	n := conversion.BytesToUint32(headerBuf[24:28])
	medoid := conversion.BytesToUint32(headerBuf[28:32])

	if alignedDim != (dim+7)/8*8 {
		return nil, &CorruptError{Reason: "aligned_dim does not match dim"}
	}

	cfg := config.Config{
		Metric:   metricName(metricC),
		Dim:      dim,
		Capacity: n,
		R:        r32,
		LBuild:   r32 + 25,
		Alpha:    1.2,
	}
	if n == 0 {
		cfg.Capacity = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, &CorruptError{Reason: fmt.Sprintf("persisted config invalid: %v", err)}
	}

	vs, err := store.New(dim, alignedDim, cfg.Metric, cfg.Capacity)
	if err != nil {
		return nil, err
	}
	gs := store.NewGraphStore(cfg.Capacity, r32)

	for id := uint32(0); id < n; id++ {
		buf, err := mr.read(alignedDim * 4)
		if err != nil {
			return nil, &IOError{Path: path, Cause: err}
		}
		vec := conversion.BytesToFloat32(buf)
		gotId, err := vs.Append(vec[:dim])
		if err != nil {
			return nil, err
		}
		if gotId != id {
			return nil, &CorruptError{Reason: "vector block id sequence mismatch"}
		}
		gs.AddVertex()
	}

	for id := uint32(0); id < n; id++ {
		degreeBuf, err := mr.read(4)
		if err != nil {
			return nil, &IOError{Path: path, Cause: err}
		}
		degree := conversion.BytesToUint32(degreeBuf)
		edgeBuf, err := mr.read(int(degree) * 4)
		if err != nil {
			return nil, &IOError{Path: path, Cause: err}
		}
		gs.SetNeighbors(id, conversion.BytesToEdgeList(edgeBuf))
	}

	var onDiskSum uint64
	if err := binary.Read(r, binary.LittleEndian, &onDiskSum); err != nil {
		return nil, &IOError{Path: path, Cause: err}
	}
	if onDiskSum != hasher.Sum64() {
		return nil, &CorruptError{Reason: "checksum mismatch"}
	}

	ix := &Index{
		cfg:    cfg,
		vs:     vs,
		gs:     gs,
		logger: log.With().Str("component", "vamana.Index").Logger(),
	}
	if n > 0 {
		ix.setMedoid(medoid)
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// ReplayJournal applies every record in j in sequence order — used after
// Load when a journal newer than the loaded snapshot is attached, to
// recover mutations made since the last Save.
func (ix *Index) ReplayJournal(j *journal.Journal) error {
	return j.Replay(func(rec journal.Record) error {
		switch rec.Kind {
		case journal.OpInsert:
			return ix.Insert(context.Background(), []Vector{{Values: rec.Vectors[:rec.Dim]}})
		case journal.OpSoftDelete:
			return ix.SoftDelete(rec.Ids...)
		default:
			return &InternalError{Diagnostic: fmt.Sprintf("unknown journal record kind %d", rec.Kind)}
		}
	})
}

func metricCode(metric string) uint32 {
	if metric == "cosine" {
		return 1
	}
	return 0
}

func metricName(code uint32) string {
	if code == 1 {
		return "cosine"
	}
	return "l2"
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// multiWriter writes to w while also feeding h, so the checksum covers
// exactly the vector and adjacency blocks without a second pass over the
// file.
type multiWriter struct {
	w *bufio.Writer
	h *xxhash.Digest
}

func (mw *multiWriter) write(b []byte) error {
	if _, err := mw.w.Write(b); err != nil {
		return err
	}
	_, err := mw.h.Write(b)
	return err
}

type multiReader struct {
	r *bufio.Reader
	h *xxhash.Digest
}

func (mr *multiReader) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := readFull(mr.r, buf); err != nil {
		return nil, err
	}
	if _, err := mr.h.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
