// Package diag exposes live slab-system diagnostics to external
// monitors: capnp-encoded, brotli-compressed snapshots of every
// registered cache's SlabInfo row, streamed over a websocket. It sits
// entirely outside the allocator's hot path; nothing in the slab
// engine depends on it.
package diag

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
	capnp "zombiezen.com/go/capnproto2"

	diagv1 "github.com/nmxmxh/slabkit/gen/diag/v1"
	"github.com/nmxmxh/slabkit/slab"
)

// EncodeSnapshot serializes the given SlabInfo rows plus the system's
// page and cache-line sizes into a brotli-compressed capnp Snapshot
// message.
func EncodeSnapshot(rows []slab.SlabInfo, pageSize, cacheLineSize uint32) ([]byte, error) {
	msg, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	if err != nil {
		return nil, err
	}
	snap, err := diagv1.NewRootSnapshot(seg)
	if err != nil {
		return nil, err
	}
	snap.SetPageSize(pageSize)
	snap.SetCacheLineSize(cacheLineSize)

	list, err := snap.NewCaches(int32(len(rows)))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		ci := list.At(i)
		if err := ci.SetName(row.Name); err != nil {
			return nil, err
		}
		ci.SetObjectSize(row.ObjectSize)
		ci.SetAlign(row.Align)
		ci.SetPerFrames(row.PerFrames)
		ci.SetPerObjects(row.PerObjects)
		ci.SetTotal(row.Total)
		ci.SetUsed(row.Used)
		ci.SetLimit(row.Limit)
		ci.SetBatch(row.Batch)
		ci.SetLocal(row.Local)
		ci.SetShared(row.Shared)
	}

	raw, err := msg.Marshal()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot reverses EncodeSnapshot: decompress, unmarshal, and
// flatten back into SlabInfo rows.
func DecodeSnapshot(data []byte) ([]slab.SlabInfo, uint32, uint32, error) {
	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, 0, 0, err
	}
	msg, err := capnp.Unmarshal(raw)
	if err != nil {
		return nil, 0, 0, err
	}
	snap, err := diagv1.ReadRootSnapshot(msg)
	if err != nil {
		return nil, 0, 0, err
	}
	list, err := snap.Caches()
	if err != nil {
		return nil, 0, 0, err
	}

	rows := make([]slab.SlabInfo, list.Len())
	for i := 0; i < list.Len(); i++ {
		ci := list.At(i)
		name, err := ci.Name()
		if err != nil {
			return nil, 0, 0, err
		}
		rows[i] = slab.SlabInfo{
			Name:       name,
			ObjectSize: ci.ObjectSize(),
			Align:      ci.Align(),
			PerFrames:  ci.PerFrames(),
			PerObjects: ci.PerObjects(),
			Total:      ci.Total(),
			Used:       ci.Used(),
			Limit:      ci.Limit(),
			Batch:      ci.Batch(),
			Local:      ci.Local(),
			Shared:     ci.Shared(),
		}
	}
	return rows, snap.PageSize(), snap.CacheLineSize(), nil
}
