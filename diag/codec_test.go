package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmxmxh/slabkit/slab"
)

func sampleRows() []slab.SlabInfo {
	return []slab.SlabInfo{
		{
			Name: "mem_cache_boot", ObjectSize: 184, Align: 8,
			PerFrames: 0, PerObjects: 21, Total: 21, Used: 2,
			Limit: 16, Batch: 8, Local: 6, Shared: 0,
		},
		{
			Name: "malloc-128", ObjectSize: 128, Align: 8,
			PerFrames: 0, PerObjects: 30, Total: 30, Used: 1,
			Limit: 16, Batch: 8, Local: 7, Shared: 0,
		},
	}
}

func TestSnapshotCodec_RoundTrip(t *testing.T) {
	payload, err := EncodeSnapshot(sampleRows(), 4096, 64)
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	rows, pageSize, cacheLine, err := DecodeSnapshot(payload)
	require.NoError(t, err)
	assert.Equal(t, uint32(4096), pageSize)
	assert.Equal(t, uint32(64), cacheLine)
	assert.Equal(t, sampleRows(), rows)
}

func TestSnapshotCodec_Empty(t *testing.T) {
	payload, err := EncodeSnapshot(nil, 4096, 64)
	require.NoError(t, err)

	rows, _, _, err := DecodeSnapshot(payload)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSnapshotCodec_RejectsGarbage(t *testing.T) {
	_, _, _, err := DecodeSnapshot([]byte{0xff, 0x00, 0x13, 0x37})
	assert.Error(t, err)
}
