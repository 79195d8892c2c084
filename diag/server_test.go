package diag

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmxmxh/slabkit/slab"
)

type staticSource struct {
	rows []slab.SlabInfo
}

func (s *staticSource) PrintSlabSystemInfo() []slab.SlabInfo { return s.rows }

func TestServer_SnapshotOverWebsocket(t *testing.T) {
	srv, err := NewServer(&staticSource{rows: sampleRows()}, Config{
		PageSize:      4096,
		CacheLineSize: 64,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("snapshot")))

	msgType, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, msgType)

	rows, pageSize, cacheLine, err := DecodeSnapshot(payload)
	require.NoError(t, err)
	assert.Equal(t, uint32(4096), pageSize)
	assert.Equal(t, uint32(64), cacheLine)
	assert.Equal(t, sampleRows(), rows)
}

func TestServer_Snapshot(t *testing.T) {
	srv, err := NewServer(&staticSource{rows: sampleRows()}, Config{
		PageSize:      4096,
		CacheLineSize: 64,
	})
	require.NoError(t, err)

	payload, err := srv.Snapshot()
	require.NoError(t, err)

	rows, _, _, err := DecodeSnapshot(payload)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
