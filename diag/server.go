package diag

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yasserelgammal/rate-limiter/limiter"
	"github.com/yasserelgammal/rate-limiter/store"

	"github.com/nmxmxh/slabkit/internal/obslog"
	"github.com/nmxmxh/slabkit/slab"
)

// SnapshotSource is anything that can produce the current set of
// SlabInfo rows; slabkit.System satisfies it.
type SnapshotSource interface {
	PrintSlabSystemInfo() []slab.SlabInfo
}

// Config tunes a diagnostics Server.
type Config struct {
	// PageSize and CacheLineSize are stamped into each snapshot so a
	// dashboard can interpret the rows without out-of-band knowledge.
	PageSize      uint32
	CacheLineSize uint32

	// SnapshotsPerSecond caps how often a single remote peer may pull a
	// snapshot; each pull walks the registry under its lock, so an
	// over-eager monitor must not be able to turn stats collection into
	// a denial of service. Defaults to 4.
	SnapshotsPerSecond int64

	// Burst is the token-bucket burst size. Defaults to 8.
	Burst int64

	Logger *obslog.Logger
}

// Server streams slab-system snapshots to websocket clients. Each
// text frame received ("snapshot") triggers one capnp+brotli-encoded
// binary frame in response, subject to the per-peer rate limit.
type Server struct {
	src      SnapshotSource
	cfg      Config
	upgrader websocket.Upgrader
	limiter  *limiter.TokenBucket
	log      *obslog.Logger
}

// NewServer wires a Server over src.
func NewServer(src SnapshotSource, cfg Config) (*Server, error) {
	if cfg.SnapshotsPerSecond == 0 {
		cfg.SnapshotsPerSecond = 4
	}
	if cfg.Burst == 0 {
		cfg.Burst = 8
	}
	if cfg.Logger == nil {
		cfg.Logger = obslog.Default().With("diag")
	}

	tb, err := limiter.NewTokenBucket(
		limiter.Config{
			Rate:     cfg.SnapshotsPerSecond,
			Duration: time.Second,
			Burst:    cfg.Burst,
		},
		store.NewMemoryStore(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &Server{
		src:     src,
		cfg:     cfg,
		limiter: tb,
		log:     cfg.Logger,
	}, nil
}

// ServeHTTP upgrades the request to a websocket and serves snapshot
// pulls until the peer disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", obslog.Err(err))
		return
	}
	defer conn.Close()

	peer := r.RemoteAddr
	s.log.Debug("diag peer connected", obslog.String("peer", peer))

	for {
		msgType, _, err := conn.ReadMessage()
		if err != nil {
			s.log.Debug("diag peer disconnected", obslog.String("peer", peer))
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if !s.limiter.Allow(peer) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte("rate limited")); err != nil {
				return
			}
			continue
		}
		payload, err := s.Snapshot()
		if err != nil {
			s.log.Error("snapshot encode failed", obslog.Err(err))
			return
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			return
		}
	}
}

// Snapshot produces one encoded snapshot of the current registry
// state.
func (s *Server) Snapshot() ([]byte, error) {
	return EncodeSnapshot(s.src.PrintSlabSystemInfo(), s.cfg.PageSize, s.cfg.CacheLineSize)
}
