// slabdiagd brings up a slab system over an in-memory buddy frame
// source and serves live diagnostics snapshots over a websocket.
// It exists to exercise the allocator end to end and to feed external
// dashboards; it is not part of the allocator core.
package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/nmxmxh/slabkit"
	"github.com/nmxmxh/slabkit/arena"
	"github.com/nmxmxh/slabkit/config"
	"github.com/nmxmxh/slabkit/diag"
	"github.com/nmxmxh/slabkit/internal/obslog"
)

func main() {
	var (
		listen     = flag.String("listen", "127.0.0.1:8433", "address to serve diagnostics on")
		pageSize   = flag.Uint("page-size", 4096, "frame size in bytes")
		cacheLine  = flag.Uint("cache-line", 64, "cache line size in bytes for slab coloring")
		totalPages = flag.Uint("pages", 1<<16, "number of page frames backing the allocator")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	level := obslog.Info
	if *verbose {
		level = obslog.Debug
	}
	log := obslog.New(obslog.Config{Level: level, Component: "slabdiagd"})
	obslog.SetDefault(log)

	src := arena.NewBreakerFrameSource(
		arena.NewBuddyFrameSource(uint32(*pageSize), uint32(*totalPages)), 4)
	oracle := arena.NewRoundRobinCPUID(config.CPUS)

	sys, err := slabkit.Init(src, oracle, config.System{
		PageSize:      uint32(*pageSize),
		CacheLineSize: uint32(*cacheLine),
	})
	if err != nil {
		log.Error("slab system init failed", obslog.Err(err))
		os.Exit(1)
	}

	srv, err := diag.NewServer(sys, diag.Config{
		PageSize:      uint32(*pageSize),
		CacheLineSize: uint32(*cacheLine),
		Logger:        log.With("diag"),
	})
	if err != nil {
		log.Error("diag server init failed", obslog.Err(err))
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", srv)

	log.Info("serving slab diagnostics",
		obslog.String("addr", *listen),
		obslog.Int("caches", len(sys.PrintSlabSystemInfo())))
	if err := http.ListenAndServe(*listen, mux); err != nil {
		log.Error("server stopped", obslog.Err(err))
		os.Exit(1)
	}
}
