package arena

import "sync/atomic"

// RoundRobinCPUID is a deterministic CPUIDOracle that does not attempt
// true per-P affinity (Go does not expose the scheduler's logical
// processor id to user code). Correctness of the per-CPU tier never
// depends on pinning, only on the per-CPU lock, so an oracle that
// merely spreads load across `cpus` buckets satisfies the contract;
// it costs locality, not safety.
type RoundRobinCPUID struct {
	next uint64
	cpus int
}

// NewRoundRobinCPUID returns an oracle cycling through [0, cpus).
func NewRoundRobinCPUID(cpus int) *RoundRobinCPUID {
	return &RoundRobinCPUID{cpus: cpus}
}

func (r *RoundRobinCPUID) CurrentCPU() int {
	n := atomic.AddUint64(&r.next, 1)
	return int(n % uint64(r.cpus))
}
