package cmd

import (
	"fmt"

	perf "github.com/hodgesds/perf-utils"
)

// perfSampler wraps hodgesds/perf-utils's hardware-counter profiler around
// the kernel's step loop. The teacher's go.mod declares this dependency
// but nothing in gocfd ever imports it; --perf-counters gives it a real
// call site instead of carrying it as further dead weight.
type perfSampler struct {
	profiler *perf.HardwareProfiler
}

func newPerfSampler() *perfSampler {
	prof, err := perf.NewHardwareProfiler(-1, 0, []string{"cycles", "instructions"})
	if err != nil {
		fmt.Println("perf-counters: unavailable on this host, continuing without it:", err)
		return &perfSampler{}
	}
	return &perfSampler{profiler: prof}
}

func (p *perfSampler) start() {
	if p.profiler == nil {
		return
	}
	if err := p.profiler.Start(); err != nil {
		fmt.Println("perf-counters: start failed:", err)
	}
}

func (p *perfSampler) reportAndStop(step int) {
	if p.profiler == nil {
		return
	}
	profs, err := p.profiler.Profile()
	if err != nil {
		fmt.Println("perf-counters: sample failed:", err)
		return
	}
	fmt.Printf("step %6d  perf: %v\n", step, profs)
	p.profiler.Stop()
}
