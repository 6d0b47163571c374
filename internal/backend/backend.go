// Package backend is the explicit startup configuration for the numeric
// backend: how many OS threads the process may use and whether loom runs
// its training pass on the GPU. It replaces the ambient environment
// toggles the pipeline used to rely on.
package backend

import "runtime"

// Config is passed once at startup; zero values mean "leave the runtime
// alone" and "CPU only".
type Config struct {
	// Threads caps GOMAXPROCS. <= 0 keeps the runtime default.
	Threads int

	// UseGPU routes loom's training pass through its GPU backend.
	UseGPU bool
}

// Apply installs the thread cap and reports the effective parallelism.
func (c Config) Apply() int {
	if c.Threads > 0 {
		runtime.GOMAXPROCS(c.Threads)
	}
	return runtime.GOMAXPROCS(0)
}
