package config

import "runtime"

// ParallelismConfig controls goroutine fan-out for batch search:
// ParallelSearch gates it. NumThreads defaults to runtime.NumCPU in place
// of the original's rayon thread pool size, but neither batch search nor
// the metric package's Parallel backend reads it. Grounded on
// original_source/src/config (ParallelismConfig::with_num_threads /
// single_threaded).
type ParallelismConfig struct {
	NumThreads     int  `toml:"num_threads"`
	ParallelSearch bool `toml:"parallel_search"`
}

func DefaultParallelismConfig() ParallelismConfig {
	return ParallelismConfig{NumThreads: runtime.NumCPU(), ParallelSearch: true}
}

func (c ParallelismConfig) WithNumThreads(n int) ParallelismConfig {
	c.NumThreads = n
	return c
}

func SingleThreaded() ParallelismConfig {
	return ParallelismConfig{NumThreads: 1, ParallelSearch: false}
}
