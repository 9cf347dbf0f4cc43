package config

// MemoryConfig controls the storage region's mmap behavior. Grounded on
// original_source/src/config (MemoryConfig::with_limit_mb) and
// internal/storage/mmap.go's defaultInitialSize.
type MemoryConfig struct {
	UseMmap         bool  `toml:"use_mmap"`
	InitialMmapSize int64 `toml:"initial_mmap_size"`
	LimitBytes      int64 `toml:"limit_bytes"` // 0 means unbounded
}

func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{UseMmap: true, InitialMmapSize: 1 << 20}
}

func MemoryWithLimitMB(limitMB int64) MemoryConfig {
	cfg := DefaultMemoryConfig()
	cfg.LimitBytes = limitMB * 1024 * 1024
	return cfg
}
