package config

// WalConfig controls the write-ahead log's durability/throughput
// tradeoff. Grounded on original_source/src/config/wal.rs; the
// Go implementation replaces the original's fixed-length binary framing
// with newline-delimited records (storage.WALEncoder), so EncoderName
// selects that wire format rather than a binary/text split on disk size.
type WalConfig struct {
	Enabled                bool   `toml:"enabled"`
	CheckpointFrequency    int    `toml:"checkpoint_frequency"`
	CheckpointIntervalSecs int    `toml:"checkpoint_interval_secs"` // 0 means unset
	MaxLogSize             int64  `toml:"max_log_size"`
	SyncOnWrite            bool   `toml:"sync_on_write"`
	EncoderName            string `toml:"encoder"` // "binary" or "text"
}

func DefaultWalConfig() WalConfig {
	return WalConfig{
		Enabled:             true,
		CheckpointFrequency: 1000,
		MaxLogSize:          100 * 1024 * 1024,
		EncoderName:         "binary",
	}
}

func DisabledWal() WalConfig {
	return WalConfig{Enabled: false, EncoderName: "binary"}
}

// HighDurabilityWal sets SyncOnWrite and tight checkpoints. storage.WAL
// does not read SyncOnWrite or CheckpointIntervalSecs: every record is
// flushed to the OS but never fsynced, and checkpoints follow
// CheckpointFrequency alone.
func HighDurabilityWal() WalConfig {
	return WalConfig{
		Enabled:                true,
		CheckpointFrequency:    100,
		MaxLogSize:             50 * 1024 * 1024,
		SyncOnWrite:            true,
		CheckpointIntervalSecs: 1,
		EncoderName:            "binary",
	}
}

// FastWal favors throughput with larger checkpoint intervals.
func FastWal() WalConfig {
	return WalConfig{
		Enabled:             true,
		CheckpointFrequency: 10000,
		MaxLogSize:          500 * 1024 * 1024,
		EncoderName:         "binary",
	}
}
