package config

// SearchConfig controls the recall/speed tradeoff at query time.
// Different index strategies consult different fields: HNSW reads Ef,
// IVF reads NProbe, Flat ignores both (always exhaustive). Grounded on
// original_source/src/config/search.rs.
type SearchConfig struct {
	// Ef is HNSW's candidate-list size during search. Zero means "use
	// the index's configured ef_search".
	Ef int `toml:"ef"`

	// NProbe is IVF's number of clusters to probe. Zero means "use the
	// index's configured num_probes".
	NProbe int `toml:"nprobe"`

	// FilterOverfetch is how many extra candidates (as a multiplier of
	// k) to pull from the index when a filter is present.
	FilterOverfetch int `toml:"filter_overfetch"`
}

func defaultFilterOverfetch() int { return 10 }

func DefaultSearchConfig() SearchConfig {
	return SearchConfig{FilterOverfetch: defaultFilterOverfetch()}
}

// HighQualitySearch favors recall over latency.
func HighQualitySearch() SearchConfig {
	return SearchConfig{Ef: 400, NProbe: 20, FilterOverfetch: defaultFilterOverfetch()}
}

// BalancedSearch is the default.
func BalancedSearch() SearchConfig { return DefaultSearchConfig() }

// FastSearch favors latency over recall.
func FastSearch() SearchConfig {
	return SearchConfig{Ef: 50, NProbe: 1, FilterOverfetch: defaultFilterOverfetch()}
}
