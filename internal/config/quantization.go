package config

import "vecstore/internal/quantization"

// QuantizationConfig selects the on-disk vector encoding. Grounded on
// original_source/src/quantization/mod.rs's QuantizationKind plus the
// AppConfig::with_int8_quantization builder.
type QuantizationConfig struct {
	PQ            bool `toml:"pq"`
	Subquantizers int  `toml:"subquantizers"`
}

func DefaultQuantizationConfig() QuantizationConfig {
	return QuantizationConfig{}
}

func Int8Quantization() QuantizationConfig {
	return QuantizationConfig{}
}

func ProductQuantization(subquantizers int) QuantizationConfig {
	return QuantizationConfig{PQ: true, Subquantizers: subquantizers}
}

func (c QuantizationConfig) Level() quantization.Level {
	return quantization.Level{PQ: c.PQ, Subquantizers: c.Subquantizers}
}
