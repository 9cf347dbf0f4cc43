package collection

import (
	"fmt"
	"math"

	"vecstore/internal/vdberr"
)

// validateVector rejects an empty vector or one containing a NaN or
// Infinity component, before any WAL record is written or any cache is
// touched, matching validation.rs's validate_vector.
func validateVector(op string, vector []float32) error {
	if len(vector) == 0 {
		return vdberr.New(op, vdberr.Validation, fmt.Errorf("vector cannot be empty"))
	}
	for i, x := range vector {
		if math.IsNaN(float64(x)) {
			return vdberr.New(op, vdberr.Validation, fmt.Errorf("vector contains NaN at index %d", i))
		}
		if math.IsInf(float64(x), 0) {
			return vdberr.New(op, vdberr.Validation, fmt.Errorf("vector contains Infinity at index %d", i))
		}
	}
	return nil
}
