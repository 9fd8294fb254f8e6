// Package mathutil provides small numeric helpers shared across the
// service.
package mathutil

// ClampInt clamps value to the range [min, max].
func ClampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampLimit validates a pagination limit: non-positive limits fall back
// to defaultVal, limits above maxVal are capped.
func ClampLimit(limit, defaultVal, maxVal int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit > maxVal {
		return maxVal
	}
	return limit
}
