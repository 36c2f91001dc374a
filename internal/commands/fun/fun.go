// Package fun holds small chance-based commands.
package fun

import "math/rand/v2"

// intn returns a number in [0, n). Commands carry an optional override
// so tests can fix the outcome.
func intn(override func(int) int, n int) int {
	if override != nil {
		return override(n)
	}
	return rand.IntN(n)
}
