// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 scales a [-1, 1] sample by 32768 so that -1 maps to
// math.MinInt16. Positive full scale saturates at math.MaxInt16.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	v := x * 32768.0
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(v)
}
