// SPDX-License-Identifier: EPL-2.0

package utils

func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// Int16ToFloat32 maps a 16-bit PCM sample onto [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// Int16LEToFloat32 converts little-endian 16-bit PCM bytes into dst and
// returns the number of samples written. A trailing odd byte is ignored.
func Int16LEToFloat32(dst []float32, src []byte) int {
	n := min(len(dst), len(src)/2)
	for i := range n {
		dst[i] = Int16ToFloat32(int16(uint16(src[2*i]) | uint16(src[2*i+1])<<8))
	}

	return n
}
