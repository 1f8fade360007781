// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates the cubic through four equally spaced points
// y0..y3 (at -1, 0, 1, 2) at position frac in [0, 1] between y1 and y2.
//
// The weights are the Lagrange basis for those nodes; the weight of y1 is
// derived from the other three so the four always sum to exactly one.
func CubicInterpolate(y0, y1, y2, y3, frac float64) float64 {
	frac2 := frac * frac
	frac3 := frac2 * frac

	w3 := -0.1666666667*frac + 0.1666666667*frac3
	w2 := frac + 0.5*frac2 - 0.5*frac3
	w0 := -0.3333333333*frac + 0.5*frac2 - 0.1666666667*frac3
	w1 := 1 - w3 - w2 - w0

	return w0*y0 + w1*y1 + w2*y2 + w3*y3
}

// InterpolateTable samples table at x in [0, 1] using CubicInterpolate over
// the four entries around x*(len(table)-4). table must hold at least 4 values.
func InterpolateTable(table []float64, x float64) float64 {
	y := x * float64(len(table)-4)
	ind := int(y)
	frac := y - float64(ind)

	return CubicInterpolate(table[ind], table[ind+1], table[ind+2], table[ind+3], frac)
}
