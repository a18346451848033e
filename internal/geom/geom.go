// Package geom holds the small float helpers the animation engine leans on.
package geom

import "math"

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Remap maps v from [inLo, inHi] onto [outLo, outHi] without clamping.
func Remap(v, inLo, inHi, outLo, outHi float64) float64 {
	return outLo + (v-inLo)/(inHi-inLo)*(outHi-outLo)
}

// RemapClamped maps v from [inLo, inHi] onto [outLo, outHi] and pins the
// result inside the output range.
func RemapClamped(v, inLo, inHi, outLo, outHi float64) float64 {
	t := Clamp01((v - inLo) / (inHi - inLo))
	return outLo + t*(outHi-outLo)
}

// Dist returns the Euclidean distance between (x1,y1) and (x2,y2).
func Dist(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
