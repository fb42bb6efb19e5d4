package convert

import "math"

// Dimensions beyond this are treated as a probe glitch rather than a
// real source size, and scaling is skipped.
const maxSourceDimension = 10000

// FitWithin computes the output size for a source constrained to a
// bounding box: aspect ratio preserved, downscale only. The bool
// reports whether scaling is needed; sources that already fit, or
// whose dimensions are unknown, pass through unchanged.
func FitWithin(srcW, srcH int, bounds Dimensions) (int, int, bool) {
	if srcW <= 0 || srcH <= 0 || srcW > maxSourceDimension || srcH > maxSourceDimension {
		return srcW, srcH, false
	}
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return srcW, srcH, false
	}
	if srcW <= bounds.Width && srcH <= bounds.Height {
		return srcW, srcH, false
	}
	ratio := math.Min(float64(bounds.Width)/float64(srcW), float64(bounds.Height)/float64(srcH))
	w := int(math.Round(float64(srcW) * ratio))
	h := int(math.Round(float64(srcH) * ratio))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h, true
}

// EvenFitWithin is FitWithin with the result rounded down to even
// values, which yuv420p output requires.
func EvenFitWithin(srcW, srcH int, bounds Dimensions) (int, int, bool) {
	w, h, scaled := FitWithin(srcW, srcH, bounds)
	if !scaled {
		return w, h, false
	}
	w -= w % 2
	h -= h % 2
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}
	return w, h, true
}
