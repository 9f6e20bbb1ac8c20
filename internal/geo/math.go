package geo

import "math"

// FeetToMeters converts international feet to meters.
const FeetToMeters = 0.3048

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeBearing folds a bearing in degrees into [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// GridBearing returns the grid bearing from a to b in degrees, [0, 360).
// Zero is grid north, angles grow clockwise.
func GridBearing(a, b PlanarPoint) float64 {
	d := b.Sub(a)
	return NormalizeBearing(RadToDeg(math.Atan2(d.X, d.Y)))
}
