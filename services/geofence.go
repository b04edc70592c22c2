package services

import "math"

// GeofenceRadiusMeters is the fixed policy radius for anchored credentials.
// Product decided against per-credential radii; keep this a single constant.
const GeofenceRadiusMeters = 100.0

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance between two coordinates
// on a spherical earth. Deterministic, no I/O.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// WithinRange reports whether the presented location is inside radiusMeters of
// the anchor, along with the computed distance.
func WithinRange(anchorLat, anchorLon, lat, lon, radiusMeters float64) (bool, float64) {
	d := HaversineMeters(anchorLat, anchorLon, lat, lon)
	return d <= radiusMeters, d
}
