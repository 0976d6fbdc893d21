package geo

import "math"

// earthRadiusM is the mean Earth radius used by the haversine formula.
const earthRadiusM = 6371000.0

// DistanceMeters computes the great-circle distance between two
// coordinates using the haversine formula.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Zone labels a distance with its proximity band.
func Zone(distanceM float64) string {
	switch {
	case distanceM <= 10:
		return "intimate"
	case distanceM <= 50:
		return "personal"
	case distanceM <= 200:
		return "social"
	default:
		return "public"
	}
}
