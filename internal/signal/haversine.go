package signal

import (
	"math"

	"github.com/ppiankov/vaultgate/internal/model"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distance
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance between a and b in km:
// d = 2R·atan2(√h, √(1−h)), h = sin²(Δlat/2) + cos(lat1)·cos(lat2)·sin²(Δlon/2)
func Haversine(a, b model.Position) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
