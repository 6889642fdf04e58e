// Package geo calcula distancias sobre una esfera terrestre.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters es el radio medio usado por haversine.
const EarthRadiusMeters = 6_371_000.0

// Distance devuelve la distancia great-circle en metros.
// Entradas no finitas propagan NaN; validar antes de llamar.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dPhi := toRad(lat2 - lat1)
	dLambda := toRad(lon2 - lon1)

	a := math.Pow(math.Sin(dPhi/2), 2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// FormatDistance: "<1m", "999m", "1.5km".
func FormatDistance(meters float64) string {
	switch {
	case meters < 1:
		return "<1m"
	case meters < 1000:
		return fmt.Sprintf("%dm", int(math.Round(meters)))
	default:
		return fmt.Sprintf("%.1fkm", meters/1000)
	}
}

// ValidCoordinate revisa rango y finitud.
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
