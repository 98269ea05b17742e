// Package geo provides great-circle helpers on WGS-84 lat/long degrees.
package geo

import (
	"math"
)

// EarthRadiusNM is the mean Earth radius in nautical miles.
const EarthRadiusNM = 3440.065

func rad(d float64) float64 { return d / 180 * math.Pi }
func deg(r float64) float64 { return r * 180 / math.Pi }

// DistanceNM returns the haversine distance in nautical miles between two
// lat/long points.
func DistanceNM(lat1, lon1, lat2, lon2 float64) float64 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	phi1, phi2 := rad(lat1), rad(lat2)
	dphi, dlambda := rad(lat2-lat1), rad(lon2-lon1)

	sinPhi := math.Sin(dphi / 2)
	sinLambda := math.Sin(dlambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusNM * c
}

// InitialCourse returns the initial true course in degrees [0, 360) from the
// first point toward the second.
func InitialCourse(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := rad(lat1), rad(lat2)
	dlambda := rad(lon2 - lon1)

	y := math.Sin(dlambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dlambda)
	return math.Mod(deg(math.Atan2(y, x))+360, 360)
}

// Midpoint returns the great-circle midpoint between two points.
func Midpoint(lat1, lon1, lat2, lon2 float64) (float64, float64) {
	phi1, phi2 := rad(lat1), rad(lat2)
	lambda1 := rad(lon1)
	dlambda := rad(lon2 - lon1)

	bx := math.Cos(phi2) * math.Cos(dlambda)
	by := math.Cos(phi2) * math.Sin(dlambda)
	phi := math.Atan2(math.Sin(phi1)+math.Sin(phi2), math.Sqrt((math.Cos(phi1)+bx)*(math.Cos(phi1)+bx)+by*by))
	lambda := lambda1 + math.Atan2(by, math.Cos(phi1)+bx)
	return deg(phi), math.Mod(deg(lambda)+540, 360) - 180
}
