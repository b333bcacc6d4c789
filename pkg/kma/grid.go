// Package kma provides a client for the KMA API hub ultra-short-range
// forecast grid and the Lambert conformal conic projection used to map
// coordinates onto it.
package kma

import "math"

// DFS grid projection constants (Lambert conformal conic).
const (
	earthRadiusKM = 6371.00877 // Earth radius
	gridKM        = 5.0        // grid spacing
	projLat1      = 30.0       // first standard parallel
	projLat2      = 60.0       // second standard parallel
	originLon     = 126.0      // reference longitude
	originLat     = 38.0       // reference latitude
	originX       = 43         // grid X of reference point
	originY       = 136        // grid Y of reference point
)

// GridWidth is the number of columns in the DFS forecast grid; grid values
// arrive flattened in row-major order.
const GridWidth = 149

// GridHeight is the number of rows in the DFS forecast grid.
const GridHeight = 253

// ToGrid projects WGS84 degrees onto DFS grid cell coordinates (nx, ny).
// The projection is deterministic and matches the KMA reference
// implementation bit-for-bit at float64 precision.
func ToGrid(lat, lon float64) (nx, ny int) {
	const degrad = math.Pi / 180.0

	re := earthRadiusKM / gridKM
	slat1 := projLat1 * degrad
	slat2 := projLat2 * degrad
	olon := originLon * degrad
	olat := originLat * degrad

	sn := math.Tan(math.Pi*0.25+slat2*0.5) / math.Tan(math.Pi*0.25+slat1*0.5)
	sn = math.Log(math.Cos(slat1)/math.Cos(slat2)) / math.Log(sn)
	sf := math.Tan(math.Pi*0.25 + slat1*0.5)
	sf = math.Pow(sf, sn) * math.Cos(slat1) / sn
	ro := math.Tan(math.Pi*0.25 + olat*0.5)
	ro = re * sf / math.Pow(ro, sn)

	ra := math.Tan(math.Pi*0.25 + lat*degrad*0.5)
	ra = re * sf / math.Pow(ra, sn)
	theta := lon*degrad - olon
	if theta > math.Pi {
		theta -= 2.0 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2.0 * math.Pi
	}
	theta *= sn

	nx = int(math.Floor(ra*math.Sin(theta) + originX + 0.5))
	ny = int(math.Floor(ro - ra*math.Cos(theta) + originY + 0.5))
	return nx, ny
}
