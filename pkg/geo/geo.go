// Package geo provides small geographic helpers used by the fallback estimators:
// haversine distance and NYC borough centroid lookup.
package geo

import (
	"math"
	"strings"
)

// earthRadiusMiles is the mean Earth radius in statute miles.
const earthRadiusMiles = 3958.8

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lng float64
}

// DistanceMiles returns the great-circle distance between two points in miles.
func DistanceMiles(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

// Borough identifies an NYC borough inferred from address text.
type Borough string

const (
	BoroughManhattan    Borough = "manhattan"
	BoroughBrooklyn     Borough = "brooklyn"
	BoroughQueens       Borough = "queens"
	BoroughBronx        Borough = "bronx"
	BoroughStatenIsland Borough = "staten island"
	BoroughUnknown      Borough = ""
)

// boroughKeywords maps address keywords to boroughs. Neighborhood names cover
// the common cases where the borough itself is not spelled out.
var boroughKeywords = []struct {
	keyword string
	borough Borough
}{
	{"manhattan", BoroughManhattan},
	{"midtown", BoroughManhattan},
	{"times square", BoroughManhattan},
	{"wall street", BoroughManhattan},
	{"soho", BoroughManhattan},
	{"brooklyn", BoroughBrooklyn},
	{"williamsburg", BoroughBrooklyn},
	{"park slope", BoroughBrooklyn},
	{"queens", BoroughQueens},
	{"astoria", BoroughQueens},
	{"flushing", BoroughQueens},
	{"bronx", BoroughBronx},
	{"staten island", BoroughStatenIsland},
}

// boroughCentroids holds a representative coordinate per borough.
var boroughCentroids = map[Borough]Coordinate{
	BoroughManhattan:    {Lat: 40.7589, Lng: -73.9851},
	BoroughBrooklyn:     {Lat: 40.6782, Lng: -73.9442},
	BoroughQueens:       {Lat: 40.7282, Lng: -73.7949},
	BoroughBronx:        {Lat: 40.8448, Lng: -73.8648},
	BoroughStatenIsland: {Lat: 40.5795, Lng: -74.1502},
}

// InferBorough returns the borough matched by the first keyword found in the
// address, or BoroughUnknown if nothing matches.
func InferBorough(address string) Borough {
	lower := strings.ToLower(address)
	for _, k := range boroughKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.borough
		}
	}
	return BoroughUnknown
}

// Centroid returns a representative coordinate for the borough. Unknown
// boroughs resolve to the Manhattan centroid.
func Centroid(b Borough) Coordinate {
	if c, ok := boroughCentroids[b]; ok {
		return c
	}
	return boroughCentroids[BoroughManhattan]
}
