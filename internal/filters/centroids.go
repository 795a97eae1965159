package filters

import (
	"math"
	"strings"
)

// earthRadiusMiles is the mean radius of Earth used for Haversine distance.
const earthRadiusMiles = 3958.8

// stateCentroids maps USPS state codes to a coarse geographic center.
// Distance between centroids is a deliberate approximation; owner distance
// is a coarse signal, not a geocoding product.
var stateCentroids = map[string][2]float64{
	"AL": {32.81, -86.79}, "AK": {61.37, -152.40}, "AZ": {33.73, -111.43},
	"AR": {34.97, -92.37}, "CA": {36.12, -119.68}, "CO": {39.06, -105.31},
	"CT": {41.60, -72.76}, "DE": {39.32, -75.51}, "DC": {38.90, -77.03},
	"FL": {27.77, -81.69}, "GA": {33.04, -83.64}, "HI": {21.09, -157.50},
	"ID": {44.24, -114.48}, "IL": {40.35, -88.99}, "IN": {39.85, -86.26},
	"IA": {42.01, -93.21}, "KS": {38.53, -96.73}, "KY": {37.67, -84.67},
	"LA": {31.17, -91.87}, "ME": {44.69, -69.38}, "MD": {39.06, -76.80},
	"MA": {42.23, -71.53}, "MI": {43.33, -84.54}, "MN": {45.69, -93.90},
	"MS": {32.74, -89.68}, "MO": {38.46, -92.29}, "MT": {46.92, -110.45},
	"NE": {41.13, -98.27}, "NV": {38.31, -117.06}, "NH": {43.45, -71.56},
	"NJ": {40.30, -74.52}, "NM": {34.84, -106.25}, "NY": {42.17, -74.95},
	"NC": {35.63, -79.81}, "ND": {47.53, -99.78}, "OH": {40.39, -82.76},
	"OK": {35.57, -96.93}, "OR": {44.57, -122.07}, "PA": {40.59, -77.21},
	"RI": {41.68, -71.51}, "SC": {33.86, -80.95}, "SD": {44.30, -99.44},
	"TN": {35.75, -86.69}, "TX": {31.05, -97.56}, "UT": {40.15, -111.86},
	"VT": {44.05, -72.71}, "VA": {37.77, -78.17}, "WA": {47.40, -121.49},
	"WV": {38.49, -80.95}, "WI": {44.27, -89.62}, "WY": {42.76, -107.30},
}

// stateDistanceMiles returns the great-circle distance between the centroids
// of two states. Unknown state codes report ok=false.
func stateDistanceMiles(a, b string) (float64, bool) {
	ca, ok := stateCentroids[strings.ToUpper(strings.TrimSpace(a))]
	if !ok {
		return 0, false
	}
	cb, ok := stateCentroids[strings.ToUpper(strings.TrimSpace(b))]
	if !ok {
		return 0, false
	}
	return haversineMiles(ca[0], ca[1], cb[0], cb[1]), true
}

// haversineMiles returns the great-circle distance in miles between two
// points given in degrees.
func haversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}
