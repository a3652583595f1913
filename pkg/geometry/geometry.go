package geometry

import (
	"math"
)

// Point is a geographic position in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// IsValid reports whether both coordinates are numbers inside the usual
// latitude/longitude ranges.
func (p Point) IsValid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Rect is a lat/lon bounding rectangle. The zero value is empty.
type Rect struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	set            bool
}

// Extend grows the rectangle so that it contains p.
func (r *Rect) Extend(p Point) {
	if !p.IsValid() {
		return
	}
	if !r.set {
		r.MinLat, r.MaxLat = p.Lat, p.Lat
		r.MinLon, r.MaxLon = p.Lon, p.Lon
		r.set = true
		return
	}
	r.MinLat = math.Min(r.MinLat, p.Lat)
	r.MaxLat = math.Max(r.MaxLat, p.Lat)
	r.MinLon = math.Min(r.MinLon, p.Lon)
	r.MaxLon = math.Max(r.MaxLon, p.Lon)
}

func (r Rect) IsEmpty() bool {
	return !r.set
}

func (r Rect) Center() Point {
	return Point{Lat: (r.MinLat + r.MaxLat) / 2, Lon: (r.MinLon + r.MaxLon) / 2}
}

func (r Rect) Contains(p Point) bool {
	return r.set && p.Lat >= r.MinLat && p.Lat <= r.MaxLat && p.Lon >= r.MinLon && p.Lon <= r.MaxLon
}

// --- Geometry Helpers ---

func DistNM(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 3440.06
	r1, r2 := lat1*math.Pi/180, lat2*math.Pi/180

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	// --- handle dateline crossing ---
	for dLon > math.Pi {
		dLon -= 2 * math.Pi
	}
	for dLon < -math.Pi {
		dLon += 2 * math.Pi
	}

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(r1)*math.Cos(r2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return R * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// PointDistNM is DistNM for two Points.
func PointDistNM(a, b Point) float64 {
	return DistNM(a.Lat, a.Lon, b.Lat, b.Lon)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseDMS decodes compact hemisphere-prefixed coordinates as found in CIFP
// runway records: N47270581 is 47°27'05.81" north and W122180418 is
// 122°18'04.18" west. The degree field is two digits for latitudes and
// three for longitudes. NaN is returned when the text cannot be decoded.
func ParseDMS(s string) float64 {
	if len(s) < 8 {
		return math.NaN()
	}
	sign := 1.0
	degDigits := 2
	switch s[0] {
	case 'N':
	case 'S':
		sign = -1
	case 'E':
		degDigits = 3
	case 'W':
		sign = -1
		degDigits = 3
	default:
		return math.NaN()
	}
	digits := s[1:]
	if len(digits) < degDigits+4 {
		return math.NaN()
	}
	deg, ok := atoi(digits[:degDigits])
	if !ok {
		return math.NaN()
	}
	min, ok := atoi(digits[degDigits : degDigits+2])
	if !ok {
		return math.NaN()
	}
	secs, ok := atoi(digits[degDigits+2:])
	if !ok {
		return math.NaN()
	}
	// seconds carry two implied decimals
	sec := float64(secs)
	if len(digits[degDigits+2:]) > 2 {
		sec /= 100
	}
	return sign * (float64(deg) + float64(min)/60 + sec/3600)
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
