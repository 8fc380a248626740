package prayer

import (
	"math"
	"time"

	"github.com/miqat-dev/miqat/internal/model"
)

// CoordEpsilon is the per-axis tolerance for location comparison, roughly
// 100 m at the equator. Cheap independent-axis compare, not geodesic
// distance: it only has to answer "did the user move far enough to matter".
const CoordEpsilon = 0.001

// Matches reports whether a cached entry satisfies a request at the given
// location with the given calculation parameters. Method and legal school
// must match exactly.
func Matches(e model.CacheEntry, lat, lon float64, method, legalSchool string) bool {
	if math.Abs(e.Latitude-lat) >= CoordEpsilon {
		return false
	}
	if math.Abs(e.Longitude-lon) >= CoordEpsilon {
		return false
	}
	return e.Method == method && e.LegalSchool == legalSchool
}

// Valid reports whether the entry has not expired as of now.
func Valid(e model.CacheEntry, now time.Time) bool {
	return now.Before(e.ExpiresAt)
}
