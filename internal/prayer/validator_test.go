package prayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/miqat-dev/miqat/internal/model"
)

func entryAt(lat, lon float64, expires time.Time) model.CacheEntry {
	return model.CacheEntry{
		Latitude:    lat,
		Longitude:   lon,
		Method:      "MuslimWorldLeague",
		LegalSchool: "shafi",
		CachedAt:    expires.Add(-24 * time.Hour),
		ExpiresAt:   expires,
	}
}

func TestMatches_WithinTolerance(t *testing.T) {
	e := entryAt(21.4225, 39.8262, time.Now().Add(time.Hour))

	assert.True(t, Matches(e, 21.4225, 39.8262, "MuslimWorldLeague", "shafi"))
	assert.True(t, Matches(e, 21.4230, 39.8258, "MuslimWorldLeague", "shafi"))
}

func TestMatches_MissOnDrift(t *testing.T) {
	e := entryAt(21.4225, 39.8262, time.Now().Add(time.Hour))

	// 0.002 degrees of latitude is past the tolerance regardless of the
	// other fields being equal
	assert.False(t, Matches(e, 21.4245, 39.8262, "MuslimWorldLeague", "shafi"))
	assert.False(t, Matches(e, 21.4225, 39.8282, "MuslimWorldLeague", "shafi"))
}

func TestMatches_ExactParameterEquality(t *testing.T) {
	e := entryAt(21.4225, 39.8262, time.Now().Add(time.Hour))

	assert.False(t, Matches(e, 21.4225, 39.8262, "Egyptian", "shafi"))
	assert.False(t, Matches(e, 21.4225, 39.8262, "MuslimWorldLeague", "hanafi"))
}

func TestValid_Expiration(t *testing.T) {
	now := time.Now()

	assert.True(t, Valid(entryAt(0, 0, now.Add(time.Minute)), now))
	assert.False(t, Valid(entryAt(0, 0, now.Add(-time.Minute)), now))
	// boundary: an entry expiring exactly now no longer satisfies
	assert.False(t, Valid(entryAt(0, 0, now), now))
}
