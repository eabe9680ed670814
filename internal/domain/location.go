package domain

import (
	"github.com/zeebo/xxh3"
)

// PinCoordinates returns the stored coordinates or a stable point derived
// from the issue id within spread degrees of the center.
func PinCoordinates(issue *Issue, centerLat, centerLng, spread float64) (float64, float64) {
	if issue.Location.Lat != nil && issue.Location.Lng != nil {
		return *issue.Location.Lat, *issue.Location.Lng
	}

	h := xxh3.HashString(issue.ID)
	u1 := float64(h>>32) / float64(1<<32)
	u2 := float64(h&0xffffffff) / float64(1<<32)

	return centerLat + (u1-0.5)*spread, centerLng + (u2-0.5)*spread
}
