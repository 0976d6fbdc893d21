package location

import (
	"sort"
	"sync"
	"time"

	"github.com/Danielopol/Metrosocial/internal/identity"
	"github.com/Danielopol/Metrosocial/internal/presence"
	"github.com/Danielopol/Metrosocial/internal/shared/geo"
)

// DefaultRadiusM is used when a nearby query does not specify a radius.
const DefaultRadiusM = 5000.0

// Tracker keeps the last reported location per user and answers
// nearby-user queries against the presence registry.
type Tracker struct {
	mu       sync.RWMutex
	records  map[string]Record
	presence *presence.Registry
}

func NewTracker(registry *presence.Registry) *Tracker {
	return &Tracker{
		records:  map[string]Record{},
		presence: registry,
	}
}

// Report overwrites the user's location record.
func (t *Tracker) Report(p identity.Principal, loc Location) Record {
	rec := Record{
		UserID:      p.ID,
		Username:    p.Username,
		Avatar:      p.Avatar,
		Location:    loc,
		LastUpdated: time.Now(),
	}
	t.mu.Lock()
	t.records[p.ID] = rec
	t.mu.Unlock()
	return rec
}

func (t *Tracker) Get(userID string) (Record, bool) {
	t.mu.RLock()
	rec, ok := t.records[userID]
	t.mu.RUnlock()
	return rec, ok
}

// Nearby returns online users within radiusM of the origin, sorted by
// ascending distance. The querying user is never included, and neither
// is anyone absent from the presence registry, even with a fresh
// location record. A non-positive radius yields an empty result.
func (t *Tracker) Nearby(userID string, lat, lng, radiusM float64) []NearbyUser {
	matches := []NearbyUser{}
	if radiusM <= 0 {
		return matches
	}

	t.mu.RLock()
	candidates := make([]Record, 0, len(t.records))
	for _, rec := range t.records {
		candidates = append(candidates, rec)
	}
	t.mu.RUnlock()

	for _, rec := range candidates {
		if rec.UserID == userID {
			continue
		}
		if !t.presence.IsOnline(rec.UserID) {
			continue
		}
		d := geo.DistanceMeters(lat, lng, rec.Location.Latitude, rec.Location.Longitude)
		if d > radiusM {
			continue
		}
		matches = append(matches, NearbyUser{
			UserID:   rec.UserID,
			Username: rec.Username,
			Avatar:   rec.Avatar,
			Location: rec.Location,
			Distance: d,
			Zone:     geo.Zone(d),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].UserID < matches[j].UserID
	})
	return matches
}
