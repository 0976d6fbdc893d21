package presence

import (
	"sort"
	"sync"
	"time"

	"github.com/Danielopol/Metrosocial/internal/identity"
)

// Record is one online user. Records exist only while the user is online;
// marking offline deletes the record entirely.
type Record struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar,omitempty"`
	LastSeen time.Time `json:"lastSeen"`
}

// Registry is the authoritative set of who is online right now.
type Registry struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewRegistry() *Registry {
	return &Registry{records: map[string]Record{}}
}

// MarkOnline upserts the presence record. Idempotent.
func (r *Registry) MarkOnline(p identity.Principal) Record {
	rec := Record{
		UserID:   p.ID,
		Username: p.Username,
		Avatar:   p.Avatar,
		LastSeen: time.Now(),
	}
	r.mu.Lock()
	r.records[p.ID] = rec
	r.mu.Unlock()
	return rec
}

// MarkOffline removes the record. A missing record is not an error.
func (r *Registry) MarkOffline(userID string) {
	r.mu.Lock()
	delete(r.records, userID)
	r.mu.Unlock()
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	_, ok := r.records[userID]
	r.mu.RUnlock()
	return ok
}

// Online returns a snapshot of all online users, sorted by user id for
// deterministic output.
func (r *Registry) Online() []Record {
	r.mu.RLock()
	users := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		users = append(users, rec)
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		return users[i].UserID < users[j].UserID
	})
	return users
}
