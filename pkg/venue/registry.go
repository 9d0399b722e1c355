package venue

import (
	"sort"
	"sync/atomic"

	"github.com/seatlens/seatlens/pkg/errs"
)

// Registry holds the loaded venues for the lifetime of the process.
//
// Lookups are lock-free reads of an immutable snapshot. Replace swaps the
// whole snapshot atomically, so in-flight mapping requests keep the venue
// they already resolved and never observe a half-reloaded state.
type Registry struct {
	snapshot atomic.Pointer[map[string]*Venue]
}

// NewRegistry creates a registry holding the given venues.
func NewRegistry(venues ...*Venue) *Registry {
	r := &Registry{}
	r.Replace(venues)
	return r
}

// Get returns the venue with the given ID.
func (r *Registry) Get(id string) (*Venue, error) {
	m := *r.snapshot.Load()
	v, ok := m[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeVenueNotFound, "venue %q not loaded", id)
	}
	return v, nil
}

// IDs returns the loaded venue IDs in ascending order.
func (r *Registry) IDs() []string {
	m := *r.snapshot.Load()
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of loaded venues.
func (r *Registry) Len() int {
	return len(*r.snapshot.Load())
}

// Replace swaps in a new set of venues. Later entries win on duplicate IDs.
func (r *Registry) Replace(venues []*Venue) {
	m := make(map[string]*Venue, len(venues))
	for _, v := range venues {
		m[v.ID] = v
	}
	r.snapshot.Store(&m)
}
