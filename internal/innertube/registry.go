package innertube

import (
	"sort"
	"sync"
)

type registry struct {
	clients map[ClientID]ClientProfile
}

var (
	registryOnce sync.Once
	defaultReg   *registry
)

// DefaultRegistry returns the process-wide client table. It is built on
// first access and immutable afterwards, so lookups need no locking.
func DefaultRegistry() Registry {
	registryOnce.Do(func() {
		defaultReg = &registry{clients: buildClientTable()}
	})
	return defaultReg
}

func (r *registry) Get(id ClientID) (ClientProfile, bool) {
	p, ok := r.clients[id]
	return p, ok
}

// All returns every profile ordered by priority, highest first, with the
// ID as tiebreaker so the order is stable across calls.
func (r *registry) All() []ClientProfile {
	all := make([]ClientProfile, 0, len(r.clients))
	for _, p := range r.clients {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Priority != all[j].Priority {
			return all[i].Priority > all[j].Priority
		}
		return all[i].ID < all[j].ID
	})
	return all
}
