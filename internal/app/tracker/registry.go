package tracker

import (
	"strings"
	"time"

	"donation_portal/internal/app/port"

	"github.com/patrickmn/go-cache"
)

const defaultRetention = 30 * time.Minute

// Registry keeps lifecycles addressable by transaction hash for a limited time.
type Registry struct {
	items *cache.Cache
}

func NewRegistry(retention time.Duration) *Registry {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Registry{items: cache.New(retention, retention/2)}
}

func (r *Registry) Add(l *Lifecycle) {
	r.items.SetDefault(strings.ToLower(l.Hash()), l)
}

func (r *Registry) Lookup(hash string) (port.TxHandle, bool) {
	v, ok := r.items.Get(strings.ToLower(hash))
	if !ok {
		return nil, false
	}
	return v.(*Lifecycle), true
}
