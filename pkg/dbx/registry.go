package dbx

import (
	"context"
	"sort"
	"sync"

	"github.com/marcodd23/go-micro-dbx/pkg/errorx"
	"golang.org/x/sync/errgroup"
)

// Handle is the type erased view of a Database used by the Registry.
type Handle interface {
	Name() string
	Status(ctx context.Context) Health
	Terminate()
}

// Registry keeps the logical databases of a service, keyed by name.
//
// It is the owner of the handles: TerminateAll closes every pool at service shutdown.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]Handle
}

// NewRegistry is a constructor that ensures the inner map is always initialized.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// Add registers h under h.Name(). Names must be unique.
func (r *Registry) Add(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handles == nil {
		r.handles = make(map[string]Handle)
	}

	if _, ok := r.handles[h.Name()]; ok {
		return errorx.NewDatabaseError("database %q already registered", h.Name())
	}

	r.handles[h.Name()] = h

	return nil
}

// Get returns the handle registered under name.
func (r *Registry) Get(name string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handles[name]

	return h, ok
}

// Lookup returns the typed Database registered under name.
//
//	orders, ok := dbx.Lookup[*mysqldb.Conn](registry, "orders")
func Lookup[C Conn](r *Registry, name string) (*Database[C], bool) {
	h, ok := r.Get(name)
	if !ok {
		return nil, false
	}

	db, ok := h.(*Database[C])

	return db, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Statuses probes every registered database concurrently. The result follows Names order.
func (r *Registry) Statuses(ctx context.Context) ([]Health, error) {
	names := r.Names()
	out := make([]Health, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		h, ok := r.Get(name)
		if !ok {
			continue
		}

		i := i
		g.Go(func() error {
			out[i] = h.Status(gctx)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// TerminateAll terminates and removes every registered database.
func (r *Registry) TerminateAll() {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]Handle)
	r.mu.Unlock()

	for _, h := range handles {
		h.Terminate()
	}
}
