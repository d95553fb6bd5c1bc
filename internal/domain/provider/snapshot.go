package provider

import (
	"sync"

	"github.com/janhq/provider-sync/internal/infrastructure/metrics"
)

// Snapshot is one immutable view of the synchronized provider state. Every
// change publishes a new *Snapshot, so two snapshots are equal exactly when
// their pointers are equal. Fields must not be mutated by consumers.
type Snapshot struct {
	Providers        []Provider
	ActiveProviderID string
	ActiveDetail     *ProviderDetail
	RuntimeState     *RuntimeState
	EnabledProviders []EnabledProvider
	EnabledModels    []EnabledModel
	ChatModelTree    []ChatModelNode
	LoadingIDs       map[string]bool
}

// IsLoading reports whether a per-provider mutation is currently in flight.
func (s *Snapshot) IsLoading(id string) bool {
	return s.LoadingIDs[id]
}

// clone shallow-copies the snapshot. Mutators that touch LoadingIDs replace
// the map with a fresh copy so published snapshots stay immutable.
func (s *Snapshot) clone() *Snapshot {
	next := *s
	return &next
}

// Store holds the current Snapshot and fans out changes to subscribers.
type Store struct {
	mu      sync.Mutex
	current *Snapshot
	subs    map[int]func(*Snapshot)
	nextSub int
}

func NewStore() *Store {
	return &Store{
		current: &Snapshot{LoadingIDs: map[string]bool{}},
		subs:    make(map[int]func(*Snapshot)),
	}
}

// Snapshot returns the current state. The result is shared and immutable.
func (st *Store) Snapshot() *Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current
}

// Subscribe registers fn to run after every published change. It returns an
// unsubscribe func. Callbacks run outside the store lock and may call
// Snapshot, but must not block for long.
func (st *Store) Subscribe(fn func(*Snapshot)) func() {
	st.mu.Lock()
	id := st.nextSub
	st.nextSub++
	st.subs[id] = fn
	st.mu.Unlock()

	return func() {
		st.mu.Lock()
		delete(st.subs, id)
		st.mu.Unlock()
	}
}

// publish swaps the current snapshot under the lock and notifies subscribers
// outside it.
func (st *Store) publish(mutate func(next *Snapshot)) {
	st.mu.Lock()
	next := st.current.clone()
	mutate(next)
	st.current = next
	subs := make([]func(*Snapshot), 0, len(st.subs))
	for _, fn := range st.subs {
		subs = append(subs, fn)
	}
	st.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

func (st *Store) setProviders(list []Provider) {
	st.publish(func(next *Snapshot) {
		next.Providers = list
	})
}

// setActiveDetail records a detail read: the read provider becomes the active
// one and its detail is published alongside.
func (st *Store) setActiveDetail(id string, detail *ProviderDetail) {
	st.publish(func(next *Snapshot) {
		next.ActiveProviderID = id
		next.ActiveDetail = detail
	})
}

// refreshActiveDetail updates the published detail only when it belongs to
// the currently active provider. Background refreshes of other providers
// never steal the active slot.
func (st *Store) refreshActiveDetail(id string, detail *ProviderDetail) {
	st.mu.Lock()
	if st.current.ActiveProviderID != id {
		st.mu.Unlock()
		return
	}
	next := st.current.clone()
	next.ActiveDetail = detail
	st.current = next
	subs := make([]func(*Snapshot), 0, len(st.subs))
	for _, fn := range st.subs {
		subs = append(subs, fn)
	}
	st.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// applyRuntimeState publishes the runtime state together with all three
// projections derived from it in a single swap, so no snapshot ever mixes an
// old tree with a new state. A nil state clears all four fields together.
func (st *Store) applyRuntimeState(state *RuntimeState, tree []ChatModelNode) {
	st.publish(func(next *Snapshot) {
		next.RuntimeState = state
		next.ChatModelTree = tree
		if state != nil {
			next.EnabledProviders = state.EnabledProviders
			next.EnabledModels = state.EnabledModels
		} else {
			next.EnabledProviders = nil
			next.EnabledModels = nil
		}
	})
}

func (st *Store) markLoading(id string) {
	st.setLoading(id, true)
}

func (st *Store) releaseLoading(id string) {
	st.setLoading(id, false)
}

// setLoading flips one loading flag using copy-on-write on the LoadingIDs
// map. A call that would not change the flag publishes nothing.
func (st *Store) setLoading(id string, loading bool) {
	st.mu.Lock()
	if st.current.LoadingIDs[id] == loading {
		st.mu.Unlock()
		return
	}
	next := st.current.clone()
	ids := make(map[string]bool, len(st.current.LoadingIDs)+1)
	for k, v := range st.current.LoadingIDs {
		ids[k] = v
	}
	if loading {
		ids[id] = true
	} else {
		delete(ids, id)
	}
	next.LoadingIDs = ids
	st.current = next
	subs := make([]func(*Snapshot), 0, len(st.subs))
	for _, fn := range st.subs {
		subs = append(subs, fn)
	}
	st.mu.Unlock()

	metrics.SetLoadingProviders(len(ids))
	for _, fn := range subs {
		fn(next)
	}
}
