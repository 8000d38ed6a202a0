package enemy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Manager tracks all live enemies by ID in spawn order.
// All methods are safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	enemies map[string]*Enemy
	seq     uint64
}

// NewManager creates an empty enemy Manager.
func NewManager() *Manager {
	return &Manager{enemies: make(map[string]*Enemy)}
}

// Add registers e, assigning a fresh ID and the next spawn sequence number.
//
// Precondition: e must be non-nil and not already registered.
// Postcondition: e.ID is a new UUID; e.Seq is greater than every earlier Seq.
func (m *Manager) Add(e *Enemy) (*Enemy, error) {
	if e == nil {
		return nil, fmt.Errorf("enemy.Manager.Add: enemy must not be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	e.ID = uuid.New().String()
	e.Seq = m.seq
	m.enemies[e.ID] = e
	return e, nil
}

// Remove deletes an enemy by ID.
//
// Postcondition: Returns an error if the enemy is not found.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.enemies[id]; !ok {
		return fmt.Errorf("enemy %q not found", id)
	}
	delete(m.enemies, id)
	return nil
}

// Get returns the enemy with the given ID.
//
// Postcondition: Returns (e, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(id string) (*Enemy, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.enemies[id]
	return e, ok
}

// All returns a snapshot of every registered enemy in spawn order.
//
// Postcondition: Returns a non-nil slice sorted by Seq ascending.
func (m *Manager) All() []*Enemy {
	m.mu.RLock()
	out := make([]*Enemy, 0, len(m.enemies))
	for _, e := range m.enemies {
		out = append(out, e)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Active returns a snapshot of the enemies that are alive and on the playfield,
// in spawn order.
func (m *Manager) Active() []*Enemy {
	all := m.All()
	out := all[:0]
	for _, e := range all {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out
}

// CountByType counts active enemies of type t. Bosses are not counted.
func (m *Manager) CountByType(t Type) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.enemies {
		if e.Type == t && !e.IsBoss() && e.IsActive() {
			n++
		}
	}
	return n
}

// Len returns the number of registered enemies.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.enemies)
}

// Clear removes every enemy. The spawn sequence keeps increasing.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enemies = make(map[string]*Enemy)
}
