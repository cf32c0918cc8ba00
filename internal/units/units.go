package units

import (
	"sort"
	"sync"

	"github.com/petermattis/goid"
)

// Table tracks which script units have been brought into an engine. Each
// unit runs at most once no matter how many goroutines race to load it;
// later callers wait for the first and share its outcome, including
// failure.
type Table struct {
	mu    sync.Mutex
	units map[string]*unit
}

type unit struct {
	owner int64
	done  chan struct{}
	err   error
}

func NewTable() *Table {
	return &Table{units: make(map[string]*unit)}
}

// Run executes fn under name exactly once. A unit that uses itself while
// loading, directly or through a cycle, is a no-op for the loading
// goroutine rather than a deadlock.
func (t *Table) Run(name string, fn func() error) error {
	t.mu.Lock()
	if u, ok := t.units[name]; ok {
		t.mu.Unlock()
		if u.owner == goid.Get() {
			select {
			case <-u.done:
			default:
				return nil
			}
		}
		<-u.done
		return u.err
	}
	u := &unit{owner: goid.Get(), done: make(chan struct{})}
	t.units[name] = u
	t.mu.Unlock()

	u.err = fn()
	close(u.done)
	return u.err
}

// Intern marks name as present without running anything. Re-evaluable
// units like the eval pseudo-file register this way.
func (t *Table) Intern(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.units[name]; ok {
		return
	}
	done := make(chan struct{})
	close(done)
	t.units[name] = &unit{done: done}
}

// Contains reports whether name has been loaded or is loading.
func (t *Table) Contains(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.units[name]
	return ok
}

// Names returns the loaded unit names in sorted order.
func (t *Table) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.units))
	for name := range t.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
