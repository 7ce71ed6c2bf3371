// Package vault holds the in-process resource lock used by the CLI and
// tests. Production deployments plug their own lock service into the gate.
package vault

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Lock tracks which resources are open. Resources start locked.
type Lock struct {
	mu     sync.Mutex
	open   map[string]time.Time
	locked map[string]bool // resources that refuse to open
	now    func() time.Time
}

// NewLock creates a lock with every resource closed
func NewLock() *Lock {
	return &Lock{
		open:   make(map[string]time.Time),
		locked: make(map[string]bool),
		now:    time.Now,
	}
}

// OpenResource opens a resource. Opening an open resource is a no-op.
func (l *Lock) OpenResource(ctx context.Context, resourceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locked[resourceID] {
		return fmt.Errorf("resource %s is administratively locked", resourceID)
	}
	if _, ok := l.open[resourceID]; !ok {
		l.open[resourceID] = l.now()
	}
	return nil
}

// CloseResource locks a resource again
func (l *Lock) CloseResource(resourceID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.open, resourceID)
}

// Freeze makes every future OpenResource for the resource fail
func (l *Lock) Freeze(resourceID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked[resourceID] = true
	delete(l.open, resourceID)
}

// IsOpen reports whether a resource is open
func (l *Lock) IsOpen(resourceID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.open[resourceID]
	return ok
}

// Opened lists the open resources in sorted order
func (l *Lock) Opened() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.open))
	for id := range l.open {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
