package status

import (
	"context"
	"fmt"
	"sync"
)

// UpdateFunc persists a derived status for a task.
type UpdateFunc func(ctx context.Context, taskID string, s Status) error

// Reconciler writes a derived status back when it diverges from the stored
// one. Each divergence produces exactly one update: deriving the same value
// again is a no-op until the stored value changes. Failed updates are not
// remembered, so the next pass retries.
type Reconciler struct {
	update UpdateFunc

	mu      sync.Mutex
	pending map[string]Status
}

func NewReconciler(update UpdateFunc) *Reconciler {
	return &Reconciler{
		update:  update,
		pending: make(map[string]Status),
	}
}

// Reconcile derives the task status and issues a write-back if needed. It
// returns the derived status and whether an update was issued.
//
// The task is marked pending before the update runs and the lock is not held
// during it, so write-backs of different tasks proceed in parallel. A failed
// update restores the previous mark.
func (r *Reconciler) Reconcile(ctx context.Context, t Task) (Status, bool, error) {
	derived := Aggregate(t)

	r.mu.Lock()
	// Legacy spellings such as "In_Progress" count as divergent so the
	// stored value converges on the canonical form.
	if t.Status == string(derived) {
		delete(r.pending, t.ID)
		r.mu.Unlock()
		return derived, false, nil
	}
	prev, hadPrev := r.pending[t.ID]
	if hadPrev && prev == derived {
		r.mu.Unlock()
		return derived, false, nil
	}
	r.pending[t.ID] = derived
	r.mu.Unlock()

	if err := r.update(ctx, t.ID, derived); err != nil {
		r.mu.Lock()
		if cur, ok := r.pending[t.ID]; ok && cur == derived {
			if hadPrev {
				r.pending[t.ID] = prev
			} else {
				delete(r.pending, t.ID)
			}
		}
		r.mu.Unlock()
		return derived, false, fmt.Errorf("write back status of task %s: %w", t.ID, err)
	}
	return derived, true, nil
}

// Forget drops what the reconciler remembers about a task, for example
// after the task is deleted.
func (r *Reconciler) Forget(taskID string) {
	r.mu.Lock()
	delete(r.pending, taskID)
	r.mu.Unlock()
}
