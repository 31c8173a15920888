package loop

import (
	"fmt"

	"github.com/rosalana/sandbox/sberr"
)

// Hook runs around a rendered frame. Returning false removes the hook
// after the current run; any other outcome keeps it registered.
type Hook func(State) bool

type hookEntry struct {
	id int
	fn Hook
}

// Hooks is an ordered collection of callbacks. Callbacks run in insertion
// order; removal requested during a run takes effect once the run ends. A
// panicking callback aborts the rest of its run but stays registered, so
// the next frame runs the remaining hooks again.
type Hooks struct {
	entries []hookEntry
	nextID  int
}

// Add registers fn and returns a function that removes it again.
func (h *Hooks) Add(fn Hook) func() {
	h.nextID++
	id := h.nextID
	h.entries = append(h.entries, hookEntry{id: id, fn: fn})
	return func() { h.remove(id) }
}

func (h *Hooks) remove(id int) {
	for i, e := range h.entries {
		if e.id == id {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return
		}
	}
}

// Run invokes every hook with the state snapshot. A panic inside a hook
// is wrapped as a single UNKNOWN_ERROR identifying the hook and returned;
// hooks after the panicking one do not run this time.
func (h *Hooks) Run(state State) (err error) {
	snapshot := append([]hookEntry(nil), h.entries...)
	var drop []int
	defer func() {
		for _, id := range drop {
			h.remove(id)
		}
	}()
	for _, e := range snapshot {
		keep, perr := runHook(e, state)
		if perr != nil {
			return perr
		}
		if !keep {
			drop = append(drop, e.id)
		}
	}
	return nil
}

func runHook(e hookEntry, state State) (keep bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = sberr.Wrap(sberr.CodeUnknown, asError(r), "hook %d panicked", e.id)
			keep = true
		}
	}()
	return e.fn(state), nil
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// Len reports the number of registered hooks.
func (h *Hooks) Len() int { return len(h.entries) }

// Destroy empties the collection.
func (h *Hooks) Destroy() {
	h.entries = nil
}
