// Package registry implements the explicit handler-registration builder
// described in §4.4 and §9 Design Notes: callers call RegisterOnAction /
// RegisterAfterAction for each action they support before starting a
// session, then Freeze the registry. There is no package-level state and no
// reflection-based scanning — every registered action is named at the call
// site.
package registry

import (
	"context"
	"fmt"
)

// OnActionHandler answers an inbound Call. args carries the request payload
// with snake_case keys; if the entry's CallUniqueIDRequired flag is set, args
// additionally carries the reserved key "call_unique_id". The returned
// mapping is validated against the response schema (unless skipped) and
// becomes the CallResult payload.
type OnActionHandler func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)

// AfterActionHandler runs once an on_action handler (or the built-in
// NotImplemented/NotSupported path) has answered a Call. Its return value is
// discarded and any panic/error it produces is logged, never propagated to
// the inbound loop (§4.5).
type AfterActionHandler func(ctx context.Context, args map[string]interface{})

// Entry is the binding tuple from §4.4: (action, kind, skip_schema_validation,
// call_unique_id_required), with at most one OnAction and one AfterAction per
// action.
type Entry struct {
	Action               string
	OnAction             OnActionHandler
	AfterAction          AfterActionHandler
	SkipSchemaValidation bool
	CallUniqueIDRequired bool
}

// Registry is the immutable-after-Freeze handler table for one session role
// (charge point or central system).
type Registry struct {
	entries map[string]*Entry
	frozen  bool
}

// New returns an empty, mutable registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

func (r *Registry) entry(action string) *Entry {
	e, ok := r.entries[action]
	if !ok {
		e = &Entry{Action: action}
		r.entries[action] = e
	}
	return e
}

// RegisterOnAction binds the on_action handler for action. A second
// on_action registration for the same action is a configuration error (§4.4)
// and is rejected rather than silently overwriting the first.
func (r *Registry) RegisterOnAction(action string, handler OnActionHandler, skipSchemaValidation, callUniqueIDRequired bool) error {
	if r.frozen {
		return fmt.Errorf("registry: cannot register %q: registry is frozen", action)
	}
	e := r.entry(action)
	if e.OnAction != nil {
		return fmt.Errorf("registry: duplicate on_action handler for action %q", action)
	}
	e.OnAction = handler
	e.SkipSchemaValidation = skipSchemaValidation
	e.CallUniqueIDRequired = callUniqueIDRequired
	return nil
}

// RegisterAfterAction binds the after_action handler for action. Unlike
// on_action, a second registration simply replaces the first — after_action
// handlers have no wire-visible effect, so there is no correctness reason to
// forbid it, but last-registration-wins is documented rather than silent.
func (r *Registry) RegisterAfterAction(action string, handler AfterActionHandler) error {
	if r.frozen {
		return fmt.Errorf("registry: cannot register %q: registry is frozen", action)
	}
	r.entry(action).AfterAction = handler
	return nil
}

// Freeze marks the registry read-only. Callers call this before handing the
// registry to session.New (which does not freeze it itself) so concurrent
// lookups never race with registration (§5: "the route map is read-only after construction").
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Lookup returns the entry for action, if any handler (on_action or
// after_action) has been registered for it.
func (r *Registry) Lookup(action string) (*Entry, bool) {
	e, ok := r.entries[action]
	return e, ok
}
