// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"sync"
)

// Callback is a function that receives the change messages of
// a [Manager], along with the context it was added with.
type Callback func(msg *Message, ctx any)

// callback is one connection to the manager's change messages.
type callback struct {
	ctx any
	fun Callback
}

// Manager owns the fields of a region by name, keeping them in the
// order they were added, and notifies callbacks about changes to them.
//
// Each registered field is itself connected as a callback, so that it
// clears its cache whenever a field it depends on changes.
// Callbacks are called synchronously without any lock held, but must
// not register or remove fields while an evaluation is in progress.
type Manager struct {
	mu sync.Mutex

	// order is the list of fields in the order added.
	order []*Field

	// index maps names to indexes in order.
	index map[string]int

	callbacks []callback

	// changeDepth is the nesting depth of [Manager.BeginChange].
	changeDepth int

	// pending accumulates the changes to send.
	pending *Message
}

// NewManager returns a new empty manager.
func NewManager() *Manager {
	return &Manager{index: map[string]int{}}
}

// Add registers the given field under its name, adding a reference to it.
func (m *Manager) Add(f *Field) error {
	if f == nil {
		return fmt.Errorf("field.Manager.Add: nil field: %w", ErrInvalidArgument)
	}
	m.mu.Lock()
	f.mu.Lock()
	name := f.name
	err := func() error {
		switch {
		case f.destroyed:
			return ErrDestroyed
		case f.manager != nil:
			return fmt.Errorf("already registered: %w", ErrInvalidArgument)
		case name == "":
			return fmt.Errorf("empty name: %w", ErrInvalidArgument)
		}
		if _, has := m.index[name]; has {
			return ErrDuplicateName
		}
		return nil
	}()
	if err != nil {
		f.mu.Unlock()
		m.mu.Unlock()
		return fmt.Errorf("field.Manager.Add %q: %w", name, err)
	}
	f.refs++
	f.manager = m
	f.mu.Unlock()
	m.index[name] = len(m.order)
	m.order = append(m.order, f)
	m.connect(f, f.managerChanged)
	m.mu.Unlock()
	slog.Debug("field.Manager: added", "field", name)
	m.notify(Added, f)
	return nil
}

// Define sets the type of the field with the given name to the given
// core and sources, creating and registering the field if it does not
// exist yet. A new field is only referenced by the manager. On error
// an existing field keeps its prior definition and no field is added.
func (m *Manager) Define(name string, core Core, sources ...*Field) (*Field, error) {
	if f := m.FindByName(name); f != nil {
		if err := f.SetCore(core, sources...); err != nil {
			return nil, err
		}
		return f, nil
	}
	f := New(name)
	if err := f.SetCore(core, sources...); err != nil {
		f.Release()
		return nil, err
	}
	if err := m.Add(f); err != nil {
		f.Release()
		return nil, err
	}
	f.Release()
	return f, nil
}

// Remove deregisters the given field and releases the manager's
// reference to it. It fails with [ErrInUse] while any other reference
// to the field exists, including those of fields using it as a source.
func (m *Manager) Remove(f *Field) error {
	if f == nil {
		return fmt.Errorf("field.Manager.Remove: nil field: %w", ErrInvalidArgument)
	}
	m.mu.Lock()
	f.mu.Lock()
	name := f.name
	if f.manager != m {
		f.mu.Unlock()
		m.mu.Unlock()
		return fmt.Errorf("field.Manager.Remove %q: not registered: %w", name, ErrInvalidArgument)
	}
	if f.refs > 1 {
		refs := f.refs
		f.mu.Unlock()
		m.mu.Unlock()
		return fmt.Errorf("field.Manager.Remove %q: %d other references: %w", name, refs-1, ErrInUse)
	}
	f.manager = nil
	f.mu.Unlock()
	m.deleteIndex(m.index[name])
	m.disconnect(f)
	m.mu.Unlock()
	slog.Debug("field.Manager: removed", "field", name)
	m.notify(Removed, f)
	return f.Release()
}

// RemoveUnused removes every field that nothing but the manager
// references, repeating until no more can be removed, so that fields
// only used by removed fields are removed too. It returns the number
// of fields removed.
func (m *Manager) RemoveUnused() int {
	n := 0
	for {
		removed := false
		fs := m.snapshot()
		for i := len(fs) - 1; i >= 0; i-- {
			if fs[i].RefCount() == 1 && m.Remove(fs[i]) == nil {
				n++
				removed = true
			}
		}
		if !removed {
			return n
		}
	}
}

// deleteIndex removes the field at the given index of the order,
// renumbering the index map above it. Must be called under the lock.
func (m *Manager) deleteIndex(idx int) {
	for o := idx + 1; o < len(m.order); o++ {
		m.index[m.order[o].name] = o - 1
	}
	delete(m.index, m.order[idx].name)
	m.order = slices.Delete(m.order, idx, idx+1)
}

// Rename changes the name of a registered field.
func (m *Manager) Rename(f *Field, name string) error {
	if f == nil || name == "" {
		return fmt.Errorf("field.Manager.Rename: nil field or empty name: %w", ErrInvalidArgument)
	}
	m.mu.Lock()
	f.mu.Lock()
	old := f.name
	if f.manager != m {
		f.mu.Unlock()
		m.mu.Unlock()
		return fmt.Errorf("field.Manager.Rename %q: not registered: %w", old, ErrInvalidArgument)
	}
	if old == name {
		f.mu.Unlock()
		m.mu.Unlock()
		return nil
	}
	if _, has := m.index[name]; has {
		f.mu.Unlock()
		m.mu.Unlock()
		return fmt.Errorf("field.Manager.Rename %q to %q: %w", old, name, ErrDuplicateName)
	}
	f.name = name
	f.mu.Unlock()
	idx := m.index[old]
	delete(m.index, old)
	m.index[name] = idx
	m.mu.Unlock()
	m.notify(ChangedIdentifier, f)
	return nil
}

// FindByName returns the field with the given name, or nil.
func (m *Manager) FindByName(name string) *Field {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx, ok := m.index[name]; ok {
		return m.order[idx]
	}
	return nil
}

// Len returns the number of registered fields.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// UniqueName returns a name starting with the given prefix that
// is not used by any registered field.
func (m *Manager) UniqueName(prefix string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, has := m.index[prefix]; !has && prefix != "" {
		return prefix
	}
	for i := 1; ; i++ {
		nm := prefix + strconv.Itoa(i)
		if _, has := m.index[nm]; !has {
			return nm
		}
	}
}

// snapshot returns a copy of the ordered list of fields.
func (m *Manager) snapshot() []*Field {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order)
}

// Continue and Break are the return values of [Manager.ForEach]
// visitor functions.
const (
	Continue = true
	Break    = false
)

// ForEach calls the given function on each field in the order they
// were added, until it returns [Break]. The set of fields is fixed
// when iteration starts.
func (m *Manager) ForEach(fun func(f *Field) bool) {
	for _, f := range m.snapshot() {
		if fun(f) == Break {
			return
		}
	}
}

// All returns an iterator over the fields in the order they were added.
func (m *Manager) All() iter.Seq[*Field] {
	return func(yield func(*Field) bool) {
		m.ForEach(yield)
	}
}

//////// Callbacks

// AddCallback connects the given function to the change messages of
// the manager, with the given context passed back to it. The context
// identifies the connection and must be comparable: there can only be
// one connection per context, so an existing one is replaced.
func (m *Manager) AddCallback(ctx any, fun Callback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connect(ctx, fun)
}

// RemoveCallback disconnects the callback with the given context,
// returning false if there was none.
func (m *Manager) RemoveCallback(ctx any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnect(ctx)
}

// NumCallbacks returns the number of connected callbacks.
func (m *Manager) NumCallbacks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.callbacks)
}

func (m *Manager) connect(ctx any, fun Callback) {
	for i := range m.callbacks {
		if m.callbacks[i].ctx == ctx {
			m.callbacks[i].fun = fun
			return
		}
	}
	m.callbacks = append(m.callbacks, callback{ctx: ctx, fun: fun})
}

func (m *Manager) disconnect(ctx any) bool {
	n := len(m.callbacks)
	m.callbacks = slices.DeleteFunc(m.callbacks, func(c callback) bool { return c.ctx == ctx })
	return len(m.callbacks) != n
}

// BeginChange starts a batch of changes: no messages are sent until
// the matching [Manager.EndChange], which sends all of the changes
// made in between as one message. Calls may be nested.
func (m *Manager) BeginChange() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changeDepth++
}

// EndChange ends a batch of changes started with [Manager.BeginChange].
func (m *Manager) EndChange() {
	m.mu.Lock()
	if m.changeDepth == 0 {
		m.mu.Unlock()
		slog.Error("field.Manager.EndChange: called without BeginChange")
		return
	}
	m.changeDepth--
	m.mu.Unlock()
	m.notify(0, nil)
}

// notify records the given change and, unless a batch is in progress,
// sends all pending changes to the callbacks.
func (m *Manager) notify(kinds ChangeKinds, f *Field) {
	m.mu.Lock()
	if f != nil {
		if m.pending == nil {
			m.pending = &Message{}
		}
		m.pending.add(kinds, f)
	}
	if m.changeDepth > 0 || m.pending == nil {
		m.mu.Unlock()
		return
	}
	msg := m.pending
	m.pending = nil
	cbs := slices.Clone(m.callbacks)
	m.mu.Unlock()
	for _, cb := range cbs {
		cb.fun(msg, cb.ctx)
	}
}
