// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/hsorby/cmgui-sub001/mesh"
)

// Field is a node of the field evaluation graph. It combines a
// type-specific [Core] with an ordered list of source fields and a
// [Cache] of its most recently evaluated values.
//
// Fields are reference counted: [New] returns a field holding one
// reference for its creator, a [Manager] holds one while the field is
// registered, and each field using it as a source holds one. The field
// is destroyed exactly when the last reference is released.
//
// Evaluation is not safe for concurrent use; reference counting
// and registration are.
type Field struct {

	// mu guards the identity and lifetime state below.
	mu        sync.Mutex
	name      string
	manager   *Manager
	refs      int
	destroyed bool
	onDestroy []func(f *Field)

	// dependents are the fields using this one as a source,
	// once per use.
	dependents []*Field

	core          Core
	sources       []*Field
	numComponents int
	cache         Cache

	// evaluating is set while the field is on the evaluation stack.
	evaluating bool
}

// New returns a new field with the given name and no type.
// The caller holds its one reference.
func New(name string) *Field {
	return &Field{name: name, refs: 1}
}

func (f *Field) String() string {
	if f == nil {
		return "field(nil)"
	}
	return fmt.Sprintf("field %q", f.Name())
}

// Name returns the name of the field.
func (f *Field) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

// Manager returns the manager the field is registered with, or nil.
func (f *Field) Manager() *Manager {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.manager
}

// Core returns the type-specific data of the field, or nil.
func (f *Field) Core() Core { return f.core }

// TypeName returns the type tag of the field, or "" if it has no type.
func (f *Field) TypeName() string {
	if f.core == nil {
		return ""
	}
	return f.core.TypeName()
}

// NumComponents returns the number of components of the field,
// which is zero until its type is set.
func (f *Field) NumComponents() int { return f.numComponents }

// NumSources returns the number of source fields.
func (f *Field) NumSources() int { return len(f.sources) }

// Source returns the source field at the given index, or nil.
func (f *Field) Source(i int) *Field {
	if i < 0 || i >= len(f.sources) {
		return nil
	}
	return f.sources[i]
}

// Sources returns a copy of the list of source fields.
func (f *Field) Sources() []*Field { return slices.Clone(f.sources) }

//////// Lifetime

// Acquire adds a reference to the field.
func (f *Field) Acquire() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.destroyed {
		return fmt.Errorf("field.Acquire %q: %w", f.name, ErrDestroyed)
	}
	f.refs++
	return nil
}

// Release removes a reference to the field, destroying it when no
// references remain. The reference held by a manager can only be
// released by removing the field from it.
func (f *Field) Release() error {
	f.mu.Lock()
	if f.destroyed {
		f.mu.Unlock()
		return fmt.Errorf("field.Release %q: %w", f.name, ErrDestroyed)
	}
	if f.refs == 1 && f.manager != nil {
		f.mu.Unlock()
		return fmt.Errorf("field.Release %q: last reference is held by its manager: %w", f.name, ErrInUse)
	}
	f.refs--
	if f.refs > 0 {
		f.mu.Unlock()
		return nil
	}
	f.destroyed = true
	hooks := f.onDestroy
	f.onDestroy = nil
	f.mu.Unlock()
	f.destroy(hooks)
	return nil
}

// destroy frees the type-specific data and releases the sources.
func (f *Field) destroy(hooks []func(f *Field)) {
	sources := f.sources
	f.core = nil
	f.sources = nil
	f.cache = Cache{}
	for _, s := range sources {
		s.removeDependent(f)
		s.Release()
	}
	slog.Debug("field: destroyed", "field", f.name)
	for _, h := range hooks {
		h(f)
	}
}

// RefCount returns the number of references held on the field.
func (f *Field) RefCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refs
}

// IsDestroyed returns whether the last reference to the field
// has been released.
func (f *Field) IsDestroyed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destroyed
}

// OnDestroy adds a function that is called once when the field
// is destroyed.
func (f *Field) OnDestroy(fun func(f *Field)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onDestroy = append(f.onDestroy, fun)
}

//////// Type

// SetCore sets the type of the field to the given core with the given
// sources, replacing any prior type. All arguments are checked before
// anything changes: on error the field keeps its prior definition.
// A source that depends on f is rejected with [ErrCycle], and the
// number of components cannot change while other fields use f.
func (f *Field) SetCore(core Core, sources ...*Field) error {
	name := f.Name()
	if core == nil {
		return fmt.Errorf("field.SetCore %q: nil type: %w", name, ErrInvalidArgument)
	}
	if f.IsDestroyed() {
		return fmt.Errorf("field.SetCore %q: %w", name, ErrDestroyed)
	}
	if f.evaluating {
		return fmt.Errorf("field.SetCore %q: redefined during evaluation: %w", name, ErrInUse)
	}
	seen := map[*Field]bool{}
	for i, s := range sources {
		if s == nil {
			return fmt.Errorf("field.SetCore %q: %s source %d is nil: %w", name, core.TypeName(), i, ErrInvalidArgument)
		}
		if s.IsDestroyed() {
			return fmt.Errorf("field.SetCore %q: %s source %d: %w", name, core.TypeName(), i, ErrDestroyed)
		}
		if s.dependsOn(func(o *Field) bool { return o == f }, seen) {
			return fmt.Errorf("field.SetCore %q: source %q depends on it: %w", name, s.Name(), ErrCycle)
		}
	}
	nc, err := core.NumComponents(sources)
	if err != nil {
		return fmt.Errorf("field.SetCore %q: %s: %w", name, core.TypeName(), err)
	}
	if nc <= 0 {
		return fmt.Errorf("field.SetCore %q: %s has %d components: %w", name, core.TypeName(), nc, ErrInvalidArgument)
	}
	if f.core != nil && nc != f.numComponents && f.hasDependents() {
		return fmt.Errorf("field.SetCore %q: cannot change from %d to %d components while other fields use it: %w", name, f.numComponents, nc, ErrInUse)
	}
	for i, s := range sources {
		if err := s.Acquire(); err != nil {
			for _, a := range sources[:i] {
				a.Release()
			}
			return fmt.Errorf("field.SetCore %q: %w", name, err)
		}
	}
	old := f.sources
	f.core = core
	f.sources = slices.Clone(sources)
	f.numComponents = nc
	f.cache.invalidate()
	for _, s := range sources {
		s.addDependent(f)
	}
	for _, s := range old {
		s.removeDependent(f)
		s.Release()
	}
	slog.Debug("field: type set", "field", name, "type", core.TypeName(), "components", nc)
	f.Changed()
	return nil
}

// Changed signals that the definition or the type-specific data of the
// field has changed. It clears the caches of the field and of every
// field depending on it, in any manager or none, and then notifies
// the manager of the field.
func (f *Field) Changed() {
	for _, d := range f.dependentClosure() {
		d.ClearCache()
	}
	if m := f.Manager(); m != nil {
		m.notify(ChangedObject, f)
	}
}

func (f *Field) addDependent(d *Field) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dependents = append(f.dependents, d)
}

// removeDependent removes one use of f by d.
func (f *Field) removeDependent(d *Field) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := slices.Index(f.dependents, d); i >= 0 {
		f.dependents = slices.Delete(f.dependents, i, i+1)
	}
}

// hasDependents returns whether any field uses f as a source.
func (f *Field) hasDependents() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dependents) > 0
}

// dependentClosure returns f followed by every field that directly
// or indirectly depends on it, each once.
func (f *Field) dependentClosure() []*Field {
	all := []*Field{f}
	seen := map[*Field]bool{f: true}
	for i := 0; i < len(all); i++ {
		all[i].mu.Lock()
		ds := slices.Clone(all[i].dependents)
		all[i].mu.Unlock()
		for _, d := range ds {
			if !seen[d] {
				seen[d] = true
				all = append(all, d)
			}
		}
	}
	return all
}

// ClearCache invalidates the cached values of the field, and any data
// cached by its core.
func (f *Field) ClearCache() {
	f.cache.invalidate()
	if inv, ok := f.core.(Invalidator); ok {
		inv.Invalidate()
	}
}

// Cache returns a copy of the current cache of the field.
func (f *Field) Cache() Cache { return f.cache.snapshot() }

// Values returns the cached values of the most recent evaluation.
// The slice is owned by the field and must not be modified.
func (f *Field) Values() []float64 { return f.cache.Values }

// Derivatives returns the cached xi derivatives of the most recent
// evaluation, or nil if they were not evaluated.
// The slice is owned by the field and must not be modified.
func (f *Field) Derivatives() []float64 { return f.cache.Derivatives }

// CommandString returns the command that reproduces the type of the
// field, or "" if it has no type. Data held outside the command, such
// as the node values of a finite element field, is not included.
func (f *Field) CommandString() string {
	if f.core == nil {
		return ""
	}
	return f.core.CommandString(f)
}

// Clone returns a new unmanaged field with the given name and a deep
// copy of the type of f, using the same sources.
func (f *Field) Clone(name string) (*Field, error) {
	if f.IsDestroyed() {
		return nil, fmt.Errorf("field.Clone %q: %w", f.Name(), ErrDestroyed)
	}
	c := New(name)
	if f.core == nil {
		return c, nil
	}
	if err := c.SetCore(f.core.Clone(), f.sources...); err != nil {
		c.Release()
		return nil, err
	}
	return c, nil
}

//////// Dependencies

// DependsOn returns whether the field is, or directly or indirectly
// depends on, the other field.
func (f *Field) DependsOn(other *Field) bool {
	return f.dependsOn(func(s *Field) bool { return s == other }, map[*Field]bool{})
}

// DependsOnAny returns whether the field depends on any of the given fields.
func (f *Field) DependsOnAny(fields []*Field) bool {
	if len(fields) == 0 {
		return false
	}
	return f.dependsOn(func(s *Field) bool { return slices.Contains(fields, s) }, map[*Field]bool{})
}

// dependsOn walks the sources of f depth first, visiting each field
// at most once across calls sharing seen.
func (f *Field) dependsOn(match func(s *Field) bool, seen map[*Field]bool) bool {
	if seen[f] {
		return false
	}
	seen[f] = true
	if match(f) {
		return true
	}
	for _, s := range f.sources {
		if s.dependsOn(match, seen) {
			return true
		}
	}
	return false
}

//////// Evaluation

// EvaluateAtLocation evaluates the field at the given location, filling
// its cache. Cached values are reused when the location and time are
// identical. Derivatives are only evaluated at element locations.
// On error the cache keeps its previous state.
func (f *Field) EvaluateAtLocation(loc Location, wantDerivatives bool) error {
	if loc == nil {
		return fmt.Errorf("field.Evaluate %q: nil location: %w", f.Name(), ErrInvalidArgument)
	}
	if f.core == nil {
		if f.IsDestroyed() {
			return fmt.Errorf("field.Evaluate %q: %w", f.Name(), ErrDestroyed)
		}
		return fmt.Errorf("field.Evaluate %q: %w", f.Name(), ErrNoCore)
	}
	if f.evaluating {
		return fmt.Errorf("field.Evaluate %q: revisited during its own evaluation: %w", f.Name(), ErrCycle)
	}
	derivatives := wantDerivatives && NumXi(loc) > 0
	if f.cache.matches(loc, derivatives) {
		return nil
	}
	if derivatives && !supportsDerivatives(f.core) {
		return fmt.Errorf("field.Evaluate %q: %s: %w", f.Name(), f.core.TypeName(), ErrNoDerivatives)
	}
	f.evaluating = true
	defer func() { f.evaluating = false }()
	ev := newEvaluation(loc, f.numComponents, derivatives)
	if err := f.core.Evaluate(f, ev); err != nil {
		slog.Debug("field: evaluation failed", "field", f.Name(), "location", loc, "err", err)
		return fmt.Errorf("field %q: %w", f.Name(), err)
	}
	f.cache.store(ev)
	return nil
}

// Evaluate evaluates the field at the given location without
// derivatives and returns a copy of its values.
func (f *Field) Evaluate(loc Location) ([]float64, error) {
	if err := f.EvaluateAtLocation(loc, false); err != nil {
		return nil, err
	}
	return slices.Clone(f.cache.Values), nil
}

// EvaluateAtNode evaluates the field at the given node and time.
func (f *Field) EvaluateAtNode(node *mesh.Node, time float64) error {
	if node == nil {
		return fmt.Errorf("field.EvaluateAtNode %q: nil node: %w", f.Name(), ErrInvalidArgument)
	}
	return f.EvaluateAtLocation(NodeLocation{Node: node, T: time}, false)
}

// EvaluateInElement evaluates the field at the given xi in the element
// and time, with derivatives with respect to xi if wanted. topLevel is
// the element the evaluation is ultimately for, and may be nil.
func (f *Field) EvaluateInElement(element *mesh.Element, xi []float64, time float64, topLevel *mesh.Element, wantDerivatives bool) error {
	if element == nil {
		return fmt.Errorf("field.EvaluateInElement %q: nil element: %w", f.Name(), ErrInvalidArgument)
	}
	if len(xi) != element.Dimension {
		return fmt.Errorf("field.EvaluateInElement %q: %d xi for %v: %w", f.Name(), len(xi), element, ErrDimensionMismatch)
	}
	return f.EvaluateAtLocation(ElementLocation{Element: element, Xi: xi, TopLevel: topLevel, T: time}, wantDerivatives)
}

// IsDefinedAtNode returns whether the field can be evaluated at the node.
// By default a field is defined wherever all of its sources are.
func (f *Field) IsDefinedAtNode(node *mesh.Node) bool {
	if f.core == nil || node == nil {
		return false
	}
	if nd, ok := f.core.(NodeDefiner); ok {
		return nd.IsDefinedAtNode(f, node)
	}
	for _, s := range f.sources {
		if !s.IsDefinedAtNode(node) {
			return false
		}
	}
	return true
}

// IsDefinedInElement returns whether the field can be evaluated
// throughout the element. By default a field is defined wherever all
// of its sources are.
func (f *Field) IsDefinedInElement(element *mesh.Element) bool {
	if f.core == nil || element == nil {
		return false
	}
	if ed, ok := f.core.(ElementDefiner); ok {
		return ed.IsDefinedInElement(f, element)
	}
	for _, s := range f.sources {
		if !s.IsDefinedInElement(element) {
			return false
		}
	}
	return true
}

// managerChanged is the manager callback of a registered field.
func (f *Field) managerChanged(msg *Message, _ any) {
	if f.DependsOnAny(msg.Fields(ChangedObject)) {
		f.ClearCache()
	}
}
