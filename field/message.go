// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"strings"
)

// ChangeKinds are bit flags describing how a field changed.
type ChangeKinds int32

const (
	// Added indicates that the field was registered with the manager.
	Added ChangeKinds = 1 << iota

	// ChangedObject indicates that the definition or values of the
	// field changed, so that anything depending on it is out of date.
	ChangedObject

	// ChangedIdentifier indicates that the field was renamed.
	ChangedIdentifier

	// Removed indicates that the field was removed from the manager.
	Removed
)

// Changed is both kinds of change to a registered field.
const Changed = ChangedObject | ChangedIdentifier

// Has returns whether any of the given kinds are set.
func (k ChangeKinds) Has(kinds ChangeKinds) bool {
	return k&kinds != 0
}

func (k ChangeKinds) String() string {
	if k == 0 {
		return "none"
	}
	var names []string
	for _, kn := range []struct {
		kind ChangeKinds
		name string
	}{{Added, "added"}, {ChangedObject, "changed-object"}, {ChangedIdentifier, "changed-identifier"}, {Removed, "removed"}} {
		if k.Has(kn.kind) {
			names = append(names, kn.name)
		}
	}
	return strings.Join(names, "|")
}

// Change is one field of a [Message] with the kinds of change
// made to it.
type Change struct {
	Field *Field
	Kinds ChangeKinds
}

// Message describes a set of changes made to the fields of a manager,
// which is sent to all of its callbacks.
type Message struct {
	changes []Change
}

// add records the given kinds of change for the field, merging
// with any change already recorded for it.
func (m *Message) add(kinds ChangeKinds, f *Field) {
	for i := range m.changes {
		if m.changes[i].Field == f {
			m.changes[i].Kinds |= kinds
			return
		}
	}
	m.changes = append(m.changes, Change{Field: f, Kinds: kinds})
}

// Len returns the number of changed fields.
func (m *Message) Len() int { return len(m.changes) }

// Changes returns the changes in the order the fields first changed.
func (m *Message) Changes() []Change { return m.changes }

// Kinds returns the union of all kinds of change in the message.
func (m *Message) Kinds() ChangeKinds {
	var k ChangeKinds
	for _, c := range m.changes {
		k |= c.Kinds
	}
	return k
}

// Fields returns the fields with any of the given kinds of change.
func (m *Message) Fields(kinds ChangeKinds) []*Field {
	var fs []*Field
	for _, c := range m.changes {
		if c.Kinds.Has(kinds) {
			fs = append(fs, c.Field)
		}
	}
	return fs
}

// KindsOf returns the kinds of change made to the given field,
// which is zero if it is not in the message.
func (m *Message) KindsOf(f *Field) ChangeKinds {
	for _, c := range m.changes {
		if c.Field == f {
			return c.Kinds
		}
	}
	return 0
}
