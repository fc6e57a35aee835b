// Copyright 2025 Naren Yellavula
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"iter"

	"github.com/pkg/errors"
)

type listNode struct {
	record Record
	next   *listNode
	// prev is navigational only; next is the owning link.
	prev *listNode
}

// SortedList keeps records in strictly descending name order (Z to A).
// An empty list has neither head nor tail.
type SortedList struct {
	head *listNode
	tail *listNode
	len  int

	cats    Categories
	version uint64
}

func NewSortedList(cats Categories) *SortedList {
	return &SortedList{cats: cats}
}

func (l *SortedList) Len() int {
	return l.len
}

// Insert links r in front of the first node whose name sorts at or before
// r.Name.
func (l *SortedList) Insert(r Record) error {
	if l.findNode(r.Name) != nil {
		return errors.Wrapf(ErrDuplicateKey, "%q already in list", r.Name)
	}

	node := &listNode{record: r}
	l.len++
	l.version++

	if l.head == nil {
		l.head = node
		l.tail = node
		return nil
	}

	current := l.head
	for current != nil && current.record.Name > r.Name {
		current = current.next
	}

	switch {
	case current == l.head:
		node.next = l.head
		l.head.prev = node
		l.head = node
	case current == nil:
		node.prev = l.tail
		l.tail.next = node
		l.tail = node
	default:
		node.next = current
		node.prev = current.prev
		current.prev.next = node
		current.prev = node
	}
	return nil
}

func (l *SortedList) findNode(name string) *listNode {
	for current := l.head; current != nil; current = current.next {
		if current.record.Name == name {
			return current
		}
	}
	return nil
}

// Find returns a copy of the record stored under name.
func (l *SortedList) Find(name string) (Record, error) {
	node := l.findNode(name)
	if node == nil {
		return Record{}, errors.Wrapf(ErrNotFound, "%q not in list", name)
	}
	return node.record, nil
}

// All yields records head to tail, i.e. descending by name.
func (l *SortedList) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for current := l.head; current != nil; current = current.next {
			if !yield(current.record) {
				return
			}
		}
	}
}

// Backward yields records tail to head through the prev links.
func (l *SortedList) Backward() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for current := l.tail; current != nil; current = current.prev {
			if !yield(current.record) {
				return
			}
		}
	}
}

// Head and Tail report the boundary records.
func (l *SortedList) Head() (Record, bool) {
	if l.head == nil {
		return Record{}, false
	}
	return l.head.record, true
}

func (l *SortedList) Tail() (Record, bool) {
	if l.tail == nil {
		return Record{}, false
	}
	return l.tail.record, true
}

// UpdateField overwrites one field of the named record in place. The list is
// not re-sorted when the name changes.
func (l *SortedList) UpdateField(name string, field Field, value string) error {
	h, err := l.locate(name)
	if err != nil {
		return err
	}
	return h.Apply(field, value)
}

func (l *SortedList) locate(name string) (*Handle, error) {
	node := l.findNode(name)
	if node == nil {
		return nil, errors.Wrapf(ErrNotFound, "%q not in list", name)
	}
	return &Handle{
		placement: PlacementList,
		record:    &node.record,
		cats:      l.cats,
		version:   &l.version,
		issuedAt:  l.version,
	}, nil
}
