// avl_tree.go

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
	"strings"

	"github.com/pkg/errors"
)

// BalancedTree is an AVL tree of records ordered by name (A to Z).
type BalancedTree struct {
	Root *AVLNode
	len  int

	cats    Categories
	version uint64
}

func NewBalancedTree(cats Categories) *BalancedTree {
	return &BalancedTree{Root: nil, cats: cats}
}

func (tree *BalancedTree) Len() int {
	return tree.len
}

// Height is the height of the root, 0 for an empty tree.
func (tree *BalancedTree) Height() int {
	return height(tree.Root)
}

func (tree *BalancedTree) rotateLeft(node *AVLNode) *AVLNode {
	// Check if input node is valid
	if node == nil || node.Right == nil {
		return node
	}

	pivot := node.Right

	node.Right = pivot.Left
	pivot.Left = node

	updateHeight(node)
	updateHeight(pivot)

	return pivot
}

func (tree *BalancedTree) rotateRight(node *AVLNode) *AVLNode {
	if node == nil || node.Left == nil {
		return node
	}

	pivot := node.Left

	node.Left = pivot.Right
	pivot.Right = node

	updateHeight(node)
	updateHeight(pivot)

	return pivot
}

// Insert adds r, rebalancing on the way back up. A name that is already in
// the tree is rejected with ErrDuplicateKey and the tree is left untouched.
func (tree *BalancedTree) Insert(r Record) error {
	root, err := tree.insertRecursive(tree.Root, r)
	if err != nil {
		return err
	}
	tree.Root = root
	tree.len++
	tree.version++
	return nil
}

func (tree *BalancedTree) insertRecursive(node *AVLNode, r Record) (*AVLNode, error) {
	if node == nil {
		return &AVLNode{Record: r, Height: 1}, nil
	}

	key := r.Name
	var err error
	if key < node.Record.Name {
		if node.Left, err = tree.insertRecursive(node.Left, r); err != nil {
			return node, err
		}
	} else if key > node.Record.Name {
		if node.Right, err = tree.insertRecursive(node.Right, r); err != nil {
			return node, err
		}
	} else {
		return node, errors.Wrapf(ErrDuplicateKey, "%q already in tree", key)
	}

	updateHeight(node)

	balance := balanceFactor(node)
	if balance > 1 {
		if key < node.Left.Record.Name {
			return tree.rotateRight(node), nil
		}
		// Left-Right case
		node.Left = tree.rotateLeft(node.Left)
		return tree.rotateRight(node), nil
	} else if balance < -1 {
		if key > node.Right.Record.Name {
			return tree.rotateLeft(node), nil
		}
		// Right-Left case
		node.Right = tree.rotateRight(node.Right)
		return tree.rotateLeft(node), nil
	}

	return node, nil
}

func (tree *BalancedTree) findNode(name string) *AVLNode {
	node := tree.Root
	for node != nil {
		if name < node.Record.Name {
			node = node.Left
		} else if name > node.Record.Name {
			node = node.Right
		} else {
			return node
		}
	}
	return nil
}

// Find looks for the node with the given name and returns a copy of its record.
func (tree *BalancedTree) Find(name string) (Record, error) {
	node := tree.findNode(name)
	if node == nil {
		return Record{}, errors.Wrapf(ErrNotFound, "%q not in tree", name)
	}
	return node.Record, nil
}

// All yields records in order (left, node, right), ascending by name.
func (tree *BalancedTree) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		inOrder(tree.Root, yield)
	}
}

func inOrder(node *AVLNode, yield func(Record) bool) bool {
	if node == nil {
		return true
	}
	return inOrder(node.Left, yield) && yield(node.Record) && inOrder(node.Right, yield)
}

// prefixSearch visits every node in the subtree whose name starts with
// prefix, in ascending order. Names sharing a prefix are contiguous in byte
// order and none of them sorts below the prefix itself.
func prefixSearch(node *AVLNode, prefix string, yield func(Record) bool) bool {
	if node == nil {
		return true
	}

	name := node.Record.Name
	matches := strings.HasPrefix(name, prefix)

	if name >= prefix {
		if !prefixSearch(node.Left, prefix, yield) {
			return false
		}
	}

	if matches {
		if !yield(node.Record) {
			return false
		}
	}

	// A name past the prefix range has nothing left to offer on its right.
	if name < prefix || matches {
		return prefixSearch(node.Right, prefix, yield)
	}
	return true
}

// WithPrefix yields records whose name starts with prefix, ascending.
func (tree *BalancedTree) WithPrefix(prefix string) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		prefixSearch(tree.Root, prefix, yield)
	}
}

// UpdateField overwrites one field of the named record in place. Renaming
// does not move the node, so a new name can break the search order.
func (tree *BalancedTree) UpdateField(name string, field Field, value string) error {
	h, err := tree.locate(name)
	if err != nil {
		return err
	}
	return h.Apply(field, value)
}

func (tree *BalancedTree) locate(name string) (*Handle, error) {
	node := tree.findNode(name)
	if node == nil {
		return nil, errors.Wrapf(ErrNotFound, "%q not in tree", name)
	}
	return &Handle{
		placement: PlacementTree,
		record:    &node.Record,
		cats:      tree.cats,
		version:   &tree.version,
		issuedAt:  tree.version,
	}, nil
}
