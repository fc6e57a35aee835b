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

// Package registry holds patient records in two indexes chosen by category:
// a SortedList kept in descending name order and an AVL BalancedTree kept in
// ascending name order.
//
// Names are unique within each container. The same name may exist once in
// each container; Register only logs that case.
package registry

import (
	"bufio"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/willf/bloom"
)

// Registry owns one SortedList and one BalancedTree.
type Registry struct {
	list  *SortedList
	tree  *BalancedTree
	codec Codec

	// names has seen every name ever stored, including renames.
	names *bloom.BloomFilter

	fs       FileSystem
	logger   *slog.Logger
	progress io.Writer
}

// LoadStats summarises a Load.
type LoadStats struct {
	Lines      int
	InList     int
	InTree     int
	Blank      int
	Malformed  int
	Duplicates int
}

// Loaded is the number of records that made it into a container.
func (s LoadStats) Loaded() int {
	return s.InList + s.InTree
}

func New(opts ...Option) *Registry {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(o)
	}

	return &Registry{
		list:     NewSortedList(o.categories),
		tree:     NewBalancedTree(o.categories),
		codec:    NewCodec(o.categories),
		names:    bloom.New(o.bloomBits, o.bloomHashes),
		fs:       o.fs,
		logger:   o.logger,
		progress: o.progress,
	}
}

func (r *Registry) Codec() Codec {
	return r.codec
}

// SetLogger replaces the diagnostics logger, e.g. once a full-screen UI owns
// the terminal.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// Load reads patients from path and routes each line to its container.
// Bad lines and duplicates are logged and counted. If path cannot be opened
// or read the error wraps ErrIO and the records read so far stay loaded.
func (r *Registry) Load(path string) (LoadStats, error) {
	var stats LoadStats

	file, err := r.fs.Open(path)
	if err != nil {
		return stats, wrapIO(err, path, "open patients file")
	}
	defer file.Close()

	var reader io.Reader = file
	if r.progress != nil {
		size := int64(-1)
		if info, err := file.Stat(); err == nil {
			size = info.Size()
		}
		bar := progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(r.progress),
			progressbar.OptionSetDescription("Loading patients"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		defer bar.Finish()
		reader = io.TeeReader(file, bar)
	}

	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	for scanner.Scan() {
		stats.Lines++
		line := scanner.Text()

		if strings.TrimSpace(strings.TrimPrefix(line, byteOrderMark)) == "" {
			stats.Blank++
			continue
		}

		rec, err := r.codec.Parse(line)
		if err != nil {
			stats.Malformed++
			r.logger.Warn("skipping line", "path", path, "line", stats.Lines, "err", err)
			continue
		}

		placement, err := r.Register(rec)
		switch {
		case errors.Is(err, ErrDuplicateKey):
			stats.Duplicates++
			r.logger.Warn("skipping duplicate patient", "path", path, "line", stats.Lines, "name", rec.Name)
		case err != nil:
			stats.Malformed++
			r.logger.Warn("skipping line", "path", path, "line", stats.Lines, "err", err)
		case placement == PlacementList:
			stats.InList++
		default:
			stats.InTree++
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, wrapIO(err, path, "read patients file")
	}

	r.logger.Debug("patients loaded", "path", path, "list", stats.InList, "tree", stats.InTree,
		"malformed", stats.Malformed, "duplicates", stats.Duplicates)
	return stats, nil
}

// Register stores rec in the container its category selects.
func (r *Registry) Register(rec Record) (Placement, error) {
	if rec.Name == "" {
		return PlacementNone, errors.Wrap(ErrMalformedRecord, "empty name")
	}

	placement := r.codec.Categories.Placement(rec.Category)
	var insert func(Record) error
	var other interface {
		Find(string) (Record, error)
	}
	switch placement {
	case PlacementList:
		insert, other = r.list.Insert, r.tree
	case PlacementTree:
		insert, other = r.tree.Insert, r.list
	default:
		return PlacementNone, errors.Wrapf(ErrInvalidCategory, "category %q for %q", string(rec.Category), rec.Name)
	}

	if err := insert(rec); err != nil {
		return placement, err
	}

	if r.names.TestString(rec.Name) {
		if _, err := other.Find(rec.Name); err == nil {
			r.logger.Warn("patient name exists in both containers", "name", rec.Name)
		}
	}
	r.names.AddString(rec.Name)
	return placement, nil
}

// Search looks in the list first and then in the tree.
func (r *Registry) Search(name string) (Record, Placement, error) {
	if !r.names.TestString(name) {
		return Record{}, PlacementNone, errors.Wrapf(ErrNotFound, "%q", name)
	}
	if rec, err := r.list.Find(name); err == nil {
		return rec, PlacementList, nil
	}
	if rec, err := r.tree.Find(name); err == nil {
		return rec, PlacementTree, nil
	}
	return Record{}, PlacementNone, errors.Wrapf(ErrNotFound, "%q", name)
}

// Locate finds name (list first, then tree) and returns a handle for editing
// it in place.
func (r *Registry) Locate(name string) (*Handle, error) {
	h, err := r.list.locate(name)
	if err != nil {
		if h, err = r.tree.locate(name); err != nil {
			return nil, errors.Wrapf(ErrNotFound, "%q", name)
		}
	}
	h.onRename = func(newName string) {
		r.names.AddString(newName)
	}
	return h, nil
}

// UpdateField changes one field of the named record. Renames do not re-sort
// the owning container and category changes do not move the record.
func (r *Registry) UpdateField(name string, field Field, value string) error {
	h, err := r.Locate(name)
	if err != nil {
		return err
	}
	return h.Apply(field, value)
}

// Ascending yields the tree's records, A to Z.
func (r *Registry) Ascending() iter.Seq[Record] {
	return r.tree.All()
}

// Descending yields the list's records, Z to A.
func (r *Registry) Descending() iter.Seq[Record] {
	return r.list.All()
}

// Match is one result of Matching, tagged with the container holding it.
type Match struct {
	Record    Record
	Placement Placement
}

// Matching returns list records then tree records whose name starts with
// prefix, each part in its container's order. The placement reflects where
// the record lives, which can disagree with its category after an edit.
func (r *Registry) Matching(prefix string) []Match {
	var out []Match
	for rec := range r.list.All() {
		if strings.HasPrefix(rec.Name, prefix) {
			out = append(out, Match{Record: rec, Placement: PlacementList})
		}
	}
	for rec := range r.tree.WithPrefix(prefix) {
		out = append(out, Match{Record: rec, Placement: PlacementTree})
	}
	return out
}

// Len is the number of records across both containers.
func (r *Registry) Len() int {
	return r.list.Len() + r.tree.Len()
}
