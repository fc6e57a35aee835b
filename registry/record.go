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
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Record is a single patient entry. Dates are kept as the dd/mm/yyyy text
// they were read with.
type Record struct {
	Name      string
	Category  byte
	BirthDate string
	LastVisit string
}

// Placement says which container holds (or would hold) a record.
type Placement int

const (
	PlacementNone Placement = iota
	PlacementList
	PlacementTree
)

func (p Placement) String() string {
	switch p {
	case PlacementList:
		return "list"
	case PlacementTree:
		return "tree"
	default:
		return "none"
	}
}

// Categories holds the two recognised category letters: records of the List
// category go to the SortedList, records of the Tree category to the
// BalancedTree.
type Categories struct {
	List byte
	Tree byte
}

// DefaultCategories matches the clinic files this tool was written for.
var DefaultCategories = Categories{List: 'M', Tree: 'F'}

// Placement routes a category letter to its container.
func (c Categories) Placement(category byte) Placement {
	switch category {
	case c.List:
		return PlacementList
	case c.Tree:
		return PlacementTree
	default:
		return PlacementNone
	}
}

func (c Categories) valid(category byte) bool {
	return c.Placement(category) != PlacementNone
}

// Field names an editable attribute of a Record.
type Field int

const (
	FieldName Field = iota + 1
	FieldCategory
	FieldBirthDate
	FieldLastVisit
)

var fieldNames = map[Field]string{
	FieldName:      "name",
	FieldCategory:  "category",
	FieldBirthDate: "birth",
	FieldLastVisit: "visit",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// ParseField accepts a field name ("name", "category", "birth", "visit"), a
// few common aliases, or the 1-4 menu number of the field.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "name":
		return FieldName, nil
	case "2", "category", "sex":
		return FieldCategory, nil
	case "3", "birth", "birthdate", "birth_date":
		return FieldBirthDate, nil
	case "4", "visit", "lastvisit", "last_visit":
		return FieldLastVisit, nil
	}
	return 0, errors.Wrapf(ErrInvalidField, "unknown field %q", s)
}

// set applies a validated single-field change. Changing the name does not
// move the record inside its container.
func (r *Record) set(field Field, value string, cats Categories) error {
	switch field {
	case FieldName:
		if value == "" {
			return errors.Wrap(ErrInvalidField, "name must not be empty")
		}
		r.Name = value
	case FieldCategory:
		if len(value) != 1 || !cats.valid(value[0]) {
			return errors.Wrapf(ErrInvalidCategory, "category %q", value)
		}
		r.Category = value[0]
	case FieldBirthDate:
		r.BirthDate = value
	case FieldLastVisit:
		r.LastVisit = value
	default:
		return errors.Wrapf(ErrInvalidField, "unknown field %v", field)
	}
	return nil
}
