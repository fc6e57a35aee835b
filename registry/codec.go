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
	"strings"

	"github.com/pkg/errors"
)

const (
	fieldDelimiter = ", "
	recordFields   = 4
	byteOrderMark  = "\ufeff"
)

// stripper removes wrapping characters anywhere in a line before it is split.
var stripper = strings.NewReplacer("<", "", ">", "", `"`, "")

// Codec converts between text lines and Records.
//
// A line looks like
//
//	<Ann Lee, F, 02/02/1991, 02/02/2021>
//
// where the angle brackets and quotes are optional. Fields are separated by a
// comma; whitespace around each field is ignored, so "a,b" and "a, b" read the
// same. Serialize always writes the comma-space form without brackets.
type Codec struct {
	Categories Categories
}

// NewCodec returns a codec recognising the given category letters.
func NewCodec(cats Categories) Codec {
	return Codec{Categories: cats}
}

// Parse reads one line into a Record.
func (c Codec) Parse(line string) (Record, error) {
	line = strings.TrimPrefix(line, byteOrderMark)
	line = strings.TrimRight(line, "\r\n")
	line = stripper.Replace(line)

	parts := strings.Split(line, ",")
	if len(parts) != recordFields {
		return Record{}, errors.Wrapf(ErrMalformedRecord, "expected %d fields, got %d in %q", recordFields, len(parts), line)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	name, category := parts[0], parts[1]
	if name == "" {
		return Record{}, errors.Wrapf(ErrMalformedRecord, "empty name in %q", line)
	}
	if len(category) != 1 || !c.Categories.valid(category[0]) {
		return Record{}, errors.Wrapf(ErrMalformedRecord, "unrecognised category %q in %q", category, line)
	}

	return Record{
		Name:      name,
		Category:  category[0],
		BirthDate: parts[2],
		LastVisit: parts[3],
	}, nil
}

// Serialize formats r as a single line without a trailing newline.
func (c Codec) Serialize(r Record) string {
	var sb strings.Builder
	sb.Grow(len(r.Name) + len(r.BirthDate) + len(r.LastVisit) + 3*len(fieldDelimiter) + 1)
	sb.WriteString(r.Name)
	sb.WriteString(fieldDelimiter)
	sb.WriteByte(r.Category)
	sb.WriteString(fieldDelimiter)
	sb.WriteString(r.BirthDate)
	sb.WriteString(fieldDelimiter)
	sb.WriteString(r.LastVisit)
	return sb.String()
}
