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
	"sort"

	"github.com/pkg/errors"
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrDuplicateKey    = errors.New("duplicate patient name")
	ErrNotFound        = errors.New("patient not found")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidField    = errors.New("invalid field")
	ErrStaleHandle     = errors.New("stale record handle")
	ErrIO              = errors.New("i/o failure")
)

// ioFailure marks err as an ErrIO while keeping the original cause
// reachable through errors.Is / errors.As.
type ioFailure struct {
	path string
	err  error
}

func (e *ioFailure) Error() string {
	return e.path + ": " + e.err.Error()
}

func (e *ioFailure) Is(target error) bool { return target == ErrIO }

func (e *ioFailure) Unwrap() error { return e.err }

func wrapIO(err error, path, msg string) error {
	return errors.Wrap(&ioFailure{path: path, err: err}, msg)
}

// SaveError reports every output path that could not be written.
type SaveError struct {
	Failures map[string]error
}

func (e *SaveError) Error() string {
	paths := make([]string, 0, len(e.Failures))
	for path := range e.Failures {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	msg := "save failed for"
	for _, path := range paths {
		msg += " " + path + " (" + e.Failures[path].Error() + ")"
	}
	return msg
}

func (e *SaveError) Is(target error) bool { return target == ErrIO }
