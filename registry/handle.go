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

import "github.com/pkg/errors"

// Handle is a located record that can be edited without searching again.
// A handle is only valid until its container is structurally changed: any
// insert into the same container makes Apply fail with ErrStaleHandle.
type Handle struct {
	placement Placement
	record    *Record
	cats      Categories

	version  *uint64
	issuedAt uint64

	onRename func(name string)
}

// Placement reports which container holds the record.
func (h *Handle) Placement() Placement {
	return h.placement
}

// Record returns a copy of the current record contents.
func (h *Handle) Record() (Record, error) {
	if err := h.check(); err != nil {
		return Record{}, err
	}
	return *h.record, nil
}

// Apply validates value for field and writes it into the stored record.
func (h *Handle) Apply(field Field, value string) error {
	if err := h.check(); err != nil {
		return err
	}
	if err := h.record.set(field, value, h.cats); err != nil {
		return err
	}
	if field == FieldName && h.onRename != nil {
		h.onRename(value)
	}
	return nil
}

func (h *Handle) check() error {
	if h == nil || h.record == nil {
		return errors.Wrap(ErrStaleHandle, "empty handle")
	}
	if *h.version != h.issuedAt {
		return errors.Wrapf(ErrStaleHandle, "%s changed since %q was located", h.placement, h.record.Name)
	}
	return nil
}
