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

package main

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/cybrota/clinic/registry"
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

const sessionPrompt = "clinic> "

var errQuit = errors.New("quit")

// Session is the line-oriented front end over a Registry. Names with spaces
// are quoted the way a shell would: find "Ann Lee".
type Session struct {
	reg     *registry.Registry
	targets registry.Targets
	in      io.Reader
	out     io.Writer
	prompt  bool
}

func NewSession(reg *registry.Registry, targets registry.Targets, in io.Reader, out io.Writer) *Session {
	return &Session{
		reg:     reg,
		targets: targets,
		in:      in,
		out:     out,
		prompt:  true,
	}
}

// Run reads commands until quit or end of input.
func (s *Session) Run() error {
	scanner := bufio.NewScanner(s.in)
	for {
		if s.prompt {
			fmt.Fprint(s.out, sessionPrompt)
		}
		if !scanner.Scan() {
			break
		}
		if err := s.Exec(scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(s.out, "%s%v%s\n", Error, err, Reset)
		}
	}
	if s.prompt {
		fmt.Fprintln(s.out)
	}
	return scanner.Err()
}

// Exec runs a single command line.
func (s *Session) Exec(line string) error {
	args, err := shellwords.Parse(line)
	if err != nil {
		return errors.Wrap(err, "cannot parse command")
	}
	if len(args) == 0 {
		return nil
	}

	switch cmd, rest := strings.ToLower(args[0]), args[1:]; cmd {
	case "find", "f":
		return s.find(rest)
	case "list", "ls", "l":
		return s.list(rest)
	case "add", "a":
		return s.add(rest)
	case "set", "s":
		return s.set(rest)
	case "save":
		return s.save()
	case "help", "h", "?":
		s.help()
		return nil
	case "quit", "q", "exit":
		return errQuit
	default:
		return errors.Errorf("unknown command %q, type help for a list", cmd)
	}
}

func (s *Session) find(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: find <name>")
	}
	rec, placement, err := s.reg.Search(args[0])
	if errors.Is(err, registry.ErrNotFound) {
		fmt.Fprintf(s.out, "Patient %q is not registered.\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%sFound in %s%s\n", Info, placement, Reset)
	writeRecord(s.out, rec)
	return nil
}

func (s *Session) list(args []string) error {
	which := "all"
	if len(args) > 0 {
		which = strings.ToLower(args[0])
	}

	switch which {
	case "list", "desc":
		s.listing(s.reg.Descending())
	case "tree", "asc":
		s.listing(s.reg.Ascending())
	case "all":
		fmt.Fprintf(s.out, "%s== %s ==%s\n", Info, registry.PlacementList, Reset)
		s.listing(s.reg.Descending())
		fmt.Fprintf(s.out, "%s== %s ==%s\n", Info, registry.PlacementTree, Reset)
		s.listing(s.reg.Ascending())
	default:
		return errors.New("usage: list [list|tree|all]")
	}
	return nil
}

func (s *Session) listing(records iter.Seq[registry.Record]) {
	count := 0
	for rec := range records {
		if count > 0 {
			fmt.Fprintln(s.out)
		}
		writeRecord(s.out, rec)
		count++
	}
	if count == 0 {
		fmt.Fprintln(s.out, "No patients registered.")
	}
}

func (s *Session) add(args []string) error {
	if len(args) != 4 {
		return errors.New("usage: add <name> <category> <birth date> <last visit>")
	}
	if err := checkStorable(args...); err != nil {
		return err
	}
	if len(args[1]) != 1 {
		return errors.Wrapf(registry.ErrInvalidCategory, "category %q", args[1])
	}

	rec := registry.Record{
		Name:      strings.TrimSpace(args[0]),
		Category:  args[1][0],
		BirthDate: args[2],
		LastVisit: args[3],
	}
	placement, err := s.reg.Register(rec)
	if errors.Is(err, registry.ErrDuplicateKey) {
		return errors.Errorf("patient %q is already registered in the %s", rec.Name, placement)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%sRegistered %s in the %s%s\n", Green, rec.Name, placement, Reset)
	return nil
}

func (s *Session) set(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: set <name> <field> <value>")
	}
	field, err := registry.ParseField(args[1])
	if err != nil {
		return err
	}
	if err := checkStorable(args[2]); err != nil {
		return err
	}
	if err := s.reg.UpdateField(args[0], field, args[2]); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%sUpdated %s of %s%s\n", Green, field, args[0], Reset)
	return nil
}

func (s *Session) save() error {
	if err := s.reg.Persist(s.targets); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%sSaved %d patients%s\n", Green, s.reg.Len(), Reset)
	return nil
}

func (s *Session) help() {
	fmt.Fprint(s.out, `Commands:
  find <name>                                  show one patient
  list [list|tree|all]                         show patients, default all
  add <name> <category> <birth> <last visit>   register a patient
  set <name> <field> <value>                   change name, category, birth or visit
  save                                         write the output files now
  quit                                         leave the session
Quote names that contain spaces: find "Ann Lee"
`)
}

// checkStorable rejects values the patients file format cannot carry.
func checkStorable(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, `,<>"`) {
			return errors.Wrapf(registry.ErrInvalidField, "%q must not contain , < > or \"", v)
		}
	}
	return nil
}

// writeRecord prints the display block of one patient.
func writeRecord(w io.Writer, rec registry.Record) {
	fmt.Fprintf(w, "Name:       %s\n", rec.Name)
	fmt.Fprintf(w, "Category:   %c\n", rec.Category)
	fmt.Fprintf(w, "Birth date: %s\n", rec.BirthDate)
	fmt.Fprintf(w, "Last visit: %s\n", rec.LastVisit)
}
