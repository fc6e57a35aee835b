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
	"fmt"
	"runtime"

	markdown "github.com/MichaelMure/go-term-markdown"
)

func getHelpMessage() string {
	message := fmt.Sprintf(`

 **Clinic %s**

Keep a practice's patients in two indexes and find anyone by name in a keystroke.
Patients of the list category are kept newest-name-first in a sorted list, the
other category in a balanced tree.

Built with Go %s

# 1. Usage
* clinic <patients-file> loads the file and opens an interactive session
* clinic check <patients-file> loads the file and prints what was accepted
* clinic config shows (and creates) ~/.clinic.yaml

# 2. Patients file
One patient per line: name, category, birth date, last visit.
Lines may be wrapped in < > and fields may be quoted. Lines that do not parse are skipped.

# 3. Session commands
* find <name>
* list [list|tree|all]
* add <name> <category> <birth date> <last visit>
* set <name> <field> <value>
* save
* quit

Both output files are written when the session ends, unless --no-save is given.

# Please be aware
* Copy to clipboard feature on Linux or Unix requires 'xclip' or 'xsel' command to be installed

# License
Licensed under the Apache License, Version 2.0
Copyright © 2025 Naren Yellavula

`, version, runtime.Version())
	result := markdown.Render(string(message), 80, 3)
	return string(result)
}
