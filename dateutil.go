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

// dateutil.go
// The placeholder table is reused from: https://github.com/metakeule/fmtdate by Marc René Arns

package main

import (
	"fmt"
	"strings"
	"time"
)

/*
	Formats:

	M    - month (1)
	MM   - month (01)
	MMM  - month (Jan)
	MMMM - month (January)
	D    - day (2)
	DD   - day (02)
	DDD  - day (Mon)
	DDDD - day (Monday)
	YY   - year (06)
	YYYY - year (2006)
*/

type p struct{ find, subst string }

var Placeholder = []p{
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"YYYY", "2006"},
	{"YY", "06"},
	{"DDDD", "Monday"},
	{"DDD", "Mon"},
	{"DD", "02"},
	{"D", "2"},
}

var (
	// Record dates are stored as text and never validated; this is only
	// how the display tries to read them.
	RecordDateFormat  = "DD/MM/YYYY"
	DisplayDateFormat = "DDDD, DD MMM YYYY"
)

func replace(in string) (out string) {
	out = in
	for _, ph := range Placeholder {
		out = strings.Replace(out, ph.find, ph.subst, -1)
	}
	return
}

// Format formats a date based on Microsoft Excel (TM) conventions
func Format(format string, date time.Time) string {
	return date.Format(replace(format))
}

// Parse parses a value to a date based on Microsoft Excel (TM) formats
func Parse(format string, value string) (time.Time, error) {
	return time.Parse(replace(format), value)
}

// describeDate renders a record date in long form, e.g. "Tuesday, 02 Feb 2021".
// Values that do not parse are returned unchanged.
func describeDate(value string) string {
	date, err := Parse(RecordDateFormat, strings.TrimSpace(value))
	if err != nil {
		return value
	}
	return Format(DisplayDateFormat, date)
}

// sinceVisit describes how long ago a visit was, relative to now. It returns
// "" when the date does not parse.
func sinceVisit(value string, now time.Time) string {
	date, err := Parse(RecordDateFormat, strings.TrimSpace(value))
	if err != nil {
		return ""
	}

	days := int(now.Sub(date).Hours() / 24)
	switch {
	case days < 0:
		return "scheduled"
	case days == 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 60:
		return fmt.Sprintf("%d days ago", days)
	case days < 730:
		return fmt.Sprintf("%d months ago", days/30)
	default:
		return fmt.Sprintf("%d years ago", days/365)
	}
}
