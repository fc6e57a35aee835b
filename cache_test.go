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
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
)

func TestCacheDetailPageAndGetDetailPage(t *testing.T) {
	c := NewDetailCache(0)
	name := "Ann Lee"
	page := "# Ann Lee\n\nCategory: F"

	// Initially, GetDetailPage should return an empty string for a missing patient.
	if got := GetDetailPage(c, name); got != "" {
		t.Errorf("GetDetailPage(%q) = %q; want empty string", name, got)
	}

	CacheDetailPage(c, name, page)

	if got := GetDetailPage(c, name); got != page {
		t.Errorf("GetDetailPage(%q) = %q; want %q", name, got, page)
	}

	InvalidateDetailPage(c, name)
	if got := GetDetailPage(c, name); got != "" {
		t.Errorf("After invalidation, GetDetailPage(%q) = %q; want empty string", name, got)
	}
}

func TestCacheExpiration(t *testing.T) {
	// Create a cache with a very short expiration time to test expiry behavior.
	c := cache.New(100*time.Millisecond, 50*time.Millisecond)
	name := "Bob Stone"
	page := "This page should expire soon."

	CacheDetailPage(c, name, page)

	if got := GetDetailPage(c, name); got != page {
		t.Errorf("GetDetailPage(%q) = %q; want %q", name, got, page)
	}

	time.Sleep(150 * time.Millisecond)

	if got := GetDetailPage(c, name); got != "" {
		t.Errorf("After expiration, GetDetailPage(%q) = %q; want empty string", name, got)
	}
}
