// cache.go

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
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	// Rendered detail pages are cheap to rebuild, keep them for 30 minutes
	detailCacheExpiration = 30 * time.Minute
	// Clean up expired entries every 5 minutes
	detailCacheCleanup = 5 * time.Minute
)

// NewDetailCache creates a cache for rendered patient detail pages
func NewDetailCache(expiration time.Duration) *cache.Cache {
	if expiration <= 0 {
		expiration = detailCacheExpiration
	}
	return cache.New(expiration, detailCacheCleanup)
}

func CacheDetailPage(c *cache.Cache, name string, page string) {
	// Set instead of Add, a re-render after an edit overwrites
	c.SetDefault(name, page)
}

func GetDetailPage(c *cache.Cache, name string) string {
	val, ok := c.Get(name)
	if !ok {
		return ""
	}
	return val.(string)
}

// InvalidateDetailPage drops name so the next view re-renders it.
func InvalidateDetailPage(c *cache.Cache, name string) {
	c.Delete(name)
}
