// Package etag derives HTTP entity tags for service records.
//
// A tag is a pure function of (id, revision): it never depends on wall-clock
// time or on the serialized body, so an unchanged record always yields the
// same tag and every mutation (which bumps the revision) yields a new one.
package etag

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Compute returns the strong entity tag, quotes included, for a record
// revision.
func Compute(id string, revision uint64) string {
	h := xxhash.Sum64String(id)

	var b strings.Builder
	b.Grow(40)
	b.WriteByte('"')
	b.WriteString(strconv.FormatUint(h, 16))
	b.WriteByte('-')
	b.WriteString(strconv.FormatUint(revision, 10))
	b.WriteByte('"')
	return b.String()
}

// Match reports whether an If-None-Match header value matches current.
// The header may hold a comma-separated list of tags or "*". Comparison is
// weak, as RFC 9110 requires for If-None-Match: a W/ prefix is ignored.
func Match(ifNoneMatch, current string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)
	if ifNoneMatch == "" || current == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}

	want := opaque(current)
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		if opaque(candidate) == want {
			return true
		}
	}
	return false
}

// opaque strips whitespace, the weak prefix and the surrounding quotes.
func opaque(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "W/")
	return strings.Trim(tag, `"`)
}
