// Package provider is a small client for the GitHub REST API (v3) and the
// aggregation logic that turns its responses into repository statistics.
//
// LAYERS (leaf first):
//
//	urlbuilder.go → JoinPath / BuildURL / Segment   (path composition)
//	query.go      → Credentials / AddQuery          (auth + query string)
//	fetch.go      → Fetcher / Result                (GET + JSON, never panics or errors)
//	client.go     → Client                          (one method per REST resource)
//	aggregate.go  → UserRepoInfo, CommitsByRepo...  (derived statistics)
//
// Every call is synchronous. Nothing here is safe to share between users:
// a Client is built per request for exactly one authenticated login.
package provider

import (
	"fmt"
	"strings"
)

// pathSeparator is the separator between REST path segments.
const pathSeparator = "/"

// JoinPath joins path segments with "/".
//
// It is purely structural: segments are not validated or escaped, so callers
// pass values that are already URL-safe (logins, repository names, numeric ids).
// For any segments that contain no "/", strings.Split(JoinPath(s...), "/")
// gives back exactly s.
func JoinPath(segments ...string) string {
	return strings.Join(segments, pathSeparator)
}

// BuildURL joins base and segments into an endpoint URL.
// A single trailing "/" on base is dropped so "https://api.github.com/" and
// "https://api.github.com" produce the same result.
func BuildURL(base string, segments ...string) string {
	base = strings.TrimSuffix(base, pathSeparator)
	return JoinPath(append([]string{base}, segments...)...)
}

// Identifier is anything GitHub accepts as a path id: numeric ids for orgs,
// teams and issues, string ids for logins, repository names and commit SHAs.
type Identifier interface {
	~string | ~int | ~int64
}

// Segment normalizes an identifier to a path segment.
func Segment[T Identifier](id T) string {
	return fmt.Sprint(id)
}
