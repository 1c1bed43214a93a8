// Package model defines the data structures shared by every layer.
package model

import "time"

// User is a person who logged in with GitHub.
//
// The internal ID is an xid rather than the GitHub id, so primary keys are
// not tied to a third party's numbering. GitHubID is UNIQUE in the store:
// one GitHub account maps to exactly one User.
//
// AccessToken is the GitHub OAuth token, sealed (see auth.Sealer). It is
// never serialized to JSON.
//
// Stats is the cached statistics snapshot, or nil when the cache is empty or
// incomplete. The store decides which when it loads the row.
type User struct {
	ID          string         `json:"id"`
	GitHubID    int64          `json:"githubId"`
	Login       string         `json:"login"`
	Email       string         `json:"email"`
	AvatarURL   string         `json:"avatarUrl"`
	AccessToken string         `json:"-"`
	Stats       *StatsSnapshot `json:"-"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
