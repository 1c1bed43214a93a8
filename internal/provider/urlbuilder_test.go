package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinPath_SplitsBackIntoSegments(t *testing.T) {
	cases := [][]string{
		{"users", "alice", "repos"},
		{"repos", "alice", "a", "stats", "participation"},
		{"single"},
		{"", "leading-empty"},
		{"orgs", "42", "teams", "7", "members"},
	}

	for _, segments := range cases {
		t.Run(strings.Join(segments, "_"), func(t *testing.T) {
			joined := JoinPath(segments...)
			assert.Equal(t, segments, strings.Split(joined, "/"))
		})
	}
}

func TestBuildURL_DropsTrailingSlash(t *testing.T) {
	assert.Equal(t, "https://api.github.com/users/alice", BuildURL("https://api.github.com/", "users", "alice"))
	assert.Equal(t, "https://api.github.com/users/alice", BuildURL("https://api.github.com", "users", "alice"))
}

func TestSegment_NormalizesIdentifiers(t *testing.T) {
	assert.Equal(t, "42", Segment(42))
	assert.Equal(t, "9000000000", Segment(int64(9000000000)))
	assert.Equal(t, "octo-org", Segment("octo-org"))
	assert.Equal(t, ID("17"), IDOf(17))
}
