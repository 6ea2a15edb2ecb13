package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesIgnorePatternAnchoredAnywhere(t *testing.T) {
	assert.True(t, MatchesIgnorePattern("**/*.log", "foo/bar/baz.log"))
	assert.True(t, MatchesIgnorePattern("**/*.log", "baz.log"))
	assert.False(t, MatchesIgnorePattern("**/*.log", "foo/bar/baz.logfile"))
}

func TestMatchesIgnorePatternSuffixWildcard(t *testing.T) {
	assert.True(t, MatchesIgnorePattern("**/Cache/**", "app/Cache/entry"))
	assert.True(t, MatchesIgnorePattern("**/Cache/**", "a/b/Cache/c/d/e"))
	assert.False(t, MatchesIgnorePattern("**/Cache/**", "app/NotCache/entry"))
}

func TestMatchesIgnorePatternExactSuffix(t *testing.T) {
	assert.True(t, MatchesIgnorePattern("**/Cookies", "app/profile/Cookies"))
	assert.True(t, MatchesIgnorePattern("**/Cookies", "Cookies"))
	assert.False(t, MatchesIgnorePattern("**/Cookies", "app/profile/CookiesExtra"))
}

func TestFilterIgnored(t *testing.T) {
	in := []string{
		"app/config.json",
		"app/debug.log",
		"app/Cache/x",
		"app/state.sqlite",
	}
	out := FilterIgnored(in)
	assert.Equal(t, []string{"app/config.json"}, out)
}
