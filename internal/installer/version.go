package installer

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	versionedNameRe   = regexp.MustCompile(`^(.+)-v(\d+(?:\.\d+)*)$`)
	plainVersionedRe  = regexp.MustCompile(`^(.+)-(\d+(?:\.\d+)*)$`)
	githubArchiveRe   = regexp.MustCompile(`github\.com/[^/]+/([^/]+)/archive/`)
)

// ParseNameVersion extracts {name, version} from an archive filename (with
// any .tar.gz/.tgz/.zip suffix already stripped by the caller), trying the
// two documented patterns in order, and falls back to the GitHub archive
// URL's repo name when sourceURL is a GitHub /archive/... link.
func ParseNameVersion(stem, sourceURL string) (name, version string) {
	if m := versionedNameRe.FindStringSubmatch(stem); m != nil {
		return m[1], m[2]
	}
	if m := plainVersionedRe.FindStringSubmatch(stem); m != nil {
		return m[1], m[2]
	}
	if sourceURL != "" {
		if m := githubArchiveRe.FindStringSubmatch(sourceURL); m != nil {
			return m[1], "0.0.0"
		}
	}
	return stem, "0.0.0"
}

// StripArchiveExt removes a trailing archive extension from filename.
func StripArchiveExt(filename string) string {
	for _, ext := range []string{".tar.gz", ".tgz", ".zip"} {
		if strings.HasSuffix(filename, ext) {
			return strings.TrimSuffix(filename, ext)
		}
	}
	return filename
}

// CompareVersions implements the lexicographic-by-segment semver-like
// comparison the update flow uses: split on '.', compare each numeric
// segment in order, a missing segment counting as 0 (so "1.2" equals
// "1.2.0"). Returns -1, 0, or 1.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
