package state

import (
	"os"
	"path/filepath"
	"strings"
)

// IgnorePatterns is the fixed set of gitignore-style patterns covering
// caches, logs, lockfiles, browser/electron scratch data, and other
// volatile files the state engine never tracks.
var IgnorePatterns = []string{
	"**/*.log",
	"**/*.tmp",
	"**/*.lock",
	"**/.lock",
	"**/Cache/**",
	"**/cache/**",
	"**/CachedData/**",
	"**/GPUCache/**",
	"**/Code Cache/**",
	"**/blob_storage/**",
	"**/Service Worker/**",
	"**/Session Storage/**",
	"**/Local Storage/**",
	"**/IndexedDB/**",
	"**/Cookies",
	"**/Cookies-journal",
	"**/*.sqlite",
	"**/*.sqlite-journal",
	"**/*.sqlite-wal",
	"**/*.sqlite-shm",
	"**/*.db",
	"**/*.db-journal",
	"**/*.pid",
	"**/*.sock",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
	"**/Thumbs.db",
	"**/*.backup",
	"**/*.bak",
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/*.pyc",
}

// WriteExcludeFile materializes IgnorePatterns into the repo's local
// exclude file (info/exclude), overwritten each start so pattern updates
// propagate to existing repositories.
func (r *Repo) WriteExcludeFile() error {
	excludePath := filepath.Join(r.GitDir, "info", "exclude")
	if err := os.MkdirAll(filepath.Dir(excludePath), 0o755); err != nil {
		return err
	}
	content := strings.Join(IgnorePatterns, "\n") + "\n"
	return os.WriteFile(excludePath, []byte(content), 0o644)
}

// MatchesIgnorePattern reports whether path matches a gitignore-style
// "**" pattern: "**/X/**" or "**/X" matches any path where a component
// equals X anywhere in the path, and any suffix starting at that
// component — not a naive single-level glob.
func MatchesIgnorePattern(pattern, path string) bool {
	path = filepath.ToSlash(path)
	segs := strings.Split(pattern, "/")

	// Strip a leading "**/" — "anchored anywhere" is the default we implement.
	anchoredAnywhere := len(segs) > 0 && segs[0] == "**"
	if anchoredAnywhere {
		segs = segs[1:]
	}

	// Trailing "/**" means "this component and everything under it".
	suffixWildcard := len(segs) > 0 && segs[len(segs)-1] == "**"
	if suffixWildcard {
		segs = segs[:len(segs)-1]
	}

	pathSegs := strings.Split(path, "/")

	if anchoredAnywhere {
		for start := 0; start <= len(pathSegs)-len(segs); start++ {
			if matchSegs(segs, pathSegs[start:start+len(segs)]) {
				return true
			}
		}
		return false
	}

	if len(pathSegs) < len(segs) {
		return false
	}
	if !matchSegs(segs, pathSegs[:len(segs)]) {
		return false
	}
	return suffixWildcard || len(pathSegs) == len(segs)
}

func matchSegs(pattern, candidate []string) bool {
	if len(pattern) != len(candidate) {
		return false
	}
	for i, p := range pattern {
		ok, err := filepath.Match(p, candidate[i])
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// FilterIgnored removes paths matching any IgnorePatterns entry.
func FilterIgnored(paths []string) []string {
	var out []string
	for _, p := range paths {
		ignored := false
		for _, pattern := range IgnorePatterns {
			if MatchesIgnorePattern(pattern, p) {
				ignored = true
				break
			}
		}
		if !ignored {
			out = append(out, p)
		}
	}
	return out
}
