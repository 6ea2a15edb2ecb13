// Package patch inserts and cleans marker-delimited pre/post text blocks
// in theme-adjacent config files, and applies JSON deep-merge overlays.
package patch

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pawlette/pawlette/internal/paths"
	"github.com/pawlette/pawlette/internal/perrors"
)

// Kind distinguishes a pre-insert region from a post-append region.
type Kind string

const (
	Pre  Kind = "PRE"
	Post Kind = "POST"
)

// regionPattern builds a regex matching one marker kind's region for a
// specific theme name. Go's RE2 engine has no backreferences, so unlike
// the single combined pattern the marker grammar's invariant is usually
// expressed with (capturing PRE|POST and requiring \1 on the close), this
// is achieved by building two separate patterns — one per kind — so a
// PRE-START can only ever be closed by this same call's PRE-END and a
// POST-START only by POST-END; the two regexes never share a match.
func regionPattern(token, themeName string, kind Kind) *regexp.Regexp {
	k := regexp.QuoteMeta(string(kind))
	c := regexp.QuoteMeta(token)
	t := themeName
	if t == "" {
		t = `.*?`
	} else {
		t = regexp.QuoteMeta(t)
	}
	pattern := fmt.Sprintf(`(?ims)^[ \t]*%s[ \t]+PAW-THEME-%s-START:[ \t]*%s.*?^[ \t]*%s[ \t]+PAW-THEME-%s-END:[ \t]*%s[ \t]*$\n?`,
		c, k, t, c, k, t)
	return regexp.MustCompile(pattern)
}

// stripMarkers removes both PRE and POST regions of the given theme name
// (or any theme, if themeName is "") from content.
func stripMarkers(content, token, themeName string) string {
	content = regionPattern(token, themeName, Pre).ReplaceAllString(content, "")
	content = regionPattern(token, themeName, Post).ReplaceAllString(content, "")
	return content
}

// collapseBlankRuns collapses runs of 2+ blank lines to one and trims
// trailing blank lines, so cleanup doesn't accrete whitespace over time.
func collapseBlankRuns(content string) string {
	blankRun := regexp.MustCompile(`\n{3,}`)
	content = blankRun.ReplaceAllString(content, "\n\n")
	return strings.TrimRight(content, "\n") + "\n"
}

// wrapBlock wraps payload in fresh markers for the given theme and kind.
func wrapBlock(token, themeName string, kind Kind, payload string) string {
	payload = strings.TrimRight(payload, "\n")
	return fmt.Sprintf("%s PAW-THEME-%s-START: %s\n%s\n%s PAW-THEME-%s-END: %s\n",
		token, kind, themeName, payload, token, kind, themeName)
}

// ApplyPair applies a pre/post pair to targetPath for theme themeName:
// strips any existing markers for this theme, then prepends the PRE block
// (if non-empty) and appends the POST block (if non-empty), written
// atomically. Either pre or post may be empty to skip that side.
func ApplyPair(targetPath, token, themeName, pre, post string) error {
	data, err := os.ReadFile(targetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return perrors.New(perrors.PatchTargetMissing, "patch", fmt.Errorf("target %s does not exist", targetPath))
		}
		return err
	}

	content := stripMarkers(string(data), token, themeName)

	var b strings.Builder
	if pre != "" {
		b.WriteString(wrapBlock(token, themeName, Pre, pre))
	}
	b.WriteString(content)
	if post != "" {
		if !strings.HasSuffix(content, "\n") && content != "" {
			b.WriteString("\n")
		}
		b.WriteString(wrapBlock(token, themeName, Post, post))
	}

	return paths.AtomicWrite(targetPath, []byte(b.String()), 0o644)
}

// CleanStaleMarkers removes PAW-THEME regions of any theme name from
// targetPath and collapses resulting whitespace runs.
func CleanStaleMarkers(targetPath, token string) error {
	data, err := os.ReadFile(targetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	cleaned := collapseBlankRuns(stripMarkers(string(data), token, ""))
	return paths.AtomicWrite(targetPath, []byte(cleaned), 0o644)
}

// ApplyJSONMerge deep-merges overlay into the JSON object at targetPath.
// If the target is not a JSON object, the merge is skipped with a warning
// (returned as a non-fatal *perrors.Error so callers can log and continue).
func ApplyJSONMerge(targetPath string, overlay map[string]any) error {
	data, err := os.ReadFile(targetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return perrors.New(perrors.PatchTargetMissing, "json-merge", fmt.Errorf("target %s does not exist", targetPath))
		}
		return err
	}

	var target map[string]any
	if err := json.Unmarshal(data, &target); err != nil {
		return perrors.Recoverable(perrors.PatchTargetMissing, "json-merge", fmt.Errorf("target %s is not a JSON object: %w", targetPath, err))
	}

	merged := deepMerge(target, overlay)

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	return paths.AtomicWrite(targetPath, out, 0o644)
}

// deepMerge recursively merges overlay into base: dict-valued keys merge
// recursively, everything else is overridden by overlay's value.
func deepMerge(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, ov := range overlay {
		if bv, ok := out[k]; ok {
			bMap, bIsMap := bv.(map[string]any)
			oMap, oIsMap := ov.(map[string]any)
			if bIsMap && oIsMap {
				out[k] = deepMerge(bMap, oMap)
				continue
			}
		}
		out[k] = ov
	}
	return out
}
