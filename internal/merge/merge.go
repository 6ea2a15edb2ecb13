// Package merge recursively overlays a theme's configs/ tree onto the
// live XDG config tree, dispatching each source file to whole-file copy,
// pre/post marker patch scheduling, or JSON-merge scheduling.
package merge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pawlette/pawlette/internal/logger"
	"github.com/pawlette/pawlette/internal/patch"
	"github.com/pawlette/pawlette/internal/paths"
	"github.com/pawlette/pawlette/internal/perrors"
	"github.com/pawlette/pawlette/internal/reload"
)

// record accumulates the patches scheduled for one target file, keyed by
// (subdirectory, stem) during the traversal.
type record struct {
	dst   string
	pre   string
	post  string
	merge map[string]any
}

// Engine overlays a theme's configs/ tree onto targetRoot (the XDG config
// root), using commentStyles to resolve comment tokens for marker patches.
type Engine struct {
	CommentStyles map[string]string
}

// New builds an Engine using the given extension->comment-token mapping.
func New(commentStyles map[string]string) *Engine {
	return &Engine{CommentStyles: commentStyles}
}

// Apply walks themeConfigsDir, applies smart-copies immediately, schedules
// patch/merge records, then applies all of them (JSON merges first, then
// marker patches), finally running each touched app's reload command.
func (e *Engine) Apply(themeName, themeConfigsDir, targetRoot string) error {
	records := make(map[string]*record)
	touchedApps := make(map[string]bool)

	err := filepath.Walk(themeConfigsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(themeConfigsDir, path)
		if err != nil {
			return err
		}
		app := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
		touchedApps[app] = true

		destDir := filepath.Join(targetRoot, filepath.Dir(rel))
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return err
		}

		switch {
		case strings.HasSuffix(path, ".prepaw"):
			return e.schedule(records, rel, destDir, func(r *record) error {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				r.pre = string(data)
				return nil
			}, ".prepaw")
		case strings.HasSuffix(path, ".postpaw"):
			return e.schedule(records, rel, destDir, func(r *record) error {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				r.post = string(data)
				return nil
			}, ".postpaw")
		case strings.HasSuffix(path, ".jsonpaw"):
			return e.schedule(records, rel, destDir, func(r *record) error {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				var overlay map[string]any
				if err := json.Unmarshal(data, &overlay); err != nil {
					logger.Warn("jsonpaw overlay is not a JSON object, skipping", "path", path, "error", err)
					return nil
				}
				r.merge = overlay
				return nil
			}, ".jsonpaw")
		default:
			destPath := filepath.Join(targetRoot, rel)
			return smartCopy(path, destPath)
		}
	})
	if err != nil {
		return err
	}

	for _, r := range records {
		if r.merge != nil {
			if err := patch.ApplyJSONMerge(r.dst, r.merge); err != nil {
				logJoinErr(r.dst, err)
			}
		}
	}
	for _, r := range records {
		if r.pre == "" && r.post == "" {
			continue
		}
		token := e.commentToken(r.dst)
		if err := patch.ApplyPair(r.dst, token, themeName, r.pre, r.post); err != nil {
			logJoinErr(r.dst, err)
		}
	}

	for app := range touchedApps {
		reload.Run(app)
	}

	return nil
}

func (e *Engine) schedule(records map[string]*record, rel, destDir string, fill func(*record) error, ext string) error {
	stem := strings.TrimSuffix(filepath.Base(rel), ext)
	key := filepath.Join(filepath.Dir(rel), stem)

	r, ok := records[key]
	if !ok {
		r = &record{dst: filepath.Join(destDir, stem)}
		records[key] = r
	}
	return fill(r)
}

func (e *Engine) commentToken(targetPath string) string {
	ext := filepath.Ext(targetPath)
	if tok, ok := e.CommentStyles[ext]; ok {
		return tok
	}
	return "#"
}

// smartCopy copies src to dst only if dst is missing or differs in byte
// content (see paths.FilesDiffer); a differing mtime alone does not
// trigger a copy.
func smartCopy(src, dst string) error {
	differs, err := paths.FilesDiffer(src, dst)
	if err != nil {
		return err
	}
	if !differs {
		return nil
	}
	return paths.CopyFile(src, dst)
}

func logJoinErr(target string, err error) {
	if perrors.Is(err, perrors.PatchTargetMissing) {
		logger.Warn("patch target missing, skipping", "target", target, "error", err)
		return
	}
	logger.Error("patch application failed", "target", target, "error", err)
}
