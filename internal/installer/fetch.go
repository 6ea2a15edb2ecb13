// Package installer downloads theme archives, normalizes their layout and
// permissions, and records provenance in the installed-themes manifest.
package installer

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pawlette/pawlette/internal/logger"
	"github.com/pawlette/pawlette/internal/perrors"
)

var httpClient = &http.Client{Timeout: 5 * time.Minute}

// ProgressFunc is called with bytes downloaded/total as a download streams.
// total is 0 when the server did not report Content-Length.
type ProgressFunc func(downloaded, total int64)

// progressReader wraps an io.Reader, invoking onProgress as bytes are read.
type progressReader struct {
	r          io.Reader
	total      int64
	downloaded int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.downloaded += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.downloaded, p.total)
		}
	}
	return n, err
}

// DownloadToTemp issues a HEAD (for content-length), then a streaming GET,
// into a temp file. Returns the temp file path; caller owns cleanup.
func DownloadToTemp(url string, onProgress ProgressFunc) (string, error) {
	var contentLength int64
	if resp, err := httpClient.Head(url); err == nil {
		contentLength = resp.ContentLength
		resp.Body.Close()
	}

	resp, err := httpClient.Get(url)
	if err != nil {
		return "", perrors.New(perrors.NetworkFailure, "download", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", perrors.New(perrors.NetworkFailure, "download",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if contentLength <= 0 {
		contentLength = resp.ContentLength
	}
	if contentLength < 0 {
		contentLength = 0
	}

	tmp, err := os.CreateTemp("", "pawlette-download-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer tmp.Close()

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}

	var src io.Reader = resp.Body
	if onProgress != nil {
		src = &progressReader{r: resp.Body, total: contentLength, onProgress: onProgress}
	}

	if _, err := io.Copy(tmp, src); err != nil {
		return "", perrors.New(perrors.NetworkFailure, "download", err)
	}

	return tmp.Name(), nil
}

// member is one entry read from the archive before extraction decisions
// (prefix stripping, traversal checks) are applied.
type member struct {
	name     string
	mode     int64
	typeflag byte
	data     []byte
	linkname string
}

// readTarGz reads every entry of a gzip-compressed tar archive into memory
// members, so the common-prefix and traversal checks can run before any
// file is written to disk.
func readTarGz(path string) ([]member, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, perrors.New(perrors.ArchiveInvalid, "extract", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var members []member
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, perrors.New(perrors.ArchiveInvalid, "extract", err)
		}

		m := member{name: hdr.Name, mode: hdr.Mode, typeflag: hdr.Typeflag, linkname: hdr.Linkname}
		if hdr.Typeflag == tar.TypeReg {
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, perrors.New(perrors.ArchiveInvalid, "extract", err)
			}
			m.data = data
		}
		members = append(members, m)
	}
	return members, nil
}

// commonPrefix returns the single top-level path component shared by every
// member name, or "" if any member lacks one or they disagree. A member
// that names the top-level directory itself (e.g. "mytheme-1.0/", a
// single path component once trimmed) contributes that component without
// requiring a second path segment, mirroring os.path.commonpath's
// treatment of the directory entry alongside its children.
func commonPrefix(members []member) string {
	var candidate string
	seen := false
	for _, m := range members {
		trimmed := strings.Trim(m.name, "/")
		if trimmed == "" {
			return ""
		}
		parts := strings.SplitN(trimmed, "/", 2)
		first := parts[0]
		if first == "" {
			return ""
		}
		if !seen {
			candidate = first
			seen = true
			continue
		}
		if first != candidate {
			return ""
		}
	}
	return candidate
}

// Install extracts the archive at archivePath into <themesDir>/<name>,
// stripping a shared top-level directory if every member has one,
// rejecting path-traversal attempts, performing a clean reinstall, and
// sanitizing permissions recursively.
func Install(archivePath, name, themesDir string) (string, error) {
	members, err := readTarGz(archivePath)
	if err != nil {
		return "", err
	}
	if len(members) == 0 {
		return "", perrors.New(perrors.ArchiveInvalid, "extract", fmt.Errorf("archive is empty"))
	}

	prefix := commonPrefix(members)

	target := filepath.Join(themesDir, name)
	if err := os.RemoveAll(target); err != nil {
		return "", fmt.Errorf("clean pre-existing theme dir: %w", err)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create target dir: %w", err)
	}

	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}

	for _, m := range members {
		relName := m.name
		if prefix != "" {
			trimmed := strings.TrimPrefix(strings.Trim(relName, "/"), prefix)
			relName = strings.TrimPrefix(trimmed, "/")
		}
		if relName == "" || relName == "." {
			continue
		}

		destPath := filepath.Join(target, filepath.FromSlash(relName))
		destAbs, err := filepath.Abs(destPath)
		if err != nil {
			return "", err
		}
		if destAbs != targetAbs && !strings.HasPrefix(destAbs, targetAbs+string(filepath.Separator)) {
			logger.Warn("rejecting path-traversal archive member", "member", m.name)
			continue
		}

		switch m.typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(destAbs, 0o755); err != nil {
				return "", err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(destAbs), 0o755); err != nil {
				return "", err
			}
			os.Remove(destAbs)
			if err := os.Symlink(m.linkname, destAbs); err != nil {
				logger.Warn("skipping symlink member", "member", m.name, "error", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(destAbs), 0o755); err != nil {
				return "", err
			}
			if err := os.WriteFile(destAbs, m.data, os.FileMode(m.mode)&0o777); err != nil {
				return "", err
			}
		}
	}

	if err := sanitizePermissions(target); err != nil {
		return "", fmt.Errorf("sanitize permissions: %w", err)
	}

	return target, nil
}

// sanitizePermissions recursively normalizes the extracted tree:
// directories to 0755; regular files to 0755 if any execute bit was set
// in the archive, else 0644; symlinks untouched.
func sanitizePermissions(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if info.IsDir() {
			return os.Chmod(path, 0o755)
		}
		if info.Mode()&0o111 != 0 {
			return os.Chmod(path, 0o755)
		}
		return os.Chmod(path, 0o644)
	})
}

// NewTempDirName produces a collision-resistant name for a scratch
// extraction directory.
func NewTempDirName() string {
	return "pawlette-" + uuid.NewString()
}
