// Package catalog fetches and parses the official and community remote
// theme lists.
package catalog

import (
	"bufio"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pawlette/pawlette/internal/logger"
)

// Source distinguishes where a RemoteTheme came from.
type Source string

const (
	SourceOfficial  Source = "official"
	SourceCommunity Source = "community"
)

// RemoteTheme is a single entry parsed from a catalog text file.
type RemoteTheme struct {
	Name   string
	URL    string
	Source Source
}

// Catalog URLs pawlette ships with; kept as vars so tests can override them.
var (
	OfficialURL  = "https://raw.githubusercontent.com/meowrch/pawlette-themes/main/official.txt"
	CommunityURL = "https://raw.githubusercontent.com/meowrch/pawlette-themes/main/community.txt"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// FetchRemoteThemes fetches both catalogs and merges them, official
// winning on name collision. A network failure on either source logs and
// yields that source as empty, without aborting the other.
func FetchRemoteThemes() map[string]RemoteTheme {
	official := fetchOne(OfficialURL, SourceOfficial)
	community := fetchOne(CommunityURL, SourceCommunity)

	merged := make(map[string]RemoteTheme, len(official)+len(community))
	for _, t := range community {
		merged[t.Name] = t
	}
	for _, t := range official {
		merged[t.Name] = t
	}
	return merged
}

func fetchOne(url string, source Source) []RemoteTheme {
	resp, err := httpClient.Get(url)
	if err != nil {
		logger.Warn("catalog fetch failed", "url", url, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("catalog fetch non-200", "url", url, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("catalog read failed", "url", url, "error", err)
		return nil
	}

	return parseCatalog(string(body), source)
}

func parseCatalog(content string, source Source) []RemoteTheme {
	var out []RemoteTheme
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := splitWhitespace(line, 3)
		if len(fields) < 2 {
			continue
		}
		name := fields[0]
		url := convertGitHubBlobURL(fields[1])
		out = append(out, RemoteTheme{Name: name, URL: url, Source: source})
	}
	return out
}

// splitWhitespace splits s on runs of whitespace into at most n fields,
// mirroring Python's str.split(maxsplit=n-1).
func splitWhitespace(s string, n int) []string {
	fields := strings.Fields(s)
	if len(fields) <= n {
		return fields
	}
	head := fields[:n-1]
	rest := strings.Join(fields[n-1:], " ")
	return append(head, rest)
}

// convertGitHubBlobURL rewrites a GitHub blob URL to its raw equivalent.
func convertGitHubBlobURL(url string) string {
	if strings.Contains(url, "github.com") && strings.Contains(url, "/blob/") {
		return strings.Replace(url, "/blob/", "/raw/", 1)
	}
	return url
}

// AsURLMap renders the catalog as a name->url JSON-ready map for
// `get-available-themes`.
func AsURLMap(themes map[string]RemoteTheme) map[string]string {
	out := make(map[string]string, len(themes))
	for name, t := range themes {
		out[name] = t.URL
	}
	return out
}
