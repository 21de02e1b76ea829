package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// Key derives the cache key for a request URL. The URL is normalized first so
// incidental formatting differences always map to the same key.
func Key(rawURL string) string {
	return sum(Normalize(rawURL))
}

// Content fingerprints a rendered text block for deduplication. The provider
// assigns no stable review IDs, so identity is the text itself.
func Content(text string) string {
	return sum(strings.TrimSpace(text))
}

// Normalize canonicalizes a request URL: scheme and host are lowercased, a
// trailing slash on the path is dropped, and query parameters are re-encoded
// in sorted order. Unparseable input is returned trimmed as-is.
func Normalize(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return trimmed
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.Fragment = ""
	parsed.RawQuery = parsed.Query().Encode()

	return parsed.String()
}

func sum(value string) string {
	digest := md5.Sum([]byte(value))
	return hex.EncodeToString(digest[:])
}
