package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"path"
	"strings"
	"unicode"
)

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "svg": {}, "bmp": {},
}

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL resolves ref against base. Absolute http(s) references are
// returned unchanged, protocol-relative ones take the base scheme, root-relative
// ones the base scheme and host, and anything else is appended to the directory
// of the base path.
func ToAbsoluteURL(base, ref string) (string, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return "", errors.New("base URL must be absolute")
	}

	origin := baseURL.Scheme + "://" + baseURL.Host

	switch {
	case strings.HasPrefix(ref, "//"):
		return baseURL.Scheme + ":" + ref, nil
	case strings.HasPrefix(ref, "/"):
		return origin + ref, nil
	}

	dir := baseURL.EscapedPath()
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[:i]
	} else {
		dir = ""
	}
	return origin + dir + "/" + ref, nil
}

// IsValidURL reports whether raw is a well-formed absolute http or https URL.
func IsValidURL(raw string) bool {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	if strings.IndexFunc(raw, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}

// IsValidImageURL reports whether raw may be used as an image URL. Many CDN image
// URLs carry no extension, so only structurally invalid URLs are rejected.
func IsValidImageURL(raw string) bool {
	return IsValidURL(raw)
}

// HasImageExtension reports whether the path of raw ends in a known image extension.
func HasImageExtension(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	_, ok := imageExtensions[ext]
	return ok
}
