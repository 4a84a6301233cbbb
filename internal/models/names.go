package models

import (
	"fmt"
	"net/url"
	"strings"
)

const maxSafeNameLen = 50

// SafeName mirrors the Python service's directory naming: every rune
// outside [A-Za-z0-9_-] becomes "_", truncated to 50 runes.
func SafeName(name string) string {
	var b strings.Builder
	n := 0
	for _, r := range name {
		if n == maxSafeNameLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		n++
	}
	return b.String()
}

// PythonRouteID is the id the Python service files a route under.
func PythonRouteID(start, end string) string {
	return SafeName(start) + "_" + SafeName(end)
}

// VideoFilename is the file name the Python service writes a route's
// dynamic-speed video to.
func VideoFilename(routeID string, fps int) string {
	prefix := SafeName(routeID)
	if len(prefix) > 30 {
		prefix = prefix[:30]
	}
	return fmt.Sprintf("%s_dynamic_%dfps.mp4", prefix, fps)
}

// VideoURL is the API path the SPA streams a route's video from.
func VideoURL(routeID, filename string) string {
	return "/api/videos/" + url.PathEscape(routeID) + "/" + url.PathEscape(filename)
}

// NormalizeFramePath rewrites a stored file path to the form
// "frames/<route>/...": separators become "/", anything before the
// frames root is dropped and repeated slashes collapse.
func NormalizeFramePath(p string) string {
	if p == "" {
		return p
	}
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if p == "frames" || strings.HasPrefix(p, "frames/") {
		return p
	}
	if i := strings.Index(p, "/frames/"); i >= 0 {
		return p[i+1:]
	}
	return strings.TrimPrefix(p, "./")
}
