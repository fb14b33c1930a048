// Package synthetic turns page texts into URLs under a reserved host and
// serves those URLs from memory by rendering the text on request.
package synthetic

import (
	"net/url"
	"strings"
)

// Host never resolves: the .invalid TLD is reserved.
const Host = "noveltomanga.invalid"

const scheme = "http"

// Encode puts text into the single path segment of a URL under Host.
func Encode(text string) string {
	return scheme + "://" + Host + "/" + url.PathEscape(text)
}

// Decode returns the page text carried by u, or false when u is not ours.
func Decode(u *url.URL) (string, bool) {
	if u == nil || u.Host != Host {
		return "", false
	}

	seg := strings.TrimPrefix(u.EscapedPath(), "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}

	text, err := url.PathUnescape(seg)
	if err != nil {
		return "", false
	}

	return text, true
}

func DecodeString(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	return Decode(u)
}

func IsSynthetic(raw string) bool {
	_, ok := DecodeString(raw)
	return ok
}
