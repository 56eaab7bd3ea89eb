package autoblog

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"
)

// SanitizeFilename derives the page filename for a topic: letters, digits
// and whitespace are kept, spaces become hyphens and the result is
// lower-cased with an .html suffix.
func SanitizeFilename(topic string) string {
	var b strings.Builder
	for _, r := range topic {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	name := strings.ToLower(strings.ReplaceAll(b.String(), " ", "-"))
	if name == "" {
		name = "post"
	}
	return name + ".html"
}

// suffixedFilename returns name with "-n" inserted before the extension.
func suffixedFilename(name string, n int) string {
	base := strings.TrimSuffix(name, ".html")
	return base + "-" + strconv.Itoa(n) + ".html"
}

// Fingerprint is the lowercase hex MD5 of the topic text, the key under which
// processed topics are recorded.
func Fingerprint(topic string) string {
	sum := md5.Sum([]byte(topic))
	return hex.EncodeToString(sum[:])
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
