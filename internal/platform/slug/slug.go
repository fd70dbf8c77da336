package slug

import (
	"strings"
	"time"
	"unicode"
)

const maxLen = 48

// Make lowercases title and joins its ASCII letter and digit runs with
// hyphens, capped at 48 bytes.
func Make(title string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(title) {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			if b.Len()+2 > maxLen {
				break
			}
			b.WriteByte('-')
			pending = false
		}
		if b.Len() == maxLen {
			break
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}

// SessionFile names a session note: the end time of day then the topic.
func SessionFile(title string, end time.Time) string {
	return end.Format("150405") + "-" + Make(title) + ".md"
}
