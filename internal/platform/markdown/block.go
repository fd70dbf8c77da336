package markdown

import "strings"

func blockMarkers(name string) (string, string) {
	return "<!-- dsaboost:" + name + " -->", "<!-- /dsaboost:" + name + " -->"
}

// AppendToBlock adds line as the last entry of the generated block called
// name, creating the block at the end of body when missing. Text outside the
// markers is left alone so notes can be edited by hand.
func AppendToBlock(body, name, line string) string {
	open, closing := blockMarkers(name)
	start := strings.Index(body, open)
	end := strings.Index(body, closing)
	if start < 0 || end < start {
		sep := ""
		switch {
		case body == "":
		case strings.HasSuffix(body, "\n\n"):
		case strings.HasSuffix(body, "\n"):
			sep = "\n"
		default:
			sep = "\n\n"
		}
		return body + sep + open + "\n" + line + "\n" + closing + "\n"
	}
	return body[:end] + line + "\n" + body[end:]
}

// BlockLines returns the entries of the named block, or nil.
func BlockLines(body, name string) []string {
	open, closing := blockMarkers(name)
	start := strings.Index(body, open)
	end := strings.Index(body, closing)
	if start < 0 || end < start {
		return nil
	}
	inner := strings.Trim(body[start+len(open):end], "\n")
	if inner == "" {
		return nil
	}
	return strings.Split(inner, "\n")
}
