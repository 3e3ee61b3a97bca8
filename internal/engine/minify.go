package engine

import "strings"

// MinifyXML trims every line of s, drops the empty ones and concatenates the rest
// with no separator. Whitespace that is significant inside a text node spanning
// several lines is not preserved.
func MinifyXML(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for line := range strings.SplitSeq(s, "\n") {
		sb.WriteString(strings.TrimSpace(line))
	}
	return sb.String()
}
