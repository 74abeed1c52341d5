package update

import "strings"

// changelogMaxLines caps how much of the remote changelog is surfaced.
const changelogMaxLines = 15

// changelogHead returns the first lines of a freeform changelog body,
// split on CR, LF or CRLF boundaries.
func changelogHead(body string, n int) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")

	lines := strings.Split(body, "\n")

	// a final newline is a split artifact, not an empty last line;
	// drop it before capping so a genuinely blank capped line survives
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines) > n {
		lines = lines[:n]
	}

	return lines
}
