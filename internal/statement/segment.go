// Package statement turns raw extracted statement text into transaction
// blocks and derives the month footprint used to gate ingestion.
package statement

import (
	"regexp"
	"strings"
)

// headerPattern marks the start of a transaction block: a posting date and a
// value date at the beginning of the line (DD-MM-YY DD-MM-YY ...).
var headerPattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{2}\s+\d{2}-\d{2}-\d{2}`)

// Segment splits raw statement text into ordered transaction blocks. A line
// opens a new block when it matches the dual-date header; every following
// line up to the next header is appended, space-joined, to the current
// block. Blank lines are dropped. Lines before the first header are emitted
// as the first block so nothing is silently lost.
func Segment(raw string) []string {
	var blocks []string
	var current []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if headerPattern.MatchString(line) && len(current) > 0 {
			blocks = append(blocks, strings.Join(current, " "))
			current = current[:0]
		}
		current = append(current, line)
	}

	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, " "))
	}

	return blocks
}
