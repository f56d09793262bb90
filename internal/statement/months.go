package statement

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Date patterns tried per block, in priority order. The first pattern that
// yields a valid calendar date decides the block's month; the rest of the
// block is ignored.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{2})-(\d{2})-(\d{2})\b`),            // DD-MM-YY
	regexp.MustCompile(`\b(\d{2})-(\d{2})-(\d{4})\b`),            // DD-MM-YYYY
	regexp.MustCompile(`\b(\d{2})-([A-Za-z]{3,9})-(\d{2,4})\b`),  // DD-MMM-YY, DD-MMMM-YYYY
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ExtractMonths derives the sorted set of YYYY-MM tokens referenced by the
// given blocks. At most one month is taken from each block. Blocks with no
// parseable date contribute nothing; garbled OCR must not fail the batch.
func ExtractMonths(blocks []string) []string {
	months := make(map[string]struct{})

	for _, block := range blocks {
		if m, ok := monthOfBlock(block); ok {
			months[m] = struct{}{}
		}
	}

	out := make([]string, 0, len(months))
	for m := range months {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// monthOfBlock finds the first valid date in a block, trying each pattern in
// priority order. Matches that are not real calendar dates (day 32, month 13)
// are skipped.
func monthOfBlock(block string) (string, bool) {
	for i, pattern := range datePatterns {
		for _, match := range pattern.FindAllStringSubmatch(block, -1) {
			year, month, day, err := parseDateMatch(i, match)
			if err != nil {
				continue
			}
			if !validDate(year, month, day) {
				continue
			}
			return fmt.Sprintf("%04d-%02d", year, month), true
		}
	}
	return "", false
}

func parseDateMatch(patternIdx int, match []string) (year, month, day int, err error) {
	day, err = strconv.Atoi(match[1])
	if err != nil {
		return 0, 0, 0, err
	}

	if patternIdx == 2 {
		name := strings.ToLower(match[2])
		if len(name) > 3 {
			name = name[:3]
		}
		m, ok := monthNames[name]
		if !ok {
			return 0, 0, 0, fmt.Errorf("unknown month name %q", match[2])
		}
		month = m
	} else {
		month, err = strconv.Atoi(match[2])
		if err != nil {
			return 0, 0, 0, err
		}
	}

	year, err = strconv.Atoi(match[3])
	if err != nil {
		return 0, 0, 0, err
	}
	year = expandYear(year)

	return year, month, day, nil
}

// expandYear maps two-digit years onto centuries: < 50 is 2000s, >= 50 is
// 1900s. Four-digit years pass through.
func expandYear(year int) int {
	if year >= 100 {
		return year
	}
	if year < 50 {
		return year + 2000
	}
	return year + 1900
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Year() == year && int(d.Month()) == month && d.Day() == day
}
