package statement

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RejectReason identifies why an upload batch was refused. Callers branch on
// the reason, never on message text.
type RejectReason string

const (
	ReasonNone            RejectReason = ""
	ReasonNoMonths        RejectReason = "no_valid_months"
	ReasonDuplicateMonths RejectReason = "duplicate_months"
	ReasonMissingMonths   RejectReason = "missing_months"
)

// ValidationResult is the structured outcome of the continuity gate.
// Rejections are reported here, not raised as errors.
type ValidationResult struct {
	OK      bool
	Reason  RejectReason
	Months  []string // offending months: duplicates or gaps
	Message string
}

// ValidateContinuity decides whether an upload batch may proceed.
// The checks run in order: empty footprint, overlap with already-stored
// months, then (when checkGaps is set) calendar gaps across the combined
// range. This runs before classification so a doomed upload never pays for
// model calls.
func ValidateContinuity(uploaded, existing []string, checkGaps bool) ValidationResult {
	if len(uploaded) == 0 {
		return ValidationResult{
			Reason:  ReasonNoMonths,
			Message: "no valid transaction months detected",
		}
	}

	existingSet := toSet(existing)

	var duplicates []string
	for _, m := range uploaded {
		if _, ok := existingSet[m]; ok {
			duplicates = append(duplicates, m)
		}
	}
	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		return ValidationResult{
			Reason:  ReasonDuplicateMonths,
			Months:  duplicates,
			Message: fmt.Sprintf("duplicate month(s): %s", strings.Join(duplicates, ", ")),
		}
	}

	if checkGaps {
		if gaps := findGaps(uploaded, existing); len(gaps) > 0 {
			return ValidationResult{
				Reason:  ReasonMissingMonths,
				Months:  gaps,
				Message: fmt.Sprintf("missing month(s): %s", strings.Join(gaps, ", ")),
			}
		}
	}

	return ValidationResult{OK: true}
}

// findGaps walks month by month from the earliest to the latest known month
// and collects every calendar month absent from both sets.
func findGaps(uploaded, existing []string) []string {
	known := toSet(existing)
	for _, m := range uploaded {
		known[m] = struct{}{}
	}

	all := make([]string, 0, len(known))
	for m := range known {
		all = append(all, m)
	}
	sort.Strings(all)

	first, err := time.Parse("2006-01", all[0])
	if err != nil {
		return nil
	}
	last, err := time.Parse("2006-01", all[len(all)-1])
	if err != nil {
		return nil
	}

	var gaps []string
	for cur := first; !cur.After(last); cur = cur.AddDate(0, 1, 0) {
		m := cur.Format("2006-01")
		if _, ok := known[m]; !ok {
			gaps = append(gaps, m)
		}
	}
	return gaps
}

func toSet(months []string) map[string]struct{} {
	set := make(map[string]struct{}, len(months))
	for _, m := range months {
		set[m] = struct{}{}
	}
	return set
}
