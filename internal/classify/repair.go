package classify

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	trailingCommaPattern = regexp.MustCompile(`,\s*([\]}])`)
	bareKeyPattern       = regexp.MustCompile(`([{,])\s*([A-Za-z0-9_]+)\s*:`)
)

// RepairJSON normalizes the common ways the model mangles its JSON output:
// Markdown code fences, single-quoted strings, trailing commas before a
// closing bracket, and unquoted object keys. The result is still not
// guaranteed to parse; callers treat a parse failure as a dropped chunk.
func RepairJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Drop a leading ``` or ```json fence line and a trailing fence.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	s = strings.ReplaceAll(s, "'", `"`)
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	s = bareKeyPattern.ReplaceAllString(s, `$1"$2":`)

	return s
}

// record is the wire shape of one classified transaction as produced by the
// model. Confidence arrives as a JSON number and is clamped to [0,100].
type record struct {
	Date          string  `json:"date"`
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
	Type          string  `json:"type"`
	Category      string  `json:"category"`
	PaymentMethod string  `json:"payment_method"`
	Description   string  `json:"description"`
	Confidence    float64 `json:"confidence"`
}

// DecodeRecords parses repaired model output. Accepted shapes: a top-level
// JSON array of transaction objects, or an object with a "transactions"
// array. Anything else is an error.
func DecodeRecords(repaired string) ([]record, error) {
	var arr []record
	if err := json.Unmarshal([]byte(repaired), &arr); err == nil {
		return arr, nil
	}

	var wrapper struct {
		Transactions []record `json:"transactions"`
	}
	if err := json.Unmarshal([]byte(repaired), &wrapper); err == nil && wrapper.Transactions != nil {
		return wrapper.Transactions, nil
	}

	return nil, fmt.Errorf("DecodeRecords: response is neither a transaction array nor a transactions object")
}

func clampConfidence(c float64) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return int(c)
}
