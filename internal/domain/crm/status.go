package crm

import "strings"

// ===============================
// Client status
// ===============================

// Status is free text; these are the values the UI offers.
const (
	StatusNew           = "NEW"
	StatusNoAnswer      = "NO ANSWER"
	StatusCallBack      = "CALL BACK"
	StatusNotInterested = "NOT INTERESTED"
	StatusDeposit       = "DEPOSIT"
)

var knownStatuses = []string{
	StatusNew,
	StatusNoAnswer,
	StatusCallBack,
	StatusNotInterested,
	StatusDeposit,
}

func KnownStatuses() []string {
	out := make([]string, len(knownStatuses))
	copy(out, knownStatuses)
	return out
}

// NormalizeStatus trims s, maps empty to NEW and upper-cases known values.
// Unknown values are kept as written.
func NormalizeStatus(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusNew
	}

	upper := strings.ToUpper(s)
	for _, known := range knownStatuses {
		if upper == known {
			return known
		}
	}
	return s
}
