package chatbot

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/frahmantamala/labtrack/internal"
)

type rule struct {
	kind    QueryType
	phrases []string
}

// rules are tried in order; the first phrase found wins.
var rules = []rule{
	{QueryCountAssets, []string{"how many assets", "count assets"}},
	{QueryCountTickets, []string{"how many tickets", "count tickets"}},
	{QueryListAssets, []string{"available assets", "what is available"}},
}

var ticketPattern = regexp.MustCompile(`ticket\s*(?:status|id)?\s*#?(\d+)`)

const helpMessage = "I'm sorry, I didn't understand that. You can ask me:\n" +
	"- 'How many assets?'\n" +
	"- 'How many tickets?'\n" +
	"- 'Show available assets'\n" +
	"- 'Status of ticket #1'"

// Sanitize escapes angle brackets and trims the query. The result is what
// gets length-checked and matched.
func Sanitize(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return "", internal.NewValidationFieldError("query", "Query is required", internal.ErrCodeValidationFailed)
	}

	q = strings.ReplaceAll(q, "<", "&lt;")
	q = strings.ReplaceAll(q, ">", "&gt;")
	if utf8.RuneCountInString(q) > MaxQueryLength {
		return "", internal.NewValidationFieldError("query", "Query is too long (max 500 characters)", internal.ErrCodeQueryTooLong)
	}
	return q, nil
}

// classify maps a sanitised query onto the kind of answer it asks for. For ticket lookups it also
// returns the requested id.
func classify(query string) (QueryType, int64) {
	q := strings.ToLower(strings.TrimSpace(query))

	for _, r := range rules {
		for _, phrase := range r.phrases {
			if strings.Contains(q, phrase) {
				return r.kind, 0
			}
		}
	}

	if m := ticketPattern.FindStringSubmatch(q); m != nil {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			return QueryTicketStatus, id
		}
	}
	return QueryUnknown, 0
}
