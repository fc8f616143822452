// Package query turns untrusted client-supplied list parameters into a
// validated, bounded query plan. Building a plan never fails: anything
// unusable falls back to a default.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// sortColumns maps client-facing sort field names to storage columns.
// Fields not listed here are silently dropped, which also keeps client
// input out of SQL identifiers.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"title":     "title",
	"priority":  "priority",
	"completed": "completed",
}

type SortKey struct {
	Column string
	Desc   bool
}

// Plan describes one list query. UserID is the mandatory owner filter,
// injected from the authenticated identity and never overridable from
// client parameters.
type Plan struct {
	UserID    string
	Completed *bool
	Priority  string
	Sort      []SortKey
	Page      int
	Limit     int
	Skip      int
}

func Build(userID string, params url.Values) Plan {
	p := Plan{UserID: userID, Page: 1, Limit: DefaultLimit}

	if n, err := strconv.Atoi(params.Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(params.Get("limit")); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	p.Skip = (p.Page - 1) * p.Limit

	// Only completed and priority may be promoted to equality filters;
	// every other parameter is ignored.
	if v := params.Get("completed"); v != "" {
		b := v == "true"
		p.Completed = &b
	}
	if v := params.Get("priority"); v != "" {
		p.Priority = v
	}

	p.Sort = parseSort(params.Get("sortBy"))
	return p
}

// parseSort reads a comma-separated list of field names, each optionally
// prefixed with "-" for descending. Order is preserved for stable
// multi-key sorting. Defaults to newest first.
func parseSort(raw string) []SortKey {
	var keys []SortKey
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		desc := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")

		col, ok := sortColumns[field]
		if !ok {
			continue
		}
		keys = append(keys, SortKey{Column: col, Desc: desc})
	}

	if len(keys) == 0 {
		return []SortKey{{Column: "created_at", Desc: true}}
	}
	return keys
}
