package filter

import (
	"github.com/okwera/fintrack/internal/database/repository"
)

// Matches reports whether any searchable field of t matches: description,
// category, the amount rendered as text, or the ISO date.
func (m *Matcher) Matches(t repository.Transaction) bool {
	if m == nil {
		return true
	}
	return m.re.MatchString(t.Description) ||
		m.re.MatchString(t.Category) ||
		m.re.MatchString(t.Amount.String()) ||
		m.re.MatchString(t.Date)
}

// Highlight wraps every match inside text using wrap. A nil matcher returns
// text unchanged.
func (m *Matcher) Highlight(text string, wrap func(string) string) string {
	if m == nil {
		return text
	}
	return m.re.ReplaceAllStringFunc(text, wrap)
}

// Apply returns the rows matching m, in input order. The input slice is
// never mutated.
func Apply(rows []repository.Transaction, m *Matcher) []repository.Transaction {
	out := make([]repository.Transaction, 0, len(rows))
	for _, r := range rows {
		if m.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// View returns the filtered, sorted view of rows.
func View(rows []repository.Transaction, m *Matcher, field string, asc bool) []repository.Transaction {
	return Sort(Apply(rows, m), field, asc)
}
