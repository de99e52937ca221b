package filter

import (
	"sort"
	"strings"

	"github.com/okwera/fintrack/internal/database/repository"
)

// Field keys accepted by Sort. Anything else falls back to ByDate.
const (
	ByDate        = "date"
	ByAmount      = "amount"
	ByDescription = "description"
	ByCategory    = "category"
)

// Sort returns a new slice ordered by the given field and direction. Equal
// keys keep their input order in both directions, and the input slice is
// never reordered.
func Sort(rows []repository.Transaction, field string, asc bool) []repository.Transaction {
	out := make([]repository.Transaction, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return compare(out[i], out[j], field) < 0
		}
		return compare(out[j], out[i], field) < 0
	})
	return out
}

func compare(a, b repository.Transaction, field string) int {
	switch field {
	case ByAmount:
		return a.Amount.Cmp(b.Amount)
	case ByDescription:
		return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
	case ByCategory:
		return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
	default:
		// ISO dates compare lexically in calendar order.
		return strings.Compare(a.Date, b.Date)
	}
}
