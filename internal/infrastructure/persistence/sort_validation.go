package persistence

import (
	"strings"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"gorm.io/gorm/clause"
)

// sortSpec lists the columns a listing may be ordered by. Anything else in
// a request, including injection attempts, falls back to the default.
type sortSpec struct {
	columns    map[string]bool
	defaultCol string
	defaultDir string
}

func newSortSpec(defaultCol, defaultDir string, columns ...string) sortSpec {
	s := sortSpec{columns: map[string]bool{"id": true, "created_at": true, "updated_at": true}, defaultCol: defaultCol, defaultDir: defaultDir}
	for _, c := range columns {
		s.columns[c] = true
	}
	return s
}

var (
	clientSort  = newSortSpec("name", "asc", "name", "email")
	estateSort  = newSortSpec("name", "asc", "name", "location")
	entrySort   = newSortSpec("created_at", "desc", "client_name", "amount", "amount_paid", "payment_status", "next_due_date")
	invoiceSort = newSortSpec("issued_date", "desc", "number", "amount", "amount_paid", "status", "issued_date", "due_date")
)

// order resolves the filter's ordering into an ORDER BY expression. The
// column is quoted by gorm, so only whitelisted names ever reach SQL.
func (s sortSpec) order(f shared.Filter) clause.OrderByColumn {
	col := strings.TrimSpace(f.OrderBy)
	if !s.columns[col] {
		col = s.defaultCol
	}
	dir := strings.ToLower(strings.TrimSpace(f.OrderDir))
	if dir != "asc" && dir != "desc" {
		dir = s.defaultDir
	}
	return clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: dir == "desc"}
}
