package shared

const (
	DefaultPageSize = 20
	MaxPageSize     = 500
)

// Filter is the paging, ordering and free-text part shared by the list
// queries of every repository. OrderBy is checked against a per-table
// allow list before it reaches SQL.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// Normalize clamps paging into range and defaults the direction to desc
func (f Filter) Normalize() Filter {
	f.Page = max(f.Page, 1)
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	f.PageSize = min(f.PageSize, MaxPageSize)
	if f.OrderDir != "asc" {
		f.OrderDir = "desc"
	}
	return f
}

// Offset returns the row offset of the requested page
func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
