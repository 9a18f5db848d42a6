package entity

// MasterSearchFilter is the domain-level search request.
// Nil fields are not applied.
type MasterSearchFilter struct {
	Search     string
	CategoryID *uint
	ServiceID  *uint
	CityID     *uint
	DistrictID *uint
	Experience *int
	Ordering   string
	Page       int
	PageSize   int
}

// Offset returns the zero-based index of the first hit on the page.
func (f MasterSearchFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// MasterListFilter restricts relational master listings.
type MasterListFilter struct {
	CategoryID *uint
	ServiceID  *uint
}
