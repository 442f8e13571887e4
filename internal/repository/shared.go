package repository

// Pagination holds page-based list parameters.
type Pagination struct {
	PageNo   int32
	PageSize int32
}

// Offset converts the page number to a row offset.
func (p *Pagination) Offset() int32 { return (p.PageNo - 1) * p.PageSize }

// Limit returns the page size as a row limit.
func (p *Pagination) Limit() int32 { return p.PageSize }

// FilterOrder carries raw filter and order_by expressions to be bound
// by pkg/filterexpr against a resource schema.
type FilterOrder struct {
	Filter  string
	OrderBy string
}

func (fo *FilterOrder) GetFilter() string { return fo.Filter }

func (fo *FilterOrder) GetOrderBy() string { return fo.OrderBy }
