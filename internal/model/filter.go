package model

type FilterField string

const (
	FilterRegion   FilterField = "region"
	FilterStatus   FilterField = "estado"
	FilterDateFrom FilterField = "fechaInicio"
	FilterDateTo   FilterField = "fechaFin"
	FilterSearch   FilterField = "search"
)

type FilterState struct {
	Region   RegionCode
	Status   Status
	DateFrom string
	DateTo   string
	Search   string
	Page     int
	PageSize int
}

func DefaultFilterState(pageSize int) FilterState {
	return FilterState{Page: 1, PageSize: pageSize}
}

// SameFilters compares everything except paging.
func (f FilterState) SameFilters(other FilterState) bool {
	return f.Region == other.Region &&
		f.Status == other.Status &&
		f.DateFrom == other.DateFrom &&
		f.DateTo == other.DateTo &&
		f.Search == other.Search
}

func (f FilterState) IsZero() bool {
	return f.SameFilters(FilterState{})
}

type TenderPage struct {
	Items []Tender
	Total int
}

// TotalPages is ceil(total/pageSize), never below one.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
