package pipeline

import (
	"sort"

	"github.com/AnTengye/contractdesk/backend/model"
)

// Facets lists the values offered by the header filter dropdowns
type Facets struct {
	Departments []string                `json:"departments"`
	Years       map[DateColumn][]string `json:"years"`
}

// BuildFacets collects the distinct departments (ascending) and, per date
// column, the distinct years (newest first).
func BuildFacets(records []model.Contract) Facets {
	depts := make(map[string]struct{})
	years := make(map[DateColumn]map[string]struct{}, len(DateColumns))
	for _, col := range DateColumns {
		years[col] = make(map[string]struct{})
	}

	for i := range records {
		c := &records[i]
		if c.Department != "" {
			depts[c.Department] = struct{}{}
		}
		for _, col := range DateColumns {
			if y := col.Of(c).Year(); y != "" {
				years[col][y] = struct{}{}
			}
		}
	}

	f := Facets{
		Departments: sortedKeys(depts),
		Years:       make(map[DateColumn][]string, len(DateColumns)),
	}
	for col, set := range years {
		list := sortedKeys(set)
		sort.Sort(sort.Reverse(sort.StringSlice(list)))
		f.Years[col] = list
	}
	return f
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
