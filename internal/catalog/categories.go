package catalog

import "sort"

// DistinctCategories returns each non-empty category once, sorted ascending.
// Comparison is case-sensitive.
func DistinctCategories(services []Service) []string {
	seen := make(map[string]struct{}, len(services))
	categories := make([]string, 0)

	for _, s := range services {
		if s.Category == "" {
			continue
		}
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}
		categories = append(categories, s.Category)
	}

	sort.Strings(categories)

	return categories
}
