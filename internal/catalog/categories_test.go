package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistinctCategories(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		want       []string
	}{
		{
			name:       "dedupe and sort",
			categories: []string{"pharmacy", "clinic", "pharmacy", "hospital"},
			want:       []string{"clinic", "hospital", "pharmacy"},
		},
		{
			name:       "case sensitive",
			categories: []string{"pharmacy", "Pharmacy"},
			want:       []string{"Pharmacy", "pharmacy"},
		},
		{
			name:       "skips empty",
			categories: []string{"", "dentist", ""},
			want:       []string{"dentist"},
		},
		{
			name: "empty catalog",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services := make([]Service, 0, len(tt.categories))
			for _, c := range tt.categories {
				services = append(services, Service{Category: c})
			}

			assert.Equal(t, tt.want, DistinctCategories(services))
		})
	}
}

func TestDistinctCategoriesFollowsCatalog(t *testing.T) {
	all := fixture()

	assert.Equal(t, []string{"Pharmacy", "clinic", "hospital", "pharmacy"}, DistinctCategories(all))
	assert.Equal(t, []string{"clinic"}, DistinctCategories(Filter(all, "clinic", "", FieldName)))
}
