package catalog

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrUnknownSearchField is returned when a search field name is not recognised.
	ErrUnknownSearchField = errors.New("unknown search field")
)

// SearchField names the Service attribute that text search runs against.
type SearchField string

// Supported search fields.
const (
	FieldName     SearchField = "name"
	FieldPostcode SearchField = "postcode"
	FieldAddress  SearchField = "address"
	FieldCategory SearchField = "category"
	FieldPhone    SearchField = "phone"
	FieldWebsite  SearchField = "website"
	FieldID       SearchField = "id"
)

var fieldValues = map[SearchField]func(Service) string{
	FieldName:     func(s Service) string { return s.Name },
	FieldPostcode: func(s Service) string { return s.Postcode },
	FieldAddress:  func(s Service) string { return s.Address },
	FieldCategory: func(s Service) string { return s.Category },
	FieldPhone:    func(s Service) string { return s.Phone },
	FieldWebsite:  func(s Service) string { return s.Website },
	FieldID:       func(s Service) string { return s.ID },
}

// ParseSearchField validates a search field name.
func ParseSearchField(name string) (SearchField, error) {
	f := SearchField(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := fieldValues[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSearchField, name)
	}

	return f, nil
}

// Value returns the field value of s. Unknown fields read the name.
func (f SearchField) Value(s Service) string {
	if get, ok := fieldValues[f]; ok {
		return get(s)
	}

	return s.Name
}

// Filter returns the services whose field contains term and whose category
// contains category, both compared after lower-casing.
//
// An empty term or category matches everything. Category matching is
// substring containment, so "pharm" selects "pharmacy". Lower-casing is not
// full case folding: "Straße" does not contain "ss".
func Filter(services []Service, term, category string, field SearchField) []Service {
	lower := cases.Lower(language.Und)
	term = lower.String(term)
	category = lower.String(category)

	filtered := make([]Service, 0, len(services))
	for _, s := range services {
		if !strings.Contains(lower.String(field.Value(s)), term) {
			continue
		}
		if category != "" && !strings.Contains(lower.String(s.Category), category) {
			continue
		}
		filtered = append(filtered, s)
	}

	return filtered
}
