package countries

import (
	"sort"
	"strings"

	"github.com/goliatone/go-regform/pkg/model"
)

// Search filters list by a case-insensitive substring of the name or an
// exact id match. Prefix matches rank first; ties keep list order.
func Search(list []model.Country, query string, limit int, opts Options) []model.Country {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode != EmptySearchAll {
			return nil
		}
		if len(list) <= limit {
			return append([]model.Country{}, list...)
		}
		return append([]model.Country{}, list[:limit]...)
	}

	q := strings.ToLower(query)
	matches := make([]matchedCountry, 0, 8)
	for _, country := range list {
		name := strings.ToLower(country.Name)
		idMatch := strings.EqualFold(country.ID, q)
		if !idMatch && !strings.Contains(name, q) {
			continue
		}
		matches = append(matches, matchedCountry{
			country:  country,
			isPrefix: idMatch || strings.HasPrefix(name, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]model.Country, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.country)
	}
	return out
}

// Find returns the country whose id or name equals value, ignoring case.
func Find(list []model.Country, value string) (model.Country, bool) {
	value = strings.TrimSpace(value)
	for _, country := range list {
		if strings.EqualFold(country.ID, value) || strings.EqualFold(country.Name, value) {
			return country, true
		}
	}
	return model.Country{}, false
}

type matchedCountry struct {
	country  model.Country
	isPrefix bool
}
