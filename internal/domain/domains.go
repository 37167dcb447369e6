package domain

import "fmt"

// DefaultKey is the required fallback entry in every country→domain map.
const DefaultKey = "DEFAULT"

// DomainMap resolves a country code to the recommended data domain for one
// variable family (precipitation, temperature, or wind). Country codes are
// case-sensitive ISO alpha-2 by convention. Immutable after construction.
type DomainMap struct {
	byCountry map[string]string
	fallback  string
}

// NewDomainMap builds a DomainMap from a country→domain mapping. The mapping
// must contain a DEFAULT entry; a map without one is a configuration error.
func NewDomainMap(byCountry map[string]string) (DomainMap, error) {
	fallback, ok := byCountry[DefaultKey]
	if !ok || fallback == "" {
		return DomainMap{}, fmt.Errorf("%w: domain map has no %s entry", ErrConfiguration, DefaultKey)
	}

	m := make(map[string]string, len(byCountry))
	for country, dom := range byCountry {
		m[country] = dom
	}
	return DomainMap{byCountry: m, fallback: fallback}, nil
}

// Resolve returns the domain for countryCode, or the DEFAULT entry when the
// country is not mapped.
func (m DomainMap) Resolve(countryCode string) string {
	if dom, ok := m.byCountry[countryCode]; ok {
		return dom
	}
	return m.fallback
}

// Len reports the number of explicit country entries, DEFAULT included.
func (m DomainMap) Len() int {
	return len(m.byCountry)
}
