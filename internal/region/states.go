package region

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type state struct {
	Abbr string
	Name string
}

// states is ordered; prefix matching returns the first hit in this order.
var states = []state{
	{"AL", "Alabama"}, {"AK", "Alaska"}, {"AZ", "Arizona"}, {"AR", "Arkansas"},
	{"CA", "California"}, {"CO", "Colorado"}, {"CT", "Connecticut"}, {"DE", "Delaware"},
	{"FL", "Florida"}, {"GA", "Georgia"}, {"HI", "Hawaii"}, {"ID", "Idaho"},
	{"IL", "Illinois"}, {"IN", "Indiana"}, {"IA", "Iowa"}, {"KS", "Kansas"},
	{"KY", "Kentucky"}, {"LA", "Louisiana"}, {"ME", "Maine"}, {"MD", "Maryland"},
	{"MA", "Massachusetts"}, {"MI", "Michigan"}, {"MN", "Minnesota"}, {"MS", "Mississippi"},
	{"MO", "Missouri"}, {"MT", "Montana"}, {"NE", "Nebraska"}, {"NV", "Nevada"},
	{"NH", "New Hampshire"}, {"NJ", "New Jersey"}, {"NM", "New Mexico"}, {"NY", "New York"},
	{"NC", "North Carolina"}, {"ND", "North Dakota"}, {"OH", "Ohio"}, {"OK", "Oklahoma"},
	{"OR", "Oregon"}, {"PA", "Pennsylvania"}, {"RI", "Rhode Island"}, {"SC", "South Carolina"},
	{"SD", "South Dakota"}, {"TN", "Tennessee"}, {"TX", "Texas"}, {"UT", "Utah"},
	{"VT", "Vermont"}, {"VA", "Virginia"}, {"WA", "Washington"}, {"WV", "West Virginia"},
	{"WI", "Wisconsin"}, {"WY", "Wyoming"},
}

// Normalize turns user input into a canonical region name: an exact
// two-letter code, else the first full name the input is a prefix of
// (case-insensitive), else the input title-cased.
func Normalize(input string) string {
	cleaned := strings.TrimSpace(input)
	if cleaned == "" {
		return ""
	}
	upper := strings.ToUpper(cleaned)

	for _, s := range states {
		if s.Abbr == upper {
			return s.Name
		}
	}
	for _, s := range states {
		if strings.HasPrefix(strings.ToUpper(s.Name), upper) {
			return s.Name
		}
	}
	return cases.Title(language.English).String(cleaned)
}

// Abbreviation returns the two-letter code for a canonical name, or "".
func Abbreviation(name string) string {
	for _, s := range states {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s.Abbr
		}
	}
	return ""
}

// Slug lowercases a name and joins words with hyphens: "New York" is
// "new-york".
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
