package domain

// Term is the canonical academic term a course runs in.
type Term string

const (
	TermUnknown   Term = ""
	TermSpring    Term = "SPRING"
	TermFall      Term = "FALL"
	TermFullYear  Term = "FULL_YEAR"
	TermIntensive Term = "INTENSIVE"
)

func (t Term) String() string { return string(t) }

// termAliases maps canonical terms to the raw labels found on records.
// Lookups go through NormalizeText, so case and spacing do not matter.
var termAliases = map[Term][]string{
	TermSpring:    {"Spring", "spring semester", "first semester", "1st semester", "semester 1", "前期", "春学期", "春"},
	TermFall:      {"Fall", "Autumn", "fall semester", "second semester", "2nd semester", "semester 2", "後期", "秋学期", "秋"},
	TermFullYear:  {"Full Year", "full-year", "annual", "通年"},
	TermIntensive: {"Intensive", "summer intensive", "集中", "集中講義"},
}

var termLookup = func() map[string]Term {
	m := make(map[string]Term)
	for t, labels := range termAliases {
		m[NormalizeText(string(t))] = t
		for _, l := range labels {
			m[NormalizeText(l)] = t
		}
	}
	return m
}()

// CanonicalTerm collapses a raw term label to its canonical value.
// Unrecognized labels return TermUnknown.
func CanonicalTerm(raw string) Term {
	return termLookup[NormalizeText(raw)]
}
