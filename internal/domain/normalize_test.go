package domain

import "testing"

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  North  ", want: "north"},
		{name: "lowercase", input: "Linear Algebra", want: "linear algebra"},
		{name: "compress multiple spaces", input: "linear   algebra", want: "linear algebra"},
		{name: "tabs and newlines", input: "\tlinear\n algebra \t", want: "linear algebra"},
		{name: "ideographic space", input: "情報　科学", want: "情報 科学"},
		{name: "diacritics preserved", input: "Café", want: "café"},
		{name: "brackets preserved", input: "Economics [Online]", want: "economics [online]"},
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestContainsText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		haystack, needle string
		want             bool
	}{
		{"Year 1-2", "year 1", true},
		{"Year 1-2", "  YEAR  1 ", true},
		{"Year 3", "year 1", false},
		{"anything", "", true},
		{"", "x", false},
	}
	for _, tt := range tests {
		if got := ContainsText(tt.haystack, tt.needle); got != tt.want {
			t.Errorf("ContainsText(%q, %q) = %v, want %v", tt.haystack, tt.needle, got, tt.want)
		}
	}
}
