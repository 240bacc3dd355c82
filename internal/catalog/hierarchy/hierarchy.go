// Package hierarchy holds the static taxonomy of the catalog: which
// department labels make up a faculty, and which stored labels name the
// same campus.
package hierarchy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/course-catalog/internal/domain"
)

// File is the on-disk YAML shape.
type File struct {
	Categories map[string][]string `yaml:"categories"`
	Campuses   map[string][]string `yaml:"campuses"`
}

// Hierarchy is immutable after construction and safe for concurrent use.
type Hierarchy struct {
	categories map[string][]string
	// campusByLabel maps every normalized alias to its campus key.
	campusByLabel map[string]string
}

// New builds a Hierarchy from faculty -> department labels and
// campus -> stored labels. Keys match case-insensitively; label order is kept.
func New(categories, campuses map[string][]string) *Hierarchy {
	h := &Hierarchy{
		categories:    make(map[string][]string, len(categories)),
		campusByLabel: make(map[string]string),
	}
	for coarse, labels := range categories {
		h.categories[domain.NormalizeText(coarse)] = dedupe(labels)
	}
	for campus, labels := range campuses {
		key := domain.NormalizeText(campus)
		for _, l := range dedupe(append([]string{campus}, labels...)) {
			h.campusByLabel[domain.NormalizeText(l)] = key
		}
	}
	return h
}

// Load reads a taxonomy YAML file.
func Load(path string) (*Hierarchy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes taxonomy YAML.
func Parse(raw []byte) (*Hierarchy, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("hierarchy: parse: %w", err)
	}
	return New(f.Categories, f.Campuses), nil
}

// Expand returns the fine-grained labels stored on records for a coarse
// category. Unknown values pass through as a single-element slice; an empty
// value yields nil.
func (h *Hierarchy) Expand(coarse string) []string {
	coarse = strings.TrimSpace(coarse)
	if coarse == "" {
		return nil
	}
	if h != nil {
		if labels, ok := h.categories[domain.NormalizeText(coarse)]; ok && len(labels) > 0 {
			out := make([]string, len(labels))
			copy(out, labels)
			return out
		}
	}
	return []string{coarse}
}

// CanonicalCampus maps a stored or requested campus label to a comparison
// key. Aliases of one campus share a key; unknown labels are normalized and
// lose a trailing "campus" word.
func (h *Hierarchy) CanonicalCampus(label string) string {
	n := domain.NormalizeText(label)
	if h != nil {
		if key, ok := h.campusByLabel[n]; ok {
			return key
		}
	}
	return strings.TrimSpace(strings.TrimSuffix(n, " campus"))
}

func dedupe(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
