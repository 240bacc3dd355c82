// Package planner turns search criteria into backend-legal query
// descriptors. The backend can AND only a narrow set of filters, so one
// criteria value may need several descriptors whose union is a superset of
// the answer; the post filter restores exact semantics afterwards.
package planner

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/course-catalog/internal/catalog/textindex"
	"github.com/heartmarshall/course-catalog/internal/domain"
)

// Taxonomy expands coarse categories.
type Taxonomy interface {
	Expand(coarse string) []string
}

// Options tunes the planner to a backend.
type Options struct {
	Caps            domain.Capabilities
	MaxTokens       int
	DefaultPageSize int
	MaxPageSize     int
	// ChunkWideCategories splits a category expansion wider than
	// Caps.MaxSetWidth into several descriptors instead of truncating it.
	ChunkWideCategories bool
	// OrderBy is the fixed sort key for non-prefix descriptors.
	OrderBy domain.Field
}

// DefaultOptions matches domain.DefaultCapabilities.
func DefaultOptions() Options {
	return Options{
		Caps:            domain.DefaultCapabilities(),
		MaxTokens:       10,
		DefaultPageSize: 20,
		MaxPageSize:     100,
		OrderBy:         domain.FieldTitle,
	}
}

// Plan is the output of planning one criteria value.
type Plan struct {
	// Descriptors are in a fixed order for identical criteria.
	Descriptors []domain.QueryDescriptor
	// Advisories name lossy simplifications; results may be incomplete.
	Advisories []domain.Advisory
	// FullScan is set when no descriptor filters anything but the criteria
	// still constrain records client-side.
	FullScan bool
}

// Fingerprint identifies the plan shape; resume tokens are bound to it.
func (p Plan) Fingerprint() string {
	parts := make([]string, len(p.Descriptors))
	for i, d := range p.Descriptors {
		parts[i] = d.Name + "{" + d.Fingerprint() + "}"
	}
	return strings.Join(parts, "|")
}

// Planner is stateless and safe for concurrent use.
type Planner struct {
	tax  Taxonomy
	opts Options
}

// New creates a Planner. Zero-valued options fall back to DefaultOptions.
func New(tax Taxonomy, opts Options) *Planner {
	def := DefaultOptions()
	if opts.Caps.MaxSetWidth <= 0 {
		opts.Caps.MaxSetWidth = def.Caps.MaxSetWidth
	}
	if opts.Caps.MaxInFilters <= 0 {
		opts.Caps.MaxInFilters = def.Caps.MaxInFilters
	}
	if opts.Caps.MaxArrayFilters <= 0 {
		opts.Caps.MaxArrayFilters = def.Caps.MaxArrayFilters
	}
	if opts.MaxTokens <= 0 || opts.MaxTokens > opts.Caps.MaxSetWidth {
		opts.MaxTokens = opts.Caps.MaxSetWidth
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = def.MaxPageSize
	}
	if opts.DefaultPageSize <= 0 || opts.DefaultPageSize > opts.MaxPageSize {
		opts.DefaultPageSize = min(def.DefaultPageSize, opts.MaxPageSize)
	}
	if opts.OrderBy == "" {
		opts.OrderBy = def.OrderBy
	}
	return &Planner{tax: tax, opts: opts}
}

// Capabilities returns the backend limits the planner respects.
func (p *Planner) Capabilities() domain.Capabilities { return p.opts.Caps }

// variant is one alternative of a disjunction: a named set of filters,
// optionally forcing the sort field.
type variant struct {
	name    string
	filters []domain.FieldFilter
	orderBy domain.Field
}

// Plan builds the descriptors for c. The criteria should already be
// validated; an error here means the planner produced an illegal query.
func (p *Planner) Plan(c domain.Criteria) (Plan, error) {
	c = c.Normalized()

	var plan Plan
	arraySlots := p.opts.Caps.MaxArrayFilters

	// Rule 4 first: the keyword decides the descriptor skeleton and may take
	// the array slot, which rule 3 must then yield.
	keywordVariants, kwAdvisory := p.keywordVariants(c.Keyword)
	if kwAdvisory != nil {
		plan.Advisories = append(plan.Advisories, *kwAdvisory)
	}
	for _, v := range keywordVariants {
		if len(v.filters) > 0 && v.filters[0].Op == domain.OpArrayContainsAny {
			arraySlots--
			break
		}
	}

	// Rule 1: category.
	catGroup, catAdvisory := p.categoryGroup(c)
	if catAdvisory != nil {
		plan.Advisories = append(plan.Advisories, *catAdvisory)
	}

	// Rule 2: grade; rule 3: day and period.
	var scalars []domain.FieldFilter
	if c.Grade != "" {
		scalars = append(scalars, domain.FieldFilter{Field: domain.FieldGrade, Op: domain.OpEqual, Value: c.Grade})
	}
	var arrays []domain.FieldFilter
	if days := c.DistinctDays(); len(days) == 1 {
		scalars = append(scalars, domain.FieldFilter{Field: domain.FieldDay, Op: domain.OpEqual, Value: string(days[0])})
		if len(c.DaySlots) == 1 && arraySlots > 0 {
			arrays = append(arrays, domain.FieldFilter{Field: domain.FieldPeriods, Op: domain.OpArrayContains, Value: c.DaySlots[0].Period})
		}
	}

	// Campus and term stay with the post filter: stored spellings vary in
	// case and alias, and backend matching is exact.

	// Rule 5: disjuncts the backend cannot OR natively (keyword fields,
	// category chunks) become separate descriptors.
	setVariants := catGroup
	if len(setVariants) == 0 {
		setVariants = []variant{{}}
	}

	limit := p.pageSize(c.PageSize)
	for _, kv := range keywordVariants {
		for _, sv := range setVariants {
			d := domain.QueryDescriptor{
				Name:    joinName(kv.name, sv.name),
				OrderBy: p.opts.OrderBy,
				Limit:   limit,
			}
			if kv.orderBy != "" {
				d.OrderBy = kv.orderBy
			}
			d.Filters = append(d.Filters, sv.filters...)
			d.Filters = append(d.Filters, scalars...)
			d.Filters = append(d.Filters, arrays...)
			d.Filters = append(d.Filters, kv.filters...)
			plan.Descriptors = append(plan.Descriptors, d)
		}
	}

	if len(plan.Descriptors) == 1 && !plan.Descriptors[0].HasFilters() && !c.IsEmpty() {
		plan.FullScan = true
		plan.Descriptors[0].Name = "full-scan"
		plan.Descriptors[0].Limit = p.opts.MaxPageSize
	}

	for _, d := range plan.Descriptors {
		if err := d.Validate(p.opts.Caps); err != nil {
			return Plan{}, fmt.Errorf("planner: %w", err)
		}
	}
	return plan, nil
}

func (p *Planner) pageSize(requested int) int {
	switch {
	case requested <= 0:
		return p.opts.DefaultPageSize
	case requested > p.opts.MaxPageSize:
		return p.opts.MaxPageSize
	default:
		return requested
	}
}

// keywordVariants implements rule 4. A one-rune keyword cannot be matched
// by 2-grams, so it becomes prefix-range descriptors on title and instructor.
func (p *Planner) keywordVariants(keyword string) ([]variant, *domain.Advisory) {
	norm := textindex.Normalize(keyword)
	switch utf8.RuneCountInString(norm) {
	case 0:
		return []variant{{}}, nil
	case 1:
		// Stored values keep their case, so both case forms are ranged.
		forms := []string{strings.ToUpper(norm)}
		if norm != forms[0] {
			forms = append(forms, norm)
		}
		var out []variant
		for _, field := range []domain.Field{domain.FieldTitle, domain.FieldInstructor} {
			for _, f := range forms {
				out = append(out, prefixVariant(string(field)+"-prefix:"+f, field, f))
			}
		}
		return out, nil
	}

	tokens := textindex.Tokenize(norm)
	var adv *domain.Advisory
	if len(tokens) > p.opts.MaxTokens {
		adv = &domain.Advisory{
			Kind:    domain.AdvisoryTokensCapped,
			Dropped: len(tokens) - p.opts.MaxTokens,
			Detail:  fmt.Sprintf("keyword %q: searching %d of %d tokens", keyword, p.opts.MaxTokens, len(tokens)),
		}
		tokens = tokens[:p.opts.MaxTokens]
	}
	return []variant{{
		name:    "keyword",
		filters: []domain.FieldFilter{{Field: domain.FieldTokens, Op: domain.OpArrayContainsAny, Value: tokens}},
	}}, adv
}

// prefixVariant matches values starting with prefix. The upper bound is
// prefix followed by the highest BMP rune, the usual document-store idiom.
func prefixVariant(name string, field domain.Field, prefix string) variant {
	return variant{
		name: name,
		filters: []domain.FieldFilter{
			{Field: field, Op: domain.OpGreaterOrEqual, Value: prefix},
			{Field: field, Op: domain.OpLess, Value: prefix + "\uffff"},
		},
		orderBy: field,
	}
}

// categoryGroup implements rule 1. It returns the alternatives for the
// category condition (nil when there is none).
func (p *Planner) categoryGroup(c domain.Criteria) ([]variant, *domain.Advisory) {
	if c.CategoryFine != "" {
		return []variant{eqVariant("category", domain.FieldCategory, c.CategoryFine)}, nil
	}
	if c.CategoryCoarse == "" {
		return nil, nil
	}

	labels := p.tax.Expand(c.CategoryCoarse)
	width := p.opts.Caps.MaxSetWidth
	switch {
	case len(labels) == 0:
		return nil, nil
	case len(labels) == 1:
		return []variant{eqVariant("category", domain.FieldCategory, labels[0])}, nil
	case len(labels) <= width:
		return []variant{inVariant("category", domain.FieldCategory, labels)}, nil
	case p.opts.ChunkWideCategories:
		var out []variant
		for i := 0; i < len(labels); i += width {
			chunk := labels[i:min(i+width, len(labels))]
			out = append(out, inVariant(fmt.Sprintf("category[%d]", i/width), domain.FieldCategory, chunk))
		}
		return out, nil
	default:
		return []variant{eqVariant("category", domain.FieldCategory, labels[0])}, &domain.Advisory{
			Kind:    domain.AdvisoryCategoryTruncated,
			Dropped: len(labels) - 1,
			Detail:  fmt.Sprintf("category %q expands to %d labels; searching only %q", c.CategoryCoarse, len(labels), labels[0]),
		}
	}
}

func eqVariant(name string, field domain.Field, value string) variant {
	return variant{
		name:    name,
		filters: []domain.FieldFilter{{Field: field, Op: domain.OpEqual, Value: value}},
	}
}

func inVariant(name string, field domain.Field, values []string) variant {
	vals := make([]string, len(values))
	copy(vals, values)
	return variant{
		name:    name,
		filters: []domain.FieldFilter{{Field: field, Op: domain.OpIn, Value: vals}},
	}
}

func joinName(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return "primary"
	}
	return strings.Join(nonEmpty, "+")
}
